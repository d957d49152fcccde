package domain

import "errors"

var (
	ErrMalformedEnvelope = errors.New("malformed upload envelope")
	ErrPayloadTooLarge   = errors.New("payload too large")
	// ErrPathEscape is returned when a name would resolve outside the storage root.
	ErrPathEscape = errors.New("path escapes storage root")
	// ErrNameTaken is returned by storages when the exclusive create of a name fails
	// because the name already exists.
	ErrNameTaken = errors.New("name already taken")
	ErrNotFound  = errors.New("file not found")
	ErrStorageIO = errors.New("storage io error")
)

// Reason is the machine readable code reported for an upload decision.
type Reason string

const (
	ReasonAccepted                 Reason = "Accepted"
	ReasonRejectedMarkupDetected   Reason = "RejectedMarkupDetected"
	ReasonRejectedUnrecognizedType Reason = "RejectedUnrecognizedType"
	ReasonRejectedNameCollision    Reason = "RejectedNameCollision"
	ReasonPathEscape               Reason = "PathEscapeError"
	ReasonMalformedEnvelope        Reason = "MalformedEnvelope"
	ReasonPayloadTooLarge          Reason = "PayloadTooLarge"
	ReasonStorageIO                Reason = "StorageIOError"
)

// Message is the human readable text sent to clients for a reason.
func (r Reason) Message() string {
	switch r {
	case ReasonAccepted:
		return "file uploaded"
	case ReasonRejectedMarkupDetected:
		return "markup or script content detected, upload rejected"
	case ReasonRejectedUnrecognizedType:
		return "file content is not a supported image type"
	case ReasonRejectedNameCollision:
		return "a file with this name already exists"
	case ReasonPathEscape:
		return "invalid file name"
	case ReasonMalformedEnvelope:
		return "missing or malformed file data"
	case ReasonPayloadTooLarge:
		return "file too large"
	default:
		return "internal server error"
	}
}
