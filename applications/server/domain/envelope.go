package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Transport is the way the bytes of an upload arrived.
type Transport int

const (
	TransportMultipart Transport = iota + 1
	TransportDataURL
)

func (t Transport) String() string {
	switch t {
	case TransportMultipart:
		return "multipart"
	case TransportDataURL:
		return "data_url"
	default:
		return "unknown"
	}
}

const defaultMultipartFilename = "upload"

// Envelope is the uniform shape of an upload after transport decoding.
// Data always holds the decoded bytes, whatever the transport.
// DeclaredMIME is informational only and is set only for data URLs.
type Envelope struct {
	Transport    Transport
	Data         []byte
	Filename     string
	DeclaredMIME string
}

func NewMultipartEnvelope(data []byte, filename string) Envelope {
	if strings.TrimSpace(filename) == "" {
		filename = defaultMultipartFilename
	}

	return Envelope{
		Transport: TransportMultipart,
		Data:      data,
		Filename:  filename,
	}
}

// NewDataURLEnvelope decodes a "data:<mime>;base64,<payload>" string.
// mimeType may be empty, in which case the media type of the data URL is used.
func NewDataURLEnvelope(dataURL, name, mimeType string) (Envelope, error) {
	if dataURL == "" || strings.TrimSpace(name) == "" {
		return Envelope{}, fmt.Errorf("%w: file and name are required", ErrMalformedEnvelope)
	}

	mediaType, payload, err := splitDataURL(dataURL)
	if err != nil {
		return Envelope{}, err
	}

	data, err := decodeBase64(payload)
	if err != nil {
		return Envelope{}, err
	}

	declared := strings.ToLower(strings.TrimSpace(mimeType))
	if declared == "" {
		declared = strings.ToLower(mediaType)
	}

	return Envelope{
		Transport:    TransportDataURL,
		Data:         data,
		Filename:     name,
		DeclaredMIME: declared,
	}, nil
}

// Validate reports ErrMalformedEnvelope unless exactly one transport variant
// is populated with a non-empty buffer.
func (e Envelope) Validate() error {
	switch e.Transport {
	case TransportMultipart:
		if e.DeclaredMIME != "" {
			return fmt.Errorf("%w: multipart envelope carries a declared mime type", ErrMalformedEnvelope)
		}
	case TransportDataURL:
	default:
		return fmt.Errorf("%w: unknown transport", ErrMalformedEnvelope)
	}

	if len(e.Data) == 0 {
		return fmt.Errorf("%w: empty file", ErrMalformedEnvelope)
	}

	if strings.TrimSpace(e.Filename) == "" {
		return fmt.Errorf("%w: empty file name", ErrMalformedEnvelope)
	}

	return nil
}

func splitDataURL(dataURL string) (mediaType, payload string, err error) {
	const marker = ";base64,"

	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", "", fmt.Errorf("%w: file must be a data URL (data:*;base64,...)", ErrMalformedEnvelope)
	}

	idx := strings.Index(rest, marker)
	if idx < 1 || idx+len(marker) == len(rest) {
		return "", "", fmt.Errorf("%w: file must be a data URL (data:*;base64,...)", ErrMalformedEnvelope)
	}

	return rest[:idx], rest[idx+len(marker):], nil
}

// decodeBase64 accepts standard and URL-safe alphabets, with or without
// padding, and ignores embedded whitespace.
func decodeBase64(payload string) ([]byte, error) {
	payload = strings.Join(strings.Fields(payload), "")

	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: invalid base64 payload: %v", ErrMalformedEnvelope, lastErr)
}
