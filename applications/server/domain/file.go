package domain

import "time"

// Kind is the content kind detected from the bytes of a file.
type Kind int

const (
	KindUnknown Kind = iota
	KindJPEG
	KindPNG
	KindHEIC
	// KindMarkup is reported when no binary signature matched but the bytes
	// contain SVG or other renderable markup.
	KindMarkup
)

func (k Kind) String() string {
	switch k {
	case KindJPEG:
		return "jpeg"
	case KindPNG:
		return "png"
	case KindHEIC:
		return "heic"
	case KindMarkup:
		return "markup"
	default:
		return "unknown"
	}
}

// Classification is the result of inspecting a byte buffer.
// MarkupLike is computed independently of Kind: a buffer may carry a valid
// image signature and embedded markup at the same time.
type Classification struct {
	Kind       Kind
	MarkupLike bool
}

// Decision is the outcome of one upload request.
// StoredName and PublicURL are set iff Accepted.
type Decision struct {
	Accepted   bool
	Reason     Reason
	StoredName string
	PublicURL  string
}

func Accept(storedName, publicURL string) Decision {
	return Decision{
		Accepted:   true,
		Reason:     ReasonAccepted,
		StoredName: storedName,
		PublicURL:  publicURL,
	}
}

func Reject(reason Reason) Decision {
	return Decision{Reason: reason}
}

type StoredFile struct {
	Name    string
	Path    string
	Data    []byte
	Size    int64
	ModTime time.Time
}

type ServedFile struct {
	Name        string
	ContentType string
	Data        []byte
	ModTime     time.Time
}
