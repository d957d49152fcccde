// Package classifier decides what a byte buffer actually is, without looking
// at any client supplied metadata, and which content type stored bytes may be
// served with.
package classifier

import (
	"bytes"

	"github.com/donmikel/uploadguard/applications/server/domain"
)

const (
	// DefaultMarkupScanBytes is the size of the leading window searched for markup.
	DefaultMarkupScanBytes = 4096
	// heicMarkerWindow is how far into the buffer the ISO BMFF "ftyp" box is looked for.
	heicMarkerWindow = 32
)

var (
	jpegMagic  = []byte{0xFF, 0xD8}
	pngMagic   = []byte{0x89, 0x50, 0x4E, 0x47}
	heicMarker = []byte("ftyp")

	markupPatterns = [][]byte{
		[]byte("<svg"),
		[]byte("<script"),
		[]byte("<iframe"),
		[]byte("javascript:"),
	}
	eventHandlers = [][]byte{
		[]byte("onerror"),
		[]byte("onload"),
	}
	xmlProlog = []byte("<?xml")
	svgWord   = []byte("svg")
)

// Classifier is a pure, deterministic byte classifier.
// The zero value is not usable, use New.
type Classifier struct {
	scanBytes int
}

// New returns a Classifier scanning the first scanBytes bytes for markup.
// Values below DefaultMarkupScanBytes are raised to it.
func New(scanBytes int) *Classifier {
	if scanBytes < DefaultMarkupScanBytes {
		scanBytes = DefaultMarkupScanBytes
	}

	return &Classifier{scanBytes: scanBytes}
}

// Classify never fails: unrecognized content maps to KindUnknown. Markup and
// signature detection both always run.
func (c *Classifier) Classify(data []byte) domain.Classification {
	markup := c.IsMarkupLike(data)
	kind := detectSignature(data)

	if kind == domain.KindUnknown && markup {
		kind = domain.KindMarkup
	}

	return domain.Classification{
		Kind:       kind,
		MarkupLike: markup,
	}
}

// IsMarkupLike reports whether the leading window of data contains SVG, script,
// iframe or event handler markup. The window is also checked with NUL bytes
// removed to catch UTF-16 encoded markup.
func (c *Classifier) IsMarkupLike(data []byte) bool {
	window := data
	if len(window) > c.scanBytes {
		window = window[:c.scanBytes]
	}

	head := bytes.ToLower(window)
	if containsMarkup(head) {
		return true
	}

	if bytes.IndexByte(head, 0) >= 0 {
		return containsMarkup(bytes.ReplaceAll(head, []byte{0}, nil))
	}

	return false
}

// containsMarkup expects already lowercased text.
func containsMarkup(head []byte) bool {
	for _, p := range markupPatterns {
		if bytes.Contains(head, p) {
			return true
		}
	}

	for _, h := range eventHandlers {
		if containsAttribute(head, h) {
			return true
		}
	}

	return bytes.Contains(head, xmlProlog) && bytes.Contains(head, svgWord)
}

// containsAttribute reports whether name occurs followed by optional
// whitespace and "=".
func containsAttribute(head, name []byte) bool {
	for rest := head; ; {
		idx := bytes.Index(rest, name)
		if idx < 0 {
			return false
		}

		rest = rest[idx+len(name):]
		tail := bytes.TrimLeft(rest, " \t\r\n\f")
		if len(tail) > 0 && tail[0] == '=' {
			return true
		}
	}
}

func detectSignature(data []byte) domain.Kind {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return domain.KindJPEG
	case bytes.HasPrefix(data, pngMagic):
		return domain.KindPNG
	}

	window := data
	if len(window) > heicMarkerWindow {
		window = window[:heicMarkerWindow]
	}
	if bytes.Contains(window, heicMarker) {
		return domain.KindHEIC
	}

	return domain.KindUnknown
}
