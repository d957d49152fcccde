package classifier

import (
	"path/filepath"
	"strings"

	"github.com/donmikel/uploadguard/applications/server/domain"
)

// ContentTypeBinary is sent whenever a safe type cannot be determined.
const ContentTypeBinary = "application/octet-stream"

// contentTypes must never map to an XML, SVG, HTML or script type.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".heic": "image/heic",
	".heif": "image/heif",
}

// extensions lists the accepted extensions per kind, canonical first.
var extensions = map[domain.Kind][]string{
	domain.KindJPEG: {".jpg", ".jpeg"},
	domain.KindPNG:  {".png"},
	domain.KindHEIC: {".heic", ".heif"},
}

// ContentTypeForServe picks the response content type for stored bytes.
// Markup-like bytes are always served as ContentTypeBinary, whatever their name:
// files may have been placed in the storage root by another process.
func (c *Classifier) ContentTypeForServe(name string, data []byte) string {
	if c.IsMarkupLike(data) {
		return ContentTypeBinary
	}

	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}

	return ContentTypeBinary
}

// Extensions returns the file extensions accepted for kind, canonical first.
// It returns nil for kinds that are never stored.
func Extensions(kind domain.Kind) []string {
	return extensions[kind]
}
