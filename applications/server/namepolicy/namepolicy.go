// Package namepolicy turns client supplied file names into storage names
// and keeps them inside the storage root.
package namepolicy

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/donmikel/uploadguard/applications/server/domain"
)

const (
	// MaxNameLength is the maximum length in bytes of a sanitized name.
	MaxNameLength = 128
	maxExtLength  = 16
)

// Sanitize keeps only the final path component of name and replaces every
// character outside [A-Za-z0-9_.-] with '_'. It is idempotent.
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = filepath.Base(name)

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isAllowed(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	return truncate(b.String())
}

// Validate fails with ErrPathEscape unless name is a single path component
// that can be joined to a storage root without leaving it.
func Validate(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return fmt.Errorf("%w: %q", domain.ErrPathEscape, name)
	}

	return nil
}

// Resolve joins name to root and returns the canonical absolute path.
// It fails with ErrPathEscape unless the result lies strictly inside root.
func Resolve(root, name string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: resolve root: %v", domain.ErrStorageIO, err)
	}

	absPath, err := filepath.Abs(filepath.Join(absRoot, name))
	if err != nil {
		return "", fmt.Errorf("%w: resolve %q: %v", domain.ErrStorageIO, name, err)
	}

	if !strings.HasPrefix(absPath, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", domain.ErrPathEscape, name)
	}

	return absPath, nil
}

// WithSuffix returns name with "-n" inserted before its extension, shortening
// the stem so the result still fits in MaxNameLength.
// n == 0 returns name unchanged.
func WithSuffix(name string, n int) string {
	if n == 0 {
		return name
	}

	stem, ext := splitExt(name)
	if len(ext) > maxExtLength {
		stem, ext = name, ""
	}

	suffix := "-" + strconv.Itoa(n)
	if over := len(stem) + len(suffix) + len(ext) - MaxNameLength; over > 0 {
		stem = stem[:max(len(stem)-over, 0)]
	}

	return stem + suffix + ext
}

// WithExtension makes sure name ends with one of exts, replacing its current
// extension by exts[0] otherwise. Comparison is case-insensitive.
func WithExtension(name string, exts []string) string {
	if len(exts) == 0 {
		return name
	}

	stem, ext := splitExt(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return name
		}
	}

	if stem == "" || stem == "." {
		stem = "upload"
	}

	return truncate(stem + exts[0])
}

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '.', r == '-':
		return true
	default:
		return false
	}
}

// truncate expects an ASCII name.
func truncate(name string) string {
	if len(name) <= MaxNameLength {
		return name
	}

	stem, ext := splitExt(name)
	if len(ext) > maxExtLength {
		return name[:MaxNameLength]
	}

	return stem[:MaxNameLength-len(ext)] + ext
}

func splitExt(name string) (stem, ext string) {
	ext = filepath.Ext(name)
	return strings.TrimSuffix(name, ext), ext
}
