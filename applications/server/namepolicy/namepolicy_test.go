package namepolicy

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donmikel/uploadguard/applications/server/domain"
)

var hostileNames = []string{
	"",
	".",
	"..",
	"/",
	"../../etc/passwd",
	`..\..\windows\system32\config`,
	"/etc/shadow",
	"foo/../../bar.png",
	"pic.png\x00.svg",
	"my photo (1).jpg",
	"фото.jpg",
	"<svg onload=alert(1)>.jpg",
	"a/b/c/",
	strings.Repeat("a", 300) + ".png",
	strings.Repeat("b", 300) + "." + strings.Repeat("x", 40),
	"\xff\xfe.png",
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "pic.png", want: "pic.png"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\x\file.txt`, want: "file.txt"},
		{in: "my photo (1).jpg", want: "my_photo__1_.jpg"},
		{in: "фото.jpg", want: "____.jpg"},
		{in: "a/b/c/", want: "c"},
		{in: "pic.png\x00.svg", want: "pic.png_.svg"},
		{in: "", want: "."},
		{in: "..", want: ".."},
		{in: "/", want: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, name := range hostileNames {
		once := Sanitize(name)
		assert.Equal(t, once, Sanitize(once), "name %q", name)
	}
}

func TestSanitizeTruncates(t *testing.T) {
	got := Sanitize(strings.Repeat("a", 300) + ".png")
	assert.Len(t, got, MaxNameLength)
	assert.True(t, strings.HasSuffix(got, ".png"))

	got = Sanitize(strings.Repeat("b", 300) + "." + strings.Repeat("x", 40))
	assert.Len(t, got, MaxNameLength)
}

func TestSanitizeThenResolveStaysInRoot(t *testing.T) {
	root := t.TempDir()

	for _, name := range hostileNames {
		path, err := Resolve(root, Sanitize(name))
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrPathEscape, "name %q", name)
			continue
		}

		assert.True(t, strings.HasPrefix(path, root+string(filepath.Separator)), "name %q resolved to %s", name, path)
		assert.Equal(t, root, filepath.Dir(path), "name %q", name)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()

	path, err := Resolve(root, "pic.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "pic.png"), path)

	for _, name := range []string{"", ".", "..", "../x", "../../etc/passwd", "a/../../x"} {
		_, err = Resolve(root, name)
		assert.ErrorIs(t, err, domain.ErrPathEscape, "name %q", name)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("pic.png"))
	assert.NoError(t, Validate(".hidden"))

	for _, name := range []string{"", ".", "..", "a/b", `a\b`, "a\x00b"} {
		assert.ErrorIs(t, Validate(name), domain.ErrPathEscape, "name %q", name)
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "pic.png", WithSuffix("pic.png", 0))
	assert.Equal(t, "pic-1.png", WithSuffix("pic.png", 1))
	assert.Equal(t, "archive.tar-12.gz", WithSuffix("archive.tar.gz", 12))
	assert.Equal(t, "noext-3", WithSuffix("noext", 3))
}

func TestWithSuffixKeepsMaxLength(t *testing.T) {
	names := []string{
		Sanitize(strings.Repeat("a", 200) + ".jpg"),
		Sanitize(strings.Repeat("b", 300)),
		Sanitize("a." + strings.Repeat("x", 200)),
		strings.Repeat("c", MaxNameLength-len("-1.png")) + ".png",
	}

	for _, name := range names {
		for _, n := range []int{1, 9, 16, 1000} {
			got := WithSuffix(name, n)
			assert.LessOrEqual(t, len(got), MaxNameLength, got)
			assert.Equal(t, got, Sanitize(got), "suffixed name must already be sanitized")
			assert.NotEqual(t, name, got)
		}
	}

	long := Sanitize(strings.Repeat("a", 200) + ".jpg")
	got := WithSuffix(long, 1)
	assert.Len(t, got, MaxNameLength)
	assert.True(t, strings.HasSuffix(got, "-1.jpg"), got)
	assert.NotEqual(t, WithSuffix(long, 1), WithSuffix(long, 2))
}

func TestWithExtension(t *testing.T) {
	jpeg := []string{".jpg", ".jpeg"}

	assert.Equal(t, "a.jpg", WithExtension("a.jpg", jpeg))
	assert.Equal(t, "a.JPEG", WithExtension("a.JPEG", jpeg))
	assert.Equal(t, "a.jpg", WithExtension("a.png", jpeg))
	assert.Equal(t, "a.jpg", WithExtension("a", jpeg))
	assert.Equal(t, "upload.jpg", WithExtension(".svg", jpeg))
	assert.Equal(t, "a.svg", WithExtension("a.svg", nil))
}
