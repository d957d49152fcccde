package domain

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataURLEnvelope(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0xFB, 0xFF}

	tests := []struct {
		name    string
		dataURL string
	}{
		{name: "standard", dataURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(payload)},
		{name: "unpadded", dataURL: "data:image/jpeg;base64," + base64.RawStdEncoding.EncodeToString(payload)},
		{name: "url safe", dataURL: "data:image/jpeg;base64," + base64.URLEncoding.EncodeToString(payload)},
		{name: "with whitespace", dataURL: "data:image/jpeg;base64,/9j/\n4Pv/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := NewDataURLEnvelope(tt.dataURL, "a.jpg", "IMAGE/JPEG")
			require.NoError(t, err)
			assert.Equal(t, TransportDataURL, env.Transport)
			assert.Equal(t, payload, env.Data)
			assert.Equal(t, "a.jpg", env.Filename)
			assert.Equal(t, "image/jpeg", env.DeclaredMIME)
			assert.NoError(t, env.Validate())
		})
	}
}

func TestNewDataURLEnvelopeFallsBackToMediaType(t *testing.T) {
	env, err := NewDataURLEnvelope("data:image/png;base64,iVBORw0KGgo=", "pic.png", "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", env.DeclaredMIME)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, env.Data)
}

func TestNewDataURLEnvelopeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		dataURL string
		file    string
	}{
		{name: "empty file", dataURL: "", file: "a.jpg"},
		{name: "empty name", dataURL: "data:image/jpeg;base64,/9j/", file: " "},
		{name: "no data prefix", dataURL: "image/jpeg;base64,/9j/", file: "a.jpg"},
		{name: "no base64 marker", dataURL: "data:image/jpeg,/9j/", file: "a.jpg"},
		{name: "no media type", dataURL: "data:;base64,/9j/", file: "a.jpg"},
		{name: "no payload", dataURL: "data:image/jpeg;base64,", file: "a.jpg"},
		{name: "invalid payload", dataURL: "data:image/jpeg;base64,***", file: "a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDataURLEnvelope(tt.dataURL, tt.file, "image/jpeg")
			assert.ErrorIs(t, err, ErrMalformedEnvelope)
		})
	}
}

func TestNewMultipartEnvelope(t *testing.T) {
	env := NewMultipartEnvelope([]byte{1}, "")
	assert.Equal(t, TransportMultipart, env.Transport)
	assert.Equal(t, "upload", env.Filename)
	assert.Empty(t, env.DeclaredMIME)
	assert.NoError(t, env.Validate())
}

func TestEnvelopeValidate(t *testing.T) {
	assert.ErrorIs(t, Envelope{}.Validate(), ErrMalformedEnvelope)
	assert.ErrorIs(t, NewMultipartEnvelope(nil, "a.jpg").Validate(), ErrMalformedEnvelope)
	assert.ErrorIs(t, Envelope{Transport: TransportMultipart, Data: []byte{1}, Filename: "a", DeclaredMIME: "image/png"}.Validate(), ErrMalformedEnvelope)
	assert.ErrorIs(t, Envelope{Transport: TransportDataURL, Data: []byte{1}}.Validate(), ErrMalformedEnvelope)
}

func TestDecision(t *testing.T) {
	accepted := Accept("a.jpg", "/uploads/a.jpg")
	assert.True(t, accepted.Accepted)
	assert.Equal(t, ReasonAccepted, accepted.Reason)

	rejected := Reject(ReasonRejectedMarkupDetected)
	assert.False(t, rejected.Accepted)
	assert.Empty(t, rejected.StoredName)
	assert.Empty(t, rejected.PublicURL)
}
