package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	want := Server{
		API: Api{
			HTTPAddr:       "0.0.0.0:8002",
			MaxUploadBytes: 5 << 20,
			MetricsPath:    "/metrics",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
		},
		Storage: Storage{
			Driver:            StorageDriverDisk,
			Root:              "./uploads",
			CollisionAttempts: 8,
		},
		Classifier: Classifier{MarkupScanBytes: 8192},
	}

	got, err := Parse("config.yml")

	assert.NoError(t, got.Validate())
	assert.Equal(t, nil, err)
	assert.Equal(t, want, got)
}

func TestParseEmptyPathReturnsDefault(t *testing.T) {
	got, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
	assert.NoError(t, got.Validate())
}

func TestParseKeepsDefaultsAndExplicitZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  collision_attempts: 0\n"), 0o644))

	got, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Storage.CollisionAttempts)
	assert.Equal(t, Default().API, got.API)
	assert.Equal(t, StorageDriverDisk, got.Storage.Driver)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  unknown_field: 1\n"), 0o644))
	_, err = Parse(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.API.HTTPAddr = ""
	cfg.API.MaxUploadBytes = 0
	cfg.Storage.Driver = "s3"
	cfg.Storage.CollisionAttempts = -1
	cfg.Classifier.MarkupScanBytes = 512

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"http_addr", "max_upload_bytes", "storage.driver", "collision_attempts", "markup_scan_bytes"} {
		assert.Contains(t, err.Error(), field)
	}

	cfg = Default()
	cfg.Storage.Driver = StorageDriverMemory
	cfg.Storage.Root = ""
	assert.NoError(t, cfg.Validate())
}
