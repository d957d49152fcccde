package interfaces

import (
	"context"

	"github.com/donmikel/uploadguard/applications/server/domain"
)

// Storage persists accepted files under sanitized names.
type Storage interface {
	// CreateFile stores data under name only if name does not exist yet.
	// It returns domain.ErrNameTaken when it does, and never overwrites.
	CreateFile(ctx context.Context, name string, data []byte) (domain.StoredFile, error)
	// ReadFile returns the full content of name or domain.ErrNotFound.
	ReadFile(ctx context.Context, name string) (domain.StoredFile, error)
	GetStorageURL() string
}
