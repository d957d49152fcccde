package server

import (
	"context"

	"github.com/donmikel/uploadguard/applications/server/domain"
)

type FileService interface {
	// HandleUpload classifies the envelope and stores it when accepted.
	// Rejections are reported in the Decision; the error is reserved for
	// storage failures.
	HandleUpload(ctx context.Context, envelope domain.Envelope) (domain.Decision, error)
	GetFile(ctx context.Context, name string) (domain.ServedFile, error)
}
