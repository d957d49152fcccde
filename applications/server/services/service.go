package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/uploadguard/applications/server"
	"github.com/donmikel/uploadguard/applications/server/classifier"
	"github.com/donmikel/uploadguard/applications/server/domain"
	"github.com/donmikel/uploadguard/applications/server/interfaces"
	"github.com/donmikel/uploadguard/applications/server/namepolicy"
)

const (
	// DefaultCollisionAttempts is how many "-n" suffixes are tried after the
	// sanitized name itself is taken.
	DefaultCollisionAttempts = 16
	publicPathPrefix         = "/uploads/"
)

type service struct {
	storage           interfaces.Storage
	classifier        *classifier.Classifier
	metrics           interfaces.Metrics
	logger            log.Logger
	collisionAttempts int
}

type Option func(*service)

// WithCollisionAttempts sets the number of suffixed names tried on collision.
// Zero rejects every collision with RejectedNameCollision.
func WithCollisionAttempts(n int) Option {
	return func(s *service) {
		if n >= 0 {
			s.collisionAttempts = n
		}
	}
}

func WithMetrics(m interfaces.Metrics) Option {
	return func(s *service) {
		s.metrics = m
	}
}

func NewService(storage interfaces.Storage, c *classifier.Classifier, logger log.Logger, opts ...Option) server.FileService {
	s := &service{
		storage:           storage,
		classifier:        c,
		metrics:           nopMetrics{},
		logger:            logger,
		collisionAttempts: DefaultCollisionAttempts,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// HandleUpload applies one policy to every transport: the decoded bytes decide,
// the declared file name only names the stored file and the declared MIME type
// is never consulted.
func (s *service) HandleUpload(ctx context.Context, envelope domain.Envelope) (domain.Decision, error) {
	logger := log.With(s.logger,
		"transport", envelope.Transport,
		"declared_name", envelope.Filename,
		"declared_mime", envelope.DeclaredMIME,
		"size", humanize.Bytes(uint64(len(envelope.Data))),
	)

	decision, err := s.decide(ctx, envelope, logger)
	if err != nil {
		level.Error(logger).Log("msg", "upload failed", "err", err)
		s.metrics.UploadDecided(envelope.Transport, domain.ReasonStorageIO)
		return domain.Decision{}, err
	}

	if decision.Accepted {
		level.Info(logger).Log("msg", "upload accepted", "name", decision.StoredName)
	} else {
		level.Warn(logger).Log("msg", "upload rejected", "reason", decision.Reason)
	}
	s.metrics.UploadDecided(envelope.Transport, decision.Reason)

	return decision, nil
}

func (s *service) decide(ctx context.Context, envelope domain.Envelope, logger log.Logger) (domain.Decision, error) {
	if err := envelope.Validate(); err != nil {
		level.Debug(logger).Log("msg", "invalid envelope", "err", err)
		return domain.Reject(domain.ReasonMalformedEnvelope), nil
	}

	result := s.classifier.Classify(envelope.Data)
	level.Debug(logger).Log("msg", "classified", "kind", result.Kind, "markup_like", result.MarkupLike)

	if result.MarkupLike {
		return domain.Reject(domain.ReasonRejectedMarkupDetected), nil
	}

	exts := classifier.Extensions(result.Kind)
	if len(exts) == 0 {
		return domain.Reject(domain.ReasonRejectedUnrecognizedType), nil
	}

	name := namepolicy.Sanitize(envelope.Filename)
	if err := namepolicy.Validate(name); err != nil {
		return domain.Reject(domain.ReasonPathEscape), nil
	}
	name = namepolicy.WithExtension(name, exts)

	stored, err := s.store(ctx, name, envelope.Data)
	switch {
	case err == nil:
		return domain.Accept(stored.Name, publicURL(stored.Name)), nil
	case errors.Is(err, domain.ErrNameTaken):
		return domain.Reject(domain.ReasonRejectedNameCollision), nil
	case errors.Is(err, domain.ErrPathEscape):
		return domain.Reject(domain.ReasonPathEscape), nil
	default:
		return domain.Decision{}, fmt.Errorf("can't store file: %w", err)
	}
}

// store tries name, then name-1 … name-N. Every attempt is an exclusive create,
// so a concurrent upload of the same name lands on a different suffix.
func (s *service) store(ctx context.Context, name string, data []byte) (domain.StoredFile, error) {
	var err error
	for i := 0; i <= s.collisionAttempts; i++ {
		var stored domain.StoredFile
		stored, err = s.storage.CreateFile(ctx, namepolicy.WithSuffix(name, i), data)
		if !errors.Is(err, domain.ErrNameTaken) {
			return stored, err
		}
	}

	return domain.StoredFile{}, err
}

// GetFile reclassifies the stored bytes on every call.
func (s *service) GetFile(ctx context.Context, name string) (domain.ServedFile, error) {
	if namepolicy.Sanitize(name) != name || namepolicy.Validate(name) != nil {
		return domain.ServedFile{}, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}

	stored, err := s.storage.ReadFile(ctx, name)
	if err != nil {
		return domain.ServedFile{}, fmt.Errorf("can't read file: %w", err)
	}

	contentType := s.classifier.ContentTypeForServe(stored.Name, stored.Data)
	s.metrics.FileServed(contentType)

	return domain.ServedFile{
		Name:        stored.Name,
		ContentType: contentType,
		Data:        stored.Data,
		ModTime:     stored.ModTime,
	}, nil
}

func publicURL(storedName string) string {
	return publicPathPrefix + url.PathEscape(storedName)
}

type nopMetrics struct{}

func (nopMetrics) UploadDecided(domain.Transport, domain.Reason) {}

func (nopMetrics) FileServed(string) {}
