package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/donmikel/uploadguard/applications/server/domain"
	"github.com/donmikel/uploadguard/applications/server/interfaces"
	"github.com/donmikel/uploadguard/applications/server/namepolicy"
)

// partialDir holds files being written. Nothing in it is ever served.
const partialDir = ".partial"

type diskStorage struct {
	root   string
	logger log.Logger
}

// NewStorage creates root (and its partial directory) if absent.
func NewStorage(root string, logger log.Logger) (interfaces.Storage, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("can't resolve storage root: %w", err)
	}

	if err = os.MkdirAll(filepath.Join(absRoot, partialDir), 0o755); err != nil {
		return nil, fmt.Errorf("can't create storage root: %w", err)
	}

	return &diskStorage{
		root:   absRoot,
		logger: logger,
	}, nil
}

func (s *diskStorage) GetStorageURL() string {
	return s.root
}

// CreateFile writes data to a temporary file and publishes it with a hard link,
// which fails if the final name exists. A reader never sees a partial file
// under its final name, and two writers racing for a name cannot both win.
func (s *diskStorage) CreateFile(ctx context.Context, name string, data []byte) (domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredFile{}, err
	}

	if err := namepolicy.Validate(name); err != nil {
		return domain.StoredFile{}, err
	}

	finalPath, err := namepolicy.Resolve(s.root, name)
	if err != nil {
		return domain.StoredFile{}, err
	}

	tmpPath := filepath.Join(s.root, partialDir, uuid.NewString())
	defer func() {
		if rmErr := os.Remove(tmpPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			level.Warn(s.logger).Log("msg", "can't remove temporary file", "path", tmpPath, "err", rmErr)
		}
	}()

	if err = writeExclusive(tmpPath, data); err != nil {
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	if err = ctx.Err(); err != nil {
		return domain.StoredFile{}, err
	}

	if err = os.Link(tmpPath, finalPath); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.StoredFile{}, fmt.Errorf("%w: %s", domain.ErrNameTaken, name)
		}
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	level.Info(s.logger).Log("msg", "file stored",
		"name", name,
		"path", finalPath,
		"size", humanize.Bytes(uint64(len(data))),
	)

	return domain.StoredFile{
		Name:    name,
		Path:    finalPath,
		Data:    data,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (s *diskStorage) ReadFile(ctx context.Context, name string) (domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredFile{}, err
	}

	if err := namepolicy.Validate(name); err != nil {
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}

	path, err := namepolicy.Resolve(s.root, name)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}

	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.StoredFile{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	// Directories and symlinks are never stored by CreateFile.
	if !info.Mode().IsRegular() {
		return domain.StoredFile{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.StoredFile{}, fmt.Errorf("%w: %v", domain.ErrStorageIO, err)
	}

	return domain.StoredFile{
		Name:    name,
		Path:    path,
		Data:    data,
		Size:    int64(len(data)),
		ModTime: info.ModTime(),
	}, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return err
	}

	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
