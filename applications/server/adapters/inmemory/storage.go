package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/donmikel/uploadguard/applications/server/domain"
	"github.com/donmikel/uploadguard/applications/server/interfaces"
	"github.com/donmikel/uploadguard/applications/server/namepolicy"
)

const defaultFreeSpaceInBytes = 100 * 1024 * 1024 // 100 Mb

type storedFile struct {
	data    []byte
	modTime time.Time
}

type inMemoryStorage struct {
	filesByName map[string]storedFile
	freeSpace   int
	url         string
	log         log.Logger
	mutex       sync.RWMutex
}

func NewStorage(url string, logger log.Logger) interfaces.Storage {
	return &inMemoryStorage{
		url:         url,
		log:         logger,
		filesByName: map[string]storedFile{},
		freeSpace:   defaultFreeSpaceInBytes,
	}
}

func (m *inMemoryStorage) GetStorageURL() string {
	return m.url
}

func (m *inMemoryStorage) CreateFile(ctx context.Context, name string, data []byte) (domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredFile{}, err
	}

	if err := namepolicy.Validate(name); err != nil {
		return domain.StoredFile{}, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.filesByName[name]; ok {
		return domain.StoredFile{}, fmt.Errorf("%w: %s", domain.ErrNameTaken, name)
	}

	dataLen := len(data)
	if dataLen > m.freeSpace {
		return domain.StoredFile{}, fmt.Errorf("%w: not enough free space", domain.ErrStorageIO)
	}

	f := storedFile{
		data:    append([]byte(nil), data...),
		modTime: time.Now().UTC(),
	}
	m.filesByName[name] = f
	m.freeSpace -= dataLen

	level.Info(m.log).Log("msg", "file stored",
		"name", name,
		"storage", m.url,
		"size", humanize.Bytes(uint64(dataLen)),
		"free_space", humanize.Bytes(uint64(m.freeSpace)),
	)

	return m.toStoredFile(name, f), nil
}

func (m *inMemoryStorage) ReadFile(ctx context.Context, name string) (domain.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.StoredFile{}, err
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	f, ok := m.filesByName[name]
	if !ok {
		return domain.StoredFile{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
	}

	level.Debug(m.log).Log("msg", "file read",
		"name", name,
		"storage", m.url,
	)

	return m.toStoredFile(name, f), nil
}

func (m *inMemoryStorage) toStoredFile(name string, f storedFile) domain.StoredFile {
	return domain.StoredFile{
		Name:    name,
		Path:    m.url + "/" + name,
		Data:    append([]byte(nil), f.data...),
		Size:    int64(len(f.data)),
		ModTime: f.modTime,
	}
}
