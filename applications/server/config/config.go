package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	StorageDriverDisk   = "disk"
	StorageDriverMemory = "memory"
)

type Server struct {
	API        Api        `yaml:"api"`
	Storage    Storage    `yaml:"storage"`
	Classifier Classifier `yaml:"classifier"`
}

type Api struct {
	HTTPAddr       string        `yaml:"http_addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	MetricsPath    string        `yaml:"metrics_path"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type Storage struct {
	Driver string `yaml:"driver"`
	Root   string `yaml:"root"`
	// CollisionAttempts is the number of "-n" suffixes tried when a name is
	// taken. Zero rejects collisions.
	CollisionAttempts int `yaml:"collision_attempts"`
}

type Classifier struct {
	MarkupScanBytes int `yaml:"markup_scan_bytes"`
}

// Default returns the configuration used for every field missing from the file.
func Default() Server {
	return Server{
		API: Api{
			HTTPAddr:       "0.0.0.0:3000",
			MaxUploadBytes: 10 << 20,
			MetricsPath:    "/metrics",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Storage: Storage{
			Driver:            StorageDriverDisk,
			Root:              "uploads",
			CollisionAttempts: 16,
		},
		Classifier: Classifier{
			MarkupScanBytes: 4096,
		},
	}
}

// Parse reads the YAML file at path over Default. An empty path returns Default.
func Parse(path string) (Server, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Server{}, fmt.Errorf("can't read config file: %w", err)
	}

	if err = yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Server{}, fmt.Errorf("can't parse config file: %w", err)
	}

	return cfg, nil
}

func (s Server) Validate() error {
	var errs []error

	if s.API.HTTPAddr == "" {
		errs = append(errs, errors.New("api.http_addr is required"))
	}
	if s.API.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("api.max_upload_bytes must be positive"))
	}
	if s.API.ReadTimeout < 0 || s.API.WriteTimeout < 0 {
		errs = append(errs, errors.New("api timeouts must not be negative"))
	}

	switch s.Storage.Driver {
	case StorageDriverDisk:
		if s.Storage.Root == "" {
			errs = append(errs, errors.New("storage.root is required for the disk driver"))
		}
	case StorageDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", s.Storage.Driver))
	}
	if s.Storage.CollisionAttempts < 0 {
		errs = append(errs, errors.New("storage.collision_attempts must not be negative"))
	}

	if s.Classifier.MarkupScanBytes < 4096 {
		errs = append(errs, errors.New("classifier.markup_scan_bytes must be at least 4096"))
	}

	return errors.Join(errs...)
}
