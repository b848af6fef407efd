package config

import (
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/blackwell-systems/readshelf/internal/logging"
)

// Storage backends.
const (
	BackendDisk   = "disk"
	BackendSQLite = "sqlite"
	BackendMinIO  = "minio"
	BackendMemory = "memory"
)

// Config is the top-level readshelf configuration.
type Config struct {
	Library LibraryConfig `mapstructure:"library" yaml:"library"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// LibraryConfig locates the library snapshot.
type LibraryConfig struct {
	DataDir   string `mapstructure:"data_dir" yaml:"data_dir"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// StorageConfig selects and configures the blob store.
type StorageConfig struct {
	Backend    string       `mapstructure:"backend" yaml:"backend"`
	QuotaBytes int64        `mapstructure:"quota_bytes" yaml:"quota_bytes,omitempty"`
	SQLite     SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite,omitempty"`
	MinIO      MinIOConfig  `mapstructure:"minio" yaml:"minio,omitempty"`
}

// SQLiteConfig holds the sqlite backend settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// MinIOConfig holds the S3-compatible backend settings.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"access_key,omitempty"`
	SecretKey string `mapstructure:"secret_key" yaml:"-"` // from env only, never written
	Bucket    string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	UseSSL    bool   `mapstructure:"use_ssl" yaml:"use_ssl,omitempty"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// BlobDir is where the disk backend keeps its files.
func (c *Config) BlobDir() string {
	return filepath.Join(c.Library.DataDir, "blobs")
}

// SQLitePath returns the configured database path or the default under
// the data dir.
func (c *Config) SQLitePath() string {
	if c.Storage.SQLite.Path != "" {
		return c.Storage.SQLite.Path
	}
	return filepath.Join(c.Library.DataDir, "readshelf.db")
}

// Validate checks the configuration for values the library cannot run with.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Library),
		validation.Field(&c.Storage),
		validation.Field(&c.Log),
	)
}

func (l LibraryConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.DataDir, validation.Required.Error("data_dir is required")),
		validation.Field(&l.Namespace,
			validation.Required.Error("namespace is required"),
			validation.Length(1, 64),
			is.Alphanumeric.Error("namespace must be letters and digits only"),
		),
	)
}

func (s StorageConfig) Validate() error {
	minio := s.Backend == BackendMinIO
	return validation.ValidateStruct(&s,
		validation.Field(&s.Backend,
			validation.Required,
			validation.In(BackendDisk, BackendSQLite, BackendMinIO, BackendMemory).
				Error("backend must be one of disk, sqlite, minio, memory"),
		),
		validation.Field(&s.QuotaBytes, validation.Min(int64(0))),
		validation.Field(&s.MinIO, validation.When(minio, validation.By(validateMinIO))),
	)
}

func validateMinIO(value interface{}) error {
	m, _ := value.(MinIOConfig)
	return validation.ValidateStruct(&m,
		validation.Field(&m.Endpoint, validation.Required.Error("minio endpoint is required")),
		validation.Field(&m.Bucket, validation.Required.Error("minio bucket is required")),
		validation.Field(&m.AccessKey, validation.Required.Error("minio access_key is required")),
		validation.Field(&m.SecretKey, validation.Required.Error("minio secret_key is required")),
	)
}

func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Level, validation.In("trace", "debug", "info", "warn", "error", "disabled")),
		validation.Field(&l.Format, validation.In(logging.FormatConsole, logging.FormatJSON)),
	)
}
