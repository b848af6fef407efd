package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/readshelf/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Library: config.LibraryConfig{DataDir: "/tmp/readshelf", Namespace: "library"},
		Storage: config.StorageConfig{Backend: config.BackendDisk},
		Log:     config.LogConfig{Level: "info", Format: "console"},
	}
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != config.BackendDisk {
		t.Errorf("Backend = %q, want disk", cfg.Storage.Backend)
	}
	if cfg.Library.Namespace != "library" {
		t.Errorf("Namespace = %q, want library", cfg.Library.Namespace)
	}
	if cfg.Library.DataDir == "" || strings.HasPrefix(cfg.Library.DataDir, "~") {
		t.Errorf("DataDir = %q, want expanded default", cfg.Library.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `library:
  data_dir: /srv/books
  namespace: shelf2
storage:
  backend: sqlite
  quota_bytes: 1048576
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("READSHELF_LOG_FORMAT", "json")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Library.DataDir != "/srv/books" || cfg.Library.Namespace != "shelf2" {
		t.Errorf("Library = %+v", cfg.Library)
	}
	if cfg.Storage.Backend != config.BackendSQLite || cfg.Storage.QuotaBytes != 1048576 {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if got := cfg.SQLitePath(); got != filepath.Join("/srv/books", "readshelf.db") {
		t.Errorf("SQLitePath = %q", got)
	}
	if got := cfg.BlobDir(); got != filepath.Join("/srv/books", "blobs") {
		t.Errorf("BlobDir = %q", got)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("library: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yml")
	cfg := validConfig()
	cfg.Storage.Backend = config.BackendMinIO
	cfg.Storage.MinIO = config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "ak", SecretKey: "sk", Bucket: "books"}

	if err := config.Save(&cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if strings.Contains(string(raw), "sk") && strings.Contains(string(raw), "secret") {
		t.Error("secret key written to config file")
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Storage.MinIO.Endpoint != "localhost:9000" || got.Storage.MinIO.Bucket != "books" {
		t.Errorf("MinIO = %+v", got.Storage.MinIO)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"memory backend", func(c *config.Config) { c.Storage.Backend = config.BackendMemory }, ""},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "ftp" }, "backend must be one of"},
		{"missing data dir", func(c *config.Config) { c.Library.DataDir = "" }, "data_dir is required"},
		{"bad namespace", func(c *config.Config) { c.Library.Namespace = "../x" }, "namespace must be letters and digits only"},
		{"negative quota", func(c *config.Config) { c.Storage.QuotaBytes = -1 }, "no less than 0"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "Level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "Format"},
		{"minio without endpoint", func(c *config.Config) {
			c.Storage.Backend = config.BackendMinIO
			c.Storage.MinIO = config.MinIOConfig{Bucket: "b", AccessKey: "a", SecretKey: "s"}
		}, "minio endpoint is required"},
		{"minio complete", func(c *config.Config) {
			c.Storage.Backend = config.BackendMinIO
			c.Storage.MinIO = config.MinIOConfig{Endpoint: "e:9000", Bucket: "b", AccessKey: "a", SecretKey: "s"}
		}, ""},
	}
	for _, tc := range cases {
		cfg := validConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		switch {
		case tc.wantErr == "" && err != nil:
			t.Errorf("%s: unexpected error %v", tc.name, err)
		case tc.wantErr != "" && err == nil:
			t.Errorf("%s: expected error containing %q", tc.name, tc.wantErr)
		case tc.wantErr != "" && !strings.Contains(err.Error(), tc.wantErr):
			t.Errorf("%s: error %q does not contain %q", tc.name, err, tc.wantErr)
		}
	}
}
