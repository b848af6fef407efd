package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/readshelf/internal/util"
)

// DefaultPath returns the config file path: READSHELF_CONFIG when set,
// otherwise ~/.config/readshelf/config.yml.
func DefaultPath() string {
	if p := os.Getenv("READSHELF_CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "readshelf", "config.yml")
}

// Load reads the config from path (DefaultPath when empty) and the
// environment. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("library.data_dir", defaultDataDir())
	v.SetDefault("library.namespace", "library")
	v.SetDefault("storage.backend", BackendDisk)
	v.SetDefault("storage.quota_bytes", 0)
	v.SetDefault("storage.sqlite.path", "")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "readshelf")
	v.SetDefault("storage.minio.use_ssl", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix("READSHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env apply.
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Library.DataDir = util.ExpandHome(cfg.Library.DataDir)
	cfg.Storage.SQLite.Path = util.ExpandHome(cfg.Storage.SQLite.Path)

	return &cfg, nil
}

// Save writes the config to path as YAML. Secrets are not written.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "readshelf")
}
