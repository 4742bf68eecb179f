package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/stormboard/stormboard/pkg/errors"
)

// =============================================================================
// Configuration
// =============================================================================

// Config holds serve-mode settings. Values are read from a stormboard.toml
// file; flags override file values.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `toml:"addr"`

	// DataDir overrides the default board storage directory for the file
	// store backend.
	DataDir string `toml:"data_dir"`

	Cache CacheConfig `toml:"cache"`
	Store StoreConfig `toml:"store"`
}

// CacheConfig selects and configures the pipeline cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", or "none".
	Backend string `toml:"backend"`

	Redis RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StoreConfig selects and configures the board store backend.
type StoreConfig struct {
	// Backend is one of "file" or "mongo".
	Backend string `toml:"backend"`

	Mongo MongoConfig `toml:"mongo"`
}

// MongoConfig configures the mongo store backend.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no file is present:
// file-backed cache and store on the default XDG directories.
func DefaultConfig() Config {
	return Config{
		Addr: ":8080",
		Cache: CacheConfig{
			Backend: "file",
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
		Store: StoreConfig{
			Backend: "file",
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "stormboard",
			},
		},
	}
}

// LoadConfig reads a config file on top of the defaults.
//
// With an explicit path, a missing or unparseable file is an error. With an
// empty path, ./stormboard.toml is tried and silently skipped when absent.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(".", appName+".toml")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to parse config file: %s", path)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend: %s", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case "file", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend: %s", c.Store.Backend)
	}
	return nil
}
