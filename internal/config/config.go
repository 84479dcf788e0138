package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/lodestar-watch/lodestar/internal/ingest"
	"github.com/lodestar-watch/lodestar/pkg/database"
	"github.com/lodestar-watch/lodestar/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvLodestarEnv             = "LODESTAR_ENV"
	EnvLodestarShutdownTimeout = "LODESTAR_SHUTDOWN_TIMEOUT"
	EnvLodestarVersion         = "LODESTAR_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "LODESTAR_DB_HOST",
	Port:            "LODESTAR_DB_PORT",
	Name:            "LODESTAR_DB_NAME",
	User:            "LODESTAR_DB_USER",
	Password:        "LODESTAR_DB_PASSWORD",
	SSLMode:         "LODESTAR_DB_SSL_MODE",
	MaxOpenConns:    "LODESTAR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "LODESTAR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "LODESTAR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "LODESTAR_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "LODESTAR_STORAGE_CONTAINER_NAME",
	ConnectionString: "LODESTAR_STORAGE_CONNECTION_STRING",
	MaxListSize:      "LODESTAR_STORAGE_MAX_LIST_SIZE",
}

var ingestEnv = &ingest.Env{
	AliasRules: "LODESTAR_INGEST_ALIAS_RULES",
}

// Config is the root configuration for the Lodestar service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Ingest          ingest.Config   `toml:"ingest"`
	Scorer          ScorerConfig    `toml:"scorer"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the LODESTAR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvLodestarEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Ingest.Merge(&overlay.Ingest)
	c.Scorer.Merge(&overlay.Scorer)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Ingest.Finalize(ingestEnv); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if err := c.Scorer.Finalize(); err != nil {
		return fmt.Errorf("scorer: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvLodestarShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvLodestarVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvLodestarEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
