package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/formscout/pkg/database"
	"github.com/JaimeStill/formscout/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvFormscoutEnv             = "FORMSCOUT_ENV"
	EnvFormscoutShutdownTimeout = "FORMSCOUT_SHUTDOWN_TIMEOUT"
	EnvFormscoutVersion         = "FORMSCOUT_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "FORMSCOUT_DB_HOST",
	Port:            "FORMSCOUT_DB_PORT",
	Name:            "FORMSCOUT_DB_NAME",
	User:            "FORMSCOUT_DB_USER",
	Password:        "FORMSCOUT_DB_PASSWORD",
	SSLMode:         "FORMSCOUT_DB_SSL_MODE",
	MaxOpenConns:    "FORMSCOUT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "FORMSCOUT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "FORMSCOUT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "FORMSCOUT_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "FORMSCOUT_STORAGE_CONTAINER_NAME",
	ConnectionString: "FORMSCOUT_STORAGE_CONNECTION_STRING",
	ServiceURL:       "FORMSCOUT_STORAGE_SERVICE_URL",
}

// Config is the root configuration for formscout.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	API             APIConfig            `toml:"api"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Workflow        WorkflowConfig       `toml:"workflow"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the FORMSCOUT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvFormscoutEnv); env != "" {
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
// and finalizes all values for the service. If no config.toml exists,
// defaults and environment variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read(BaseConfigFile)
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadLocal reads path (or config.toml when path is empty) and finalizes
// only the sections a local detection run needs: agent and workflow. The
// database, storage, server, and api sections are left unvalidated.
func LoadLocal(path string) (*Config, error) {
	if path == "" {
		path = BaseConfigFile
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := FinalizeAgent(&cfg.Agent); err != nil {
		return nil, fmt.Errorf("finalize config: agent: %w", err)
	}
	if err := cfg.Workflow.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: workflow: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads path (or config.toml when path is empty) and finalizes
// only the database section, for the migration tool.
func LoadDatabase(path string) (*database.Config, error) {
	if path == "" {
		path = BaseConfigFile
	}

	cfg, err := read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Database.Finalize(databaseEnv); err != nil {
		return nil, fmt.Errorf("finalize config: database: %w", err)
	}

	return &cfg.Database, nil
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
	c.Agent.Merge(&overlay.Agent)
	c.Workflow.Merge(&overlay.Workflow)
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
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
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
	if v := os.Getenv(EnvFormscoutShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvFormscoutVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

// read loads path when it exists, then merges the FORMSCOUT_ENV overlay
// found beside it.
func read(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	return cfg, nil
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

func overlayPath(base string) string {
	env := os.Getenv(EnvFormscoutEnv)
	if env == "" {
		return ""
	}

	path := filepath.Join(filepath.Dir(base), fmt.Sprintf(OverlayConfigPattern, env))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
