// Package config loads migrator configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/dbkit/internal/orm"
)

// Config is the root configuration for the migrator.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Pool       PoolConfig       `yaml:"pool"`
	Migrations MigrationsConfig `yaml:"migrations"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	// Path is the filesystem path to the SQLite database file.
	Path string `yaml:"path"`

	// BusyTimeoutMS is the lock wait budget in milliseconds.
	BusyTimeoutMS int `yaml:"busy_timeout_ms"`
}

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// MigrationsConfig selects the migrations directory and tracking table.
type MigrationsConfig struct {
	Dir   string `yaml:"dir"`
	Table string `yaml:"table"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Database:   DatabaseConfig{Path: "dbkit.db", BusyTimeoutMS: 5000},
		Pool:       PoolConfig{Min: 1, Max: 8},
		Migrations: MigrationsConfig{Dir: "migrations", Table: "schema_migrations"},
		Logging:    LoggingConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// path is empty the file is optional and "dbkit.yaml" is tried), then DBKIT_*
// environment overrides. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	required := path != ""
	if path == "" {
		path = "dbkit.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, orm.NewConfigurationError(path, fmt.Sprintf("invalid YAML: %v", err))
		}
	case os.IsNotExist(err) && !required:
		// Optional default file; defaults stand.
	default:
		return Config{}, orm.NewConfigurationError(path, fmt.Sprintf("cannot read: %v", err))
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays DBKIT_* environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DBKIT_DB_PATH")); v != "" {
		cfg.Database.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("DBKIT_MIGRATIONS_DIR")); v != "" {
		cfg.Migrations.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv("DBKIT_MIGRATIONS_TABLE")); v != "" {
		cfg.Migrations.Table = v
	}
	if v := strings.TrimSpace(os.Getenv("DBKIT_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("DBKIT_POOL_MAX")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pool.Max = n
		}
	}
}

// Validate reports the first invalid setting as a ConfigurationError.
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return orm.NewConfigurationError("database.path", "must not be empty")
	}
	if c.Pool.Max < 1 {
		return orm.NewConfigurationError("pool.max", "must be at least 1")
	}
	if c.Pool.Min < 0 {
		return orm.NewConfigurationError("pool.min", "must not be negative")
	}
	if c.Pool.Min > c.Pool.Max {
		return orm.NewConfigurationError("pool.min", "must not exceed pool.max")
	}
	if c.Migrations.Dir == "" {
		return orm.NewConfigurationError("migrations.dir", "must not be empty")
	}
	if c.Migrations.Table == "" {
		return orm.NewConfigurationError("migrations.table", "must not be empty")
	}
	return nil
}
