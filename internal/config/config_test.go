package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/dbkit/internal/orm"
)

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatalf("getwd: %v", wdErr)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "dbkit.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Pool.Min != 1 || cfg.Pool.Max != 8 {
		t.Errorf("Pool = %+v", cfg.Pool)
	}
	if cfg.Migrations.Dir != "migrations" || cfg.Migrations.Table != "schema_migrations" {
		t.Errorf("Migrations = %+v", cfg.Migrations)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbkit.yaml")
	content := `
database:
  path: /var/lib/app/app.db
  busy_timeout_ms: 2500
pool:
  min: 2
  max: 16
migrations:
  dir: db/migrations
  table: applied_migrations
logging:
  level: debug
  format: text
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/var/lib/app/app.db" || cfg.Database.BusyTimeoutMS != 2500 {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Pool.Min != 2 || cfg.Pool.Max != 16 {
		t.Errorf("Pool = %+v", cfg.Pool)
	}
	if cfg.Migrations.Dir != "db/migrations" || cfg.Migrations.Table != "applied_migrations" {
		t.Errorf("Migrations = %+v", cfg.Migrations)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, orm.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbkit.yaml")
	if err := os.WriteFile(path, []byte("pool: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); !errors.Is(err, orm.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatalf("getwd: %v", wdErr)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
	t.Setenv("DBKIT_DB_PATH", "/tmp/env.db")
	t.Setenv("DBKIT_MIGRATIONS_DIR", "env_migrations")
	t.Setenv("DBKIT_LOG_LEVEL", "error")
	t.Setenv("DBKIT_POOL_MAX", "32")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Migrations.Dir != "env_migrations" {
		t.Errorf("Migrations.Dir = %q", cfg.Migrations.Dir)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Pool.Max != 32 {
		t.Errorf("Pool.Max = %d", cfg.Pool.Max)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty db path", func(c *Config) { c.Database.Path = "" }},
		{"zero pool max", func(c *Config) { c.Pool.Max = 0 }},
		{"negative pool min", func(c *Config) { c.Pool.Min = -1 }},
		{"min above max", func(c *Config) { c.Pool.Min = 9; c.Pool.Max = 8 }},
		{"empty migrations dir", func(c *Config) { c.Migrations.Dir = "" }},
		{"empty table", func(c *Config) { c.Migrations.Table = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, orm.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}
