// Command migrator applies, rolls back, and reports file-based SQL schema
// migrations against a SQLite database.
//
// Usage:
//
//	migrator migrate  [--db <path>] [--dir <migrations_dir>] [--config <file>]
//	migrator rollback --steps <n> [--db <path>] [--dir <migrations_dir>] [--config <file>]
//	migrator status   [--db <path>] [--dir <migrations_dir>] [--config <file>]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/example/dbkit/internal/config"
	"github.com/example/dbkit/internal/logging"
	"github.com/example/dbkit/internal/orm"
	"github.com/example/dbkit/internal/orm/migration"
	"github.com/example/dbkit/internal/orm/sqlite"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	command    string
	configPath string
	dbPath     string
	dir        string
	steps      int
	help       bool
}

func parseArgs(args []string) (options, error) {
	var opt options

	if len(args) == 0 {
		return options{}, orm.NewConfigurationError("command",
			"expected one of: migrate, rollback, status")
	}
	if args[0] == "-h" || args[0] == "--help" {
		opt.help = true
		return opt, nil
	}

	opt.command = args[0]
	switch opt.command {
	case "migrate", "rollback", "status":
	default:
		return options{}, orm.NewConfigurationError("command",
			fmt.Sprintf("unknown command: %s", opt.command))
	}

	fs := flag.NewFlagSet(opt.command, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opt.configPath, "config", "", "configuration file")
	fs.StringVar(&opt.dbPath, "db", "", "database file path")
	fs.StringVar(&opt.dir, "dir", "", "migrations directory")
	fs.IntVar(&opt.steps, "steps", 0, "number of migrations to roll back")
	if err := fs.Parse(args[1:]); err != nil {
		return options{}, orm.NewConfigurationError("flags", err.Error())
	}

	if opt.command == "rollback" && opt.steps < 1 {
		return options{}, orm.NewConfigurationError("--steps", "rollback requires --steps >= 1")
	}
	return opt, nil
}

func usage(w io.Writer) {
	fmt.Fprint(w, `dbkit migrator

Usage:
  migrator migrate  [--db <path>] [--dir <migrations_dir>] [--config <file>]
  migrator rollback --steps <n> [--db <path>] [--dir <migrations_dir>] [--config <file>]
  migrator status   [--db <path>] [--dir <migrations_dir>] [--config <file>]

Migration files are named <id>.up.sql / <id>.down.sql with timestamp-prefixed
ids, e.g. 2025_10_10_121530_create_users.up.sql.
`)
}

func run(args []string, stdout, stderr io.Writer) error {
	opt, err := parseArgs(args)
	if err != nil {
		return err
	}
	if opt.help {
		usage(stdout)
		return nil
	}

	cfg, err := config.Load(opt.configPath)
	if err != nil {
		return err
	}
	// Command-line flags win over file and environment.
	if opt.dbPath != "" {
		cfg.Database.Path = opt.dbPath
	}
	if opt.dir != "" {
		cfg.Migrations.Dir = opt.dir
	}

	logger := logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format).
		With("run_id", uuid.NewString())
	ctx := logging.ContextWithLogger(context.Background(), logger)

	db, err := sqlite.Open(sqlite.DefaultConfig(cfg.Database.Path))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	pool, err := orm.NewConnectionPool(db.Factory(), orm.PoolConfig{
		Min: cfg.Pool.Min,
		Max: cfg.Pool.Max,
	})
	if err != nil {
		return err
	}
	if err := pool.Warmup(); err != nil {
		return err
	}

	lease, err := orm.AcquirePooled(pool)
	if err != nil {
		return err
	}
	defer lease.Release()

	runner := migration.NewRunner(lease.Conn(), migration.Config{
		Dir:   cfg.Migrations.Dir,
		Table: cfg.Migrations.Table,
	}, logger)

	switch opt.command {
	case "migrate":
		if err := runner.ApplyAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "migrations applied")
	case "rollback":
		if err := runner.Rollback(ctx, opt.steps); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "rolled back %d migration(s)\n", opt.steps)
	case "status":
		status, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(stdout, status)
	}
	return nil
}

func printStatus(w io.Writer, status *migration.Status) {
	fmt.Fprintf(w, "applied (%d):\n", len(status.Applied))
	for _, rec := range status.Applied {
		fmt.Fprintf(w, "  %s  %s  %s\n", rec.ID, rec.Checksum, rec.AppliedAt)
	}
	fmt.Fprintf(w, "pending (%d):\n", len(status.Pending))
	for _, p := range status.Pending {
		reversible := "down"
		if !p.Reversible() {
			reversible = "no down"
		}
		fmt.Fprintf(w, "  %s  (%s)\n", p.ID, reversible)
	}
}
