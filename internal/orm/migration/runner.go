package migration

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/example/dbkit/internal/orm"
)

// Defaults for the migrations directory and the tracking table.
const (
	DefaultDir   = "migrations"
	DefaultTable = "schema_migrations"
)

// Config selects where migrations live and where applied ones are recorded.
type Config struct {
	// Dir is the migrations directory. Defaults to "migrations".
	Dir string

	// Table is the tracking table name. Defaults to "schema_migrations".
	// It is a trusted identifier and is interpolated into DDL/DML unescaped.
	Table string
}

// Record is a row of the tracking table. A record exists exactly while its
// migration is considered applied.
type Record struct {
	ID        string
	Checksum  string
	AppliedAt string
}

// Status summarizes the tracking table against the migrations directory.
type Status struct {
	Applied []Record
	Pending []Pair
}

// Runner orchestrates applying and rolling back file migrations over a
// single connection. It is meant for one-shot, single-goroutine invocation
// (typically a CLI run); it takes no locks of its own.
type Runner struct {
	conn   orm.Connection
	dir    string
	table  string
	logger *slog.Logger
}

// NewRunner builds a runner over conn. Zero-value Config fields fall back to
// the package defaults; a nil logger falls back to slog.Default.
func NewRunner(conn orm.Connection, cfg Config, logger *slog.Logger) *Runner {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{conn: conn, dir: cfg.Dir, table: cfg.Table, logger: logger}
}

// EnsureTable creates the tracking table when absent. The DDL is idempotent
// and deliberately dialect-neutral.
func (r *Runner) EnsureTable(ctx context.Context) error {
	ddl := "CREATE TABLE IF NOT EXISTS " + r.table + " (" +
		" id VARCHAR(255) NOT NULL PRIMARY KEY," +
		" checksum VARCHAR(64) NOT NULL," +
		" applied_at VARCHAR(64) NOT NULL" +
		")"
	if _, err := r.exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure tracking table %s: %w", r.table, err)
	}
	return nil
}

// ApplyAll applies every pending migration in ascending id order, each in its
// own transaction. An applied migration whose up-script checksum matches the
// recorded one is skipped; a mismatch halts the run with a DriftError before
// any further statement executes. Migrations committed in earlier iterations
// stay applied when a later one fails.
func (r *Runner) ApplyAll(ctx context.Context) error {
	if err := r.EnsureTable(ctx); err != nil {
		return err
	}
	pairs, err := ScanPairs(r.dir)
	if err != nil {
		return err
	}

	for _, m := range pairs {
		recorded, applied, err := r.appliedChecksum(ctx, m.ID)
		if err != nil {
			return err
		}
		if applied {
			if recorded != m.UpChecksum {
				return NewDriftError(m.ID, recorded, m.UpChecksum)
			}
			r.logger.Debug("migration already applied", "id", m.ID)
			continue
		}

		if err := r.applyOne(ctx, m); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.ID, err)
		}
		r.logger.Info("migration applied", "id", m.ID, "checksum", m.UpChecksum)
	}
	return nil
}

// Rollback undoes the last `steps` applied migrations, newest first, each in
// its own transaction. "Last applied" is determined purely by tracking-table
// content, so migrations added out of order roll back correctly as long as
// ids remain timestamp-ordered. steps <= 0 is a no-op.
func (r *Runner) Rollback(ctx context.Context, steps int) error {
	if err := r.EnsureTable(ctx); err != nil {
		return err
	}
	if steps <= 0 {
		return nil
	}

	pairs, err := ScanPairs(r.dir)
	if err != nil {
		return err
	}
	byID := make(map[string]Pair, len(pairs))
	for _, p := range pairs {
		byID[p.ID] = p
	}

	for i := 0; i < steps; i++ {
		id, ok, err := r.lastAppliedID(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return NewStateError("", ErrNothingToRollback)
		}

		m, found := byID[id]
		if !found {
			return NewStateError(id, ErrUnknownMigration)
		}
		if !m.Reversible() {
			return NewStateError(id, ErrMissingDownScript)
		}

		if err := r.rollbackOne(ctx, m); err != nil {
			return fmt.Errorf("roll back migration %s: %w", m.ID, err)
		}
		r.logger.Info("migration rolled back", "id", m.ID)
	}
	return nil
}

// Status reports applied records and pending pairs without changing anything.
func (r *Runner) Status(ctx context.Context) (*Status, error) {
	if err := r.EnsureTable(ctx); err != nil {
		return nil, err
	}
	pairs, err := ScanPairs(r.dir)
	if err != nil {
		return nil, err
	}
	applied, err := r.appliedRecords(ctx)
	if err != nil {
		return nil, err
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, rec := range applied {
		appliedSet[rec.ID] = true
	}
	var pending []Pair
	for _, p := range pairs {
		if !appliedSet[p.ID] {
			pending = append(pending, p)
		}
	}
	return &Status{Applied: applied, Pending: pending}, nil
}

// applyOne runs a single up-script and its bookkeeping inside one
// transaction.
func (r *Runner) applyOne(ctx context.Context, m Pair) error {
	if err := r.conn.Begin(ctx); err != nil {
		return orm.NewTransactionError("begin", err)
	}

	err := func() error {
		if err := r.execScriptFile(ctx, m.UpPath); err != nil {
			return err
		}
		return r.markApplied(ctx, m.ID, m.UpChecksum)
	}()
	if err != nil {
		// Best-effort rollback: its own failure is discarded so the
		// original error is what the caller sees.
		_ = r.conn.Rollback(ctx)
		return err
	}

	if err := r.conn.Commit(ctx); err != nil {
		_ = r.conn.Rollback(ctx)
		return orm.NewTransactionError("commit", err)
	}
	return nil
}

// rollbackOne runs a single down-script and deletes the tracking record
// inside one transaction.
func (r *Runner) rollbackOne(ctx context.Context, m Pair) error {
	if err := r.conn.Begin(ctx); err != nil {
		return orm.NewTransactionError("begin", err)
	}

	err := func() error {
		if err := r.execScriptFile(ctx, m.DownPath); err != nil {
			return err
		}
		return r.unmarkApplied(ctx, m.ID)
	}()
	if err != nil {
		_ = r.conn.Rollback(ctx)
		return err
	}

	if err := r.conn.Commit(ctx); err != nil {
		_ = r.conn.Rollback(ctx)
		return orm.NewTransactionError("commit", err)
	}
	return nil
}

// execScriptFile executes every statement of a script file in sequence.
func (r *Runner) execScriptFile(ctx context.Context, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file %s: %w", path, err)
	}
	for _, stmt := range SplitStatements(string(script)) {
		if _, err := r.exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// appliedChecksum looks up the recorded checksum for id, reporting whether a
// record exists.
func (r *Runner) appliedChecksum(ctx context.Context, id string) (string, bool, error) {
	rs, cleanup, err := r.query(ctx, "SELECT checksum FROM "+r.table+" WHERE id = ?", id)
	if err != nil {
		return "", false, err
	}
	defer cleanup()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return "", false, orm.NewConnectionError("query", err)
		}
		return "", false, nil
	}
	var checksum string
	if err := rs.Scan(&checksum); err != nil {
		return "", false, orm.NewConnectionError("scan", err)
	}
	return checksum, true, nil
}

// lastAppliedID returns the lexicographically greatest applied id.
func (r *Runner) lastAppliedID(ctx context.Context) (string, bool, error) {
	rs, cleanup, err := r.query(ctx, "SELECT id FROM "+r.table+" ORDER BY id DESC LIMIT 1")
	if err != nil {
		return "", false, err
	}
	defer cleanup()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return "", false, orm.NewConnectionError("query", err)
		}
		return "", false, nil
	}
	var id string
	if err := rs.Scan(&id); err != nil {
		return "", false, orm.NewConnectionError("scan", err)
	}
	return id, true, nil
}

func (r *Runner) appliedRecords(ctx context.Context) ([]Record, error) {
	rs, cleanup, err := r.query(ctx,
		"SELECT id, checksum, applied_at FROM "+r.table+" ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []Record
	for rs.Next() {
		var rec Record
		if err := rs.Scan(&rec.ID, &rec.Checksum, &rec.AppliedAt); err != nil {
			return nil, orm.NewConnectionError("scan", err)
		}
		out = append(out, rec)
	}
	if err := rs.Err(); err != nil {
		return nil, orm.NewConnectionError("query", err)
	}
	return out, nil
}

func (r *Runner) markApplied(ctx context.Context, id, checksum string) error {
	appliedAt := time.Now().UTC().Format(time.RFC3339)
	_, err := r.exec(ctx,
		"INSERT INTO "+r.table+" (id, checksum, applied_at) VALUES (?, ?, ?)",
		id, checksum, appliedAt)
	return err
}

func (r *Runner) unmarkApplied(ctx context.Context, id string) error {
	_, err := r.exec(ctx, "DELETE FROM "+r.table+" WHERE id = ?", id)
	return err
}

// exec prepares, binds, and executes one statement on the runner's
// connection.
func (r *Runner) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	st, err := r.conn.Prepare(ctx, sql)
	if err != nil {
		return 0, orm.NewConnectionError("prepare", err)
	}
	defer st.Close()

	for i, a := range args {
		if err := st.Bind(i+1, a); err != nil {
			return 0, orm.NewConnectionError("bind", err)
		}
	}
	n, err := st.Exec(ctx)
	if err != nil {
		return 0, orm.NewConnectionError("exec", err)
	}
	return n, nil
}

// query prepares, binds, and runs one query, returning the result set and a
// cleanup closing both the set and the statement.
func (r *Runner) query(ctx context.Context, sql string, args ...any) (orm.ResultSet, func(), error) {
	st, err := r.conn.Prepare(ctx, sql)
	if err != nil {
		return nil, nil, orm.NewConnectionError("prepare", err)
	}
	for i, a := range args {
		if err := st.Bind(i+1, a); err != nil {
			st.Close()
			return nil, nil, orm.NewConnectionError("bind", err)
		}
	}
	rs, err := st.Query(ctx)
	if err != nil {
		st.Close()
		return nil, nil, orm.NewConnectionError("query", err)
	}
	return rs, func() {
		rs.Close()
		st.Close()
	}, nil
}
