// Package sqlite adapts a SQLite database (modernc.org/sqlite, pure Go) to
// the orm driver contract. It is the one place SQLite specifics are allowed:
// DSN pragmas, BEGIN/COMMIT/ROLLBACK statements, last_insert_rowid tracking.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/dbkit/internal/orm"
	_ "modernc.org/sqlite" // SQLite driver
)

// Config holds SQLite-specific settings applied to every connection via DSN
// pragmas.
type Config struct {
	// Path is the database file path. ":memory:" works for tests.
	Path string

	// BusyTimeout is how long a connection waits on a locked database.
	BusyTimeout time.Duration

	// ForeignKeys enables foreign key constraint enforcement.
	ForeignKeys bool

	// JournalMode sets the journal mode (WAL, DELETE, ...). Empty keeps the
	// SQLite default.
	JournalMode string
}

// DefaultConfig returns production settings for the given database path:
// WAL journaling, foreign keys on, a 5s busy timeout.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		BusyTimeout: 5 * time.Second,
		ForeignKeys: true,
		JournalMode: "WAL",
	}
}

// DB owns the underlying database handle that pooled connections are drawn
// from. Closing the DB invalidates every connection created by its factory.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database described by cfg and verifies
// connectivity with a ping.
func Open(cfg Config) (*DB, error) {
	if cfg.Path == "" {
		return nil, orm.NewConfigurationError("database.path", "must not be empty")
	}

	dsn := "file:" + cfg.Path
	sep := "?"
	appendPragma := func(p string) {
		dsn += sep + "_pragma=" + p
		sep = "&"
	}
	if cfg.BusyTimeout > 0 {
		appendPragma(fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.ForeignKeys {
		appendPragma("foreign_keys(1)")
	}
	if cfg.JournalMode != "" {
		appendPragma("journal_mode(" + cfg.JournalMode + ")")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, orm.NewConnectionError("open", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, orm.NewConnectionError("ping", err)
	}
	return &DB{db: db, path: cfg.Path}, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// Close closes the underlying handle and every session derived from it.
func (d *DB) Close() error { return d.db.Close() }

// Factory returns a connection factory producing dedicated sessions suitable
// for the orm pool. Each connection pins one *sql.Conn so statements,
// transactions, and last_insert_rowid all observe the same session.
func (d *DB) Factory() orm.ConnectionFactory {
	return func(ctx context.Context) (orm.Connection, error) {
		conn, err := d.db.Conn(ctx)
		if err != nil {
			return nil, err
		}
		return &connection{conn: conn}, nil
	}
}

// connection is a single SQLite session.
type connection struct {
	conn *sql.Conn
	// lastInsert tracks the row id of the most recent insert executed on
	// this session, keeping LastInsertID free of dialect-specific queries.
	lastInsert int64
}

func (c *connection) Prepare(ctx context.Context, query string) (orm.Statement, error) {
	st, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("prepare %q: %w", query, err)
	}
	return &statement{conn: c, stmt: st}, nil
}

// Transaction boundaries are issued as plain statements on the pinned
// session; database/sql's own Tx machinery is bypassed on purpose so the
// boundary stays on exactly this connection.
func (c *connection) Begin(ctx context.Context) error { return c.execRaw(ctx, "BEGIN") }

func (c *connection) Commit(ctx context.Context) error { return c.execRaw(ctx, "COMMIT") }

func (c *connection) Rollback(ctx context.Context) error { return c.execRaw(ctx, "ROLLBACK") }

func (c *connection) execRaw(ctx context.Context, sql string) error {
	if _, err := c.conn.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("%s: %w", sql, err)
	}
	return nil
}

func (c *connection) LastInsertID(ctx context.Context) (int64, error) {
	return c.lastInsert, nil
}

func (c *connection) Close() error { return c.conn.Close() }

// statement is a prepared statement with buffered positional parameters.
type statement struct {
	conn *connection
	stmt *sql.Stmt
	args []any
}

func (s *statement) Bind(index int, value any) error {
	if index < 1 {
		return fmt.Errorf("bind index %d: positions are 1-based", index)
	}
	for len(s.args) < index {
		s.args = append(s.args, nil)
	}
	s.args[index-1] = value
	return nil
}

func (s *statement) Exec(ctx context.Context) (int64, error) {
	res, err := s.stmt.ExecContext(ctx, s.args...)
	if err != nil {
		return 0, err
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		s.conn.lastInsert = id
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (s *statement) Query(ctx context.Context) (orm.ResultSet, error) {
	rows, err := s.stmt.QueryContext(ctx, s.args...)
	if err != nil {
		return nil, err
	}
	return &resultSet{rows: rows}, nil
}

func (s *statement) Close() error { return s.stmt.Close() }

// resultSet is a thin veneer over *sql.Rows.
type resultSet struct {
	rows *sql.Rows
}

func (r *resultSet) Next() bool { return r.rows.Next() }

func (r *resultSet) Scan(dest ...any) error { return r.rows.Scan(dest...) }

func (r *resultSet) Err() error { return r.rows.Err() }

func (r *resultSet) Close() error { return r.rows.Close() }
