package orm

import "context"

// Connection is a live session with a database. Implementations are supplied
// by a driver adapter; the pool, transaction, and migration layers depend only
// on this capability set and never on a concrete driver type.
//
// A Connection is not safe for concurrent use. Each connection must stay
// confined to one goroutine for the duration of its checkout from the pool.
type Connection interface {
	// Prepare compiles a SQL statement with positional ? placeholders.
	Prepare(ctx context.Context, sql string) (Statement, error)

	// Begin starts a transaction on this connection.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback aborts the current transaction.
	Rollback(ctx context.Context) error

	// LastInsertID reports the row id generated by the most recent insert
	// executed on this connection.
	LastInsertID(ctx context.Context) (int64, error)

	// Close releases the underlying session. The pool never calls Close;
	// connection ownership at shutdown lies with whoever built the factory.
	Close() error
}

// Statement is a prepared statement with 1-based positional parameters.
type Statement interface {
	// Bind associates a value with the placeholder at the given 1-based index.
	Bind(index int, value any) error

	// Exec runs the statement and reports the number of affected rows.
	Exec(ctx context.Context) (int64, error)

	// Query runs the statement and returns a forward-only result set.
	Query(ctx context.Context) (ResultSet, error)

	Close() error
}

// ResultSet navigates query results row by row.
type ResultSet interface {
	// Next advances to the next row, reporting false when exhausted.
	Next() bool

	// Scan copies the current row's columns into dest, in column order.
	Scan(dest ...any) error

	// Err reports any error encountered during iteration.
	Err() error

	Close() error
}

// ConnectionFactory produces a new Connection. Factories are invoked by the
// pool outside its internal lock, so they may perform I/O freely.
type ConnectionFactory func(ctx context.Context) (Connection, error)
