package orm

import "context"

// txState tracks the transaction lifecycle: Active until Commit or Rollback
// succeeds, then terminal.
type txState int

const (
	txActive txState = iota
	txCommitted
	txRolledBack
)

// Transaction is a scoped transaction boundary over one pooled connection.
// NewTransaction begins the underlying transaction immediately; Close rolls
// back if neither Commit nor Rollback ran, so abandoning a transaction on any
// exit path still results in a best-effort rollback.
//
// A Transaction is confined to a single goroutine.
type Transaction struct {
	lease  *PooledConn
	state  txState
	closed bool
}

// NewTransaction acquires a connection from the pool and begins a
// transaction on it. On begin failure the connection is returned to the pool
// and a TransactionError is reported.
func NewTransaction(ctx context.Context, pool *ConnectionPool) (*Transaction, error) {
	lease, err := AcquirePooled(pool)
	if err != nil {
		return nil, err
	}
	if err := lease.Conn().Begin(ctx); err != nil {
		lease.Release()
		return nil, NewTransactionError("begin", err)
	}
	return &Transaction{lease: lease, state: txActive}, nil
}

// Conn exposes the transaction's connection so multiple operations can share
// the same transaction boundary.
func (t *Transaction) Conn() Connection { return t.lease.Conn() }

// Commit commits the transaction. On failure the state stays Active: the
// unit of work is fatally broken for the caller, and Close will still attempt
// the rollback.
func (t *Transaction) Commit(ctx context.Context) error {
	if t.state != txActive {
		return NewTransactionError("commit", ErrTransaction)
	}
	if err := t.Conn().Commit(ctx); err != nil {
		return NewTransactionError("commit", err)
	}
	t.state = txCommitted
	return nil
}

// Rollback aborts the transaction. Calling it after a terminal state is a
// guarded no-op rather than a re-execution.
func (t *Transaction) Rollback(ctx context.Context) error {
	if t.state != txActive {
		return nil
	}
	if err := t.Conn().Rollback(ctx); err != nil {
		return NewTransactionError("rollback", err)
	}
	t.state = txRolledBack
	return nil
}

// Close finishes the transaction scope: if still Active it attempts a
// rollback, discarding any failure, then returns the connection to the pool.
// Close is idempotent and must never fail, so it is safe to defer
// unconditionally.
func (t *Transaction) Close() {
	if t == nil || t.closed {
		return
	}
	t.closed = true
	if t.state == txActive {
		// Cleanup-path rollback: errors are deliberately swallowed so the
		// original failure is never masked.
		if err := t.Conn().Rollback(context.Background()); err == nil {
			t.state = txRolledBack
		}
	}
	t.lease.Release()
}
