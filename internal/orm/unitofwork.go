package orm

import "context"

// UnitOfWork groups multiple persistence operations under a single atomic
// transaction boundary. It wraps exactly one Transaction, hence one pooled
// connection, and exposes that connection so cooperating repositories can
// participate in the same transaction.
//
// Like Transaction, a UnitOfWork is single-owner and single-goroutine; keep
// scopes short so pool capacity is not held hostage.
type UnitOfWork struct {
	tx *Transaction
}

// NewUnitOfWork begins a transaction on a pooled connection.
func NewUnitOfWork(ctx context.Context, pool *ConnectionPool) (*UnitOfWork, error) {
	tx, err := NewTransaction(ctx, pool)
	if err != nil {
		return nil, err
	}
	return &UnitOfWork{tx: tx}, nil
}

// Conn returns the connection shared by every operation in this unit of work.
func (u *UnitOfWork) Conn() Connection { return u.tx.Conn() }

// Commit makes the unit of work's changes permanent.
func (u *UnitOfWork) Commit(ctx context.Context) error { return u.tx.Commit(ctx) }

// Rollback discards the unit of work's changes.
func (u *UnitOfWork) Rollback(ctx context.Context) error { return u.tx.Rollback(ctx) }

// Close ends the scope, rolling back if the unit of work was neither
// committed nor rolled back. Safe to defer unconditionally.
func (u *UnitOfWork) Close() {
	if u == nil {
		return
	}
	u.tx.Close()
}
