package orm

import (
	"context"
	"sync/atomic"
)

// fakeConn is a scriptable Connection for pool and transaction tests. Error
// fields inject failures; counters record how often each boundary ran.
type fakeConn struct {
	id int

	beginErr    error
	commitErr   error
	rollbackErr error

	begins    int
	commits   int
	rollbacks int
}

func (f *fakeConn) Prepare(ctx context.Context, sql string) (Statement, error) {
	return nil, nil
}

func (f *fakeConn) Begin(ctx context.Context) error {
	f.begins++
	return f.beginErr
}

func (f *fakeConn) Commit(ctx context.Context) error {
	f.commits++
	return f.commitErr
}

func (f *fakeConn) Rollback(ctx context.Context) error {
	f.rollbacks++
	return f.rollbackErr
}

func (f *fakeConn) LastInsertID(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeConn) Close() error { return nil }

// countingFactory produces fakeConns with sequential ids and tracks how many
// connections it has created.
func countingFactory() (ConnectionFactory, *atomic.Int64) {
	var created atomic.Int64
	factory := func(ctx context.Context) (Connection, error) {
		n := created.Add(1)
		return &fakeConn{id: int(n)}, nil
	}
	return factory, &created
}
