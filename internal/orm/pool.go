package orm

import (
	"context"
	"sync"
)

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	// Min is the number of connections Warmup creates eagerly.
	Min int

	// Max is the hard ceiling on connections ever created.
	Max int
}

// DefaultPoolConfig returns the pool bounds used when none are configured.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{Min: 1, Max: 8}
}

// ConnectionPool manages a bounded set of reusable connections. Acquire
// returns an idle connection when one exists, creates a new one while the
// total stays under Max, and otherwise blocks until a release.
//
// The pool is a reuse cache, not an elastic pool: once created, a connection
// is recycled forever and never closed by the pool. All methods are safe for
// concurrent use.
type ConnectionPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	factory ConnectionFactory
	cfg     PoolConfig
	idle    []Connection
	total   int // connections ever created; only decremented to compensate a failed factory call
}

// NewConnectionPool validates cfg and builds an empty pool around factory.
func NewConnectionPool(factory ConnectionFactory, cfg PoolConfig) (*ConnectionPool, error) {
	if factory == nil {
		return nil, NewConfigurationError("pool.factory", "connection factory must not be nil")
	}
	if cfg.Max < 1 {
		return nil, NewConfigurationError("pool.max", "must be at least 1")
	}
	if cfg.Min < 0 {
		return nil, NewConfigurationError("pool.min", "must not be negative")
	}
	if cfg.Min > cfg.Max {
		return nil, NewConfigurationError("pool.min", "must not exceed pool.max")
	}
	p := &ConnectionPool{factory: factory, cfg: cfg}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

// Acquire returns a connection, blocking indefinitely while the pool is
// exhausted. There is no built-in timeout or cancellation; callers that need
// one must wrap the call externally.
func (p *ConnectionPool) Acquire() (Connection, error) {
	p.mu.Lock()
	for {
		if n := len(p.idle); n > 0 {
			c := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			return c, nil
		}

		if p.total < p.cfg.Max {
			// Reserve the slot, then connect outside the lock so other
			// pool operations are not blocked behind driver I/O.
			p.total++
			p.mu.Unlock()

			c, err := p.factory(context.Background())
			if err != nil {
				p.mu.Lock()
				p.total--
				// A waiter may now be able to claim the freed slot.
				p.cond.Signal()
				p.mu.Unlock()
				return nil, NewConnectionError("connect", err)
			}
			return c, nil
		}

		// Re-checked in a loop to guard against spurious wakeups.
		p.cond.Wait()
	}
}

// Release returns a connection to the idle queue and wakes one waiter.
// Releasing nil is a no-op.
func (p *ConnectionPool) Release(c Connection) {
	if c == nil {
		return
	}
	p.mu.Lock()
	p.idle = append(p.idle, c)
	p.mu.Unlock()
	p.cond.Signal()
}

// Warmup eagerly creates Min connections so the first requests do not pay
// connect latency. Slots already counted (from earlier Acquire or Warmup
// calls) are not duplicated.
func (p *ConnectionPool) Warmup() error {
	for {
		p.mu.Lock()
		if p.total >= p.cfg.Min || p.total >= p.cfg.Max {
			p.mu.Unlock()
			return nil
		}
		p.total++
		p.mu.Unlock()

		c, err := p.factory(context.Background())
		if err != nil {
			p.mu.Lock()
			p.total--
			p.cond.Signal()
			p.mu.Unlock()
			return NewConnectionError("warmup", err)
		}
		p.Release(c)
	}
}

// Stats reports the current idle and total connection counts.
func (p *ConnectionPool) Stats() (idle, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle), p.total
}

// PooledConn is a scoped acquisition guard: construction acquires a
// connection, Release returns it exactly once. Pair with defer so the
// connection goes back to the pool on every exit path.
type PooledConn struct {
	pool     *ConnectionPool
	conn     Connection
	released bool
}

// AcquirePooled borrows a connection from the pool wrapped in a guard.
func AcquirePooled(pool *ConnectionPool) (*PooledConn, error) {
	c, err := pool.Acquire()
	if err != nil {
		return nil, err
	}
	return &PooledConn{pool: pool, conn: c}, nil
}

// Conn returns the borrowed connection.
func (pc *PooledConn) Conn() Connection { return pc.conn }

// Release returns the connection to the pool. Further calls are no-ops, so
// it is safe to defer Release and also call it early.
func (pc *PooledConn) Release() {
	if pc == nil || pc.released {
		return
	}
	pc.released = true
	pc.pool.Release(pc.conn)
	pc.conn = nil
}
