package orm

import (
	"context"
	"strings"
)

// Repository provides the CRUD boilerplate for one entity type: it composes
// parameterized SQL, binds positionally, and executes through a pooled
// connection. Type mapping is delegated to the Mapper.
//
// Repository methods do not open transactions themselves. For atomicity
// across multiple calls, bind the repository to a UnitOfWork's connection
// with On.
type Repository[T any] struct {
	pool   *ConnectionPool
	conn   Connection // when set, overrides the pool (UnitOfWork participation)
	mapper Mapper[T]
}

// NewRepository builds a repository executing on connections borrowed from
// the pool.
func NewRepository[T any](pool *ConnectionPool, mapper Mapper[T]) *Repository[T] {
	return &Repository[T]{pool: pool, mapper: mapper}
}

// On returns a repository bound to a fixed connection so its operations join
// the caller's transaction.
func (r *Repository[T]) On(conn Connection) *Repository[T] {
	return &Repository[T]{pool: r.pool, conn: conn, mapper: r.mapper}
}

// connection resolves the connection to execute on, returning a release
// function that is a no-op for bound connections.
func (r *Repository[T]) connection() (Connection, func(), error) {
	if r.conn != nil {
		return r.conn, func() {}, nil
	}
	lease, err := AcquirePooled(r.pool)
	if err != nil {
		return nil, nil, err
	}
	return lease.Conn(), lease.Release, nil
}

// Insert stores a new entity and returns the generated row id.
func (r *Repository[T]) Insert(ctx context.Context, entity T) (int64, error) {
	cols := r.mapper.Columns()
	qb := NewQueryBuilder().
		Raw("INSERT INTO ").Raw(r.mapper.Table()).
		Raw(" (").Raw(strings.Join(cols, ", ")).Raw(") VALUES (").
		Raw(JoinPlaceholders(len(cols))).Raw(")")
	for _, v := range r.mapper.Values(entity) {
		qb.Param(v)
	}

	conn, release, err := r.connection()
	if err != nil {
		return 0, err
	}
	defer release()

	if _, err := r.exec(ctx, conn, qb); err != nil {
		return 0, err
	}
	id, err := conn.LastInsertID(ctx)
	if err != nil {
		return 0, NewConnectionError("last insert id", err)
	}
	return id, nil
}

// Update rewrites the entity stored under id. A missing row reports
// NotFoundError.
func (r *Repository[T]) Update(ctx context.Context, id int64, entity T) error {
	cols := r.mapper.Columns()
	qb := NewQueryBuilder().Raw("UPDATE ").Raw(r.mapper.Table()).Raw(" SET ")
	for i, col := range cols {
		if i > 0 {
			qb.Raw(", ")
		}
		qb.Raw(col).Raw(" = ?")
	}
	qb.Raw(" WHERE id = ?")
	for _, v := range r.mapper.Values(entity) {
		qb.Param(v)
	}
	qb.Param(id)

	conn, release, err := r.connection()
	if err != nil {
		return err
	}
	defer release()

	affected, err := r.exec(ctx, conn, qb)
	if err != nil {
		return err
	}
	if affected == 0 {
		return NewNotFoundError(r.mapper.Table(), id)
	}
	return nil
}

// Delete removes the entity stored under id. A missing row reports
// NotFoundError.
func (r *Repository[T]) Delete(ctx context.Context, id int64) error {
	qb := NewQueryBuilder().
		Raw("DELETE FROM ").Raw(r.mapper.Table()).Raw(" WHERE id = ?").
		Param(id)

	conn, release, err := r.connection()
	if err != nil {
		return err
	}
	defer release()

	affected, err := r.exec(ctx, conn, qb)
	if err != nil {
		return err
	}
	if affected == 0 {
		return NewNotFoundError(r.mapper.Table(), id)
	}
	return nil
}

// FindByID loads the entity stored under id, reporting NotFoundError when it
// does not exist.
func (r *Repository[T]) FindByID(ctx context.Context, id int64) (T, error) {
	var zero T
	qb := NewQueryBuilder().
		Raw("SELECT id, ").Raw(strings.Join(r.mapper.Columns(), ", ")).
		Raw(" FROM ").Raw(r.mapper.Table()).
		Raw(" WHERE id = ? LIMIT 1").
		Param(id)

	conn, release, err := r.connection()
	if err != nil {
		return zero, err
	}
	defer release()

	rs, cleanup, err := r.query(ctx, conn, qb)
	if err != nil {
		return zero, err
	}
	defer cleanup()

	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return zero, NewConnectionError("query", err)
		}
		return zero, NewNotFoundError(r.mapper.Table(), id)
	}
	return r.mapper.Scan(rs)
}

// FindAll loads every entity in the table, ordered by id.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	qb := NewQueryBuilder().
		Raw("SELECT id, ").Raw(strings.Join(r.mapper.Columns(), ", ")).
		Raw(" FROM ").Raw(r.mapper.Table()).
		Raw(" ORDER BY id")

	conn, release, err := r.connection()
	if err != nil {
		return nil, err
	}
	defer release()

	rs, cleanup, err := r.query(ctx, conn, qb)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []T
	for rs.Next() {
		entity, err := r.mapper.Scan(rs)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	if err := rs.Err(); err != nil {
		return nil, NewConnectionError("query", err)
	}
	return out, nil
}

func (r *Repository[T]) exec(ctx context.Context, conn Connection, qb *QueryBuilder) (int64, error) {
	st, err := conn.Prepare(ctx, qb.SQL())
	if err != nil {
		return 0, NewConnectionError("prepare", err)
	}
	defer st.Close()

	if err := qb.Bind(st); err != nil {
		return 0, NewConnectionError("bind", err)
	}
	affected, err := st.Exec(ctx)
	if err != nil {
		return 0, NewConnectionError("exec", err)
	}
	return affected, nil
}

func (r *Repository[T]) query(ctx context.Context, conn Connection, qb *QueryBuilder) (ResultSet, func(), error) {
	st, err := conn.Prepare(ctx, qb.SQL())
	if err != nil {
		return nil, nil, NewConnectionError("prepare", err)
	}
	if err := qb.Bind(st); err != nil {
		st.Close()
		return nil, nil, NewConnectionError("bind", err)
	}
	rs, err := st.Query(ctx)
	if err != nil {
		st.Close()
		return nil, nil, NewConnectionError("query", err)
	}
	cleanup := func() {
		rs.Close()
		st.Close()
	}
	return rs, cleanup, nil
}
