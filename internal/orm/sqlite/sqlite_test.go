package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/dbkit/internal/orm"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "adapter.db")
	db, err := Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func newTestConn(t *testing.T, db *DB) orm.Connection {
	t.Helper()

	conn, err := db.Factory()(context.Background())
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("close connection: %v", err)
		}
	})
	return conn
}

func mustExec(t *testing.T, conn orm.Connection, sql string, args ...any) int64 {
	t.Helper()

	ctx := context.Background()
	st, err := conn.Prepare(ctx, sql)
	if err != nil {
		t.Fatalf("prepare %q: %v", sql, err)
	}
	defer st.Close()
	for i, a := range args {
		if err := st.Bind(i+1, a); err != nil {
			t.Fatalf("bind %d: %v", i+1, err)
		}
	}
	n, err := st.Exec(ctx)
	if err != nil {
		t.Fatalf("exec %q: %v", sql, err)
	}
	return n
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open(Config{}); !errors.Is(err, orm.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestOpenReportsPath(t *testing.T) {
	db := openTestDB(t)
	if db.Path() == "" {
		t.Error("Path() is empty")
	}
}

func TestExecAndQueryRoundTrip(t *testing.T) {
	db := openTestDB(t)
	conn := newTestConn(t, db)
	ctx := context.Background()

	mustExec(t, conn, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)")
	if n := mustExec(t, conn, "INSERT INTO kv (k, v) VALUES (?, ?)", "greeting", "hello"); n != 1 {
		t.Errorf("affected = %d, want 1", n)
	}

	st, err := conn.Prepare(ctx, "SELECT v FROM kv WHERE k = ?")
	if err != nil {
		t.Fatalf("prepare select: %v", err)
	}
	defer st.Close()
	if err := st.Bind(1, "greeting"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	rs, err := st.Query(ctx)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rs.Close()

	if !rs.Next() {
		t.Fatal("no row returned")
	}
	var v string
	if err := rs.Scan(&v); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if v != "hello" {
		t.Errorf("v = %q, want hello", v)
	}
	if rs.Next() {
		t.Error("unexpected second row")
	}
	if err := rs.Err(); err != nil {
		t.Errorf("rows error: %v", err)
	}
}

func TestBindPositionsAreOneBased(t *testing.T) {
	db := openTestDB(t)
	conn := newTestConn(t, db)
	ctx := context.Background()

	st, err := conn.Prepare(ctx, "SELECT ?")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer st.Close()

	if err := st.Bind(0, "x"); err == nil {
		t.Error("Bind(0) must be rejected")
	}
	if err := st.Bind(1, "x"); err != nil {
		t.Errorf("Bind(1): %v", err)
	}
}

func TestLastInsertIDTracksSession(t *testing.T) {
	db := openTestDB(t)
	conn := newTestConn(t, db)
	ctx := context.Background()

	mustExec(t, conn, "CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)")
	mustExec(t, conn, "INSERT INTO items (name) VALUES (?)", "one")
	mustExec(t, conn, "INSERT INTO items (name) VALUES (?)", "two")

	id, err := conn.LastInsertID(ctx)
	if err != nil {
		t.Fatalf("LastInsertID: %v", err)
	}
	if id != 2 {
		t.Errorf("LastInsertID = %d, want 2", id)
	}
}

func TestTransactionBoundariesOnPinnedSession(t *testing.T) {
	db := openTestDB(t)
	conn := newTestConn(t, db)
	ctx := context.Background()

	mustExec(t, conn, "CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)")

	if err := conn.Begin(ctx); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	mustExec(t, conn, "INSERT INTO items (name) VALUES (?)", "doomed")
	if err := conn.Rollback(ctx); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	st, err := conn.Prepare(ctx, "SELECT COUNT(*) FROM items")
	if err != nil {
		t.Fatalf("prepare count: %v", err)
	}
	defer st.Close()
	rs, err := st.Query(ctx)
	if err != nil {
		t.Fatalf("query count: %v", err)
	}
	defer rs.Close()
	if !rs.Next() {
		t.Fatal("count query returned no rows")
	}
	var n int
	if err := rs.Scan(&n); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 0 {
		t.Errorf("rows after rollback = %d, want 0", n)
	}
}
