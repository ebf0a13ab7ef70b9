// Package testfixtures provides shared helpers for tests: migration-file
// writers, temporary SQLite databases, and deterministic id generation.
package testfixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/dbkit/internal/orm/sqlite"
)

// WriteMigration writes <id>.up.sql with upSQL into dir, plus <id>.down.sql
// when downSQL is non-empty. It fails the test on any I/O error.
func WriteMigration(t *testing.T, dir, id, upSQL, downSQL string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, id+".up.sql"), []byte(upSQL), 0o644); err != nil {
		t.Fatalf("write up migration %s: %v", id, err)
	}
	if downSQL != "" {
		if err := os.WriteFile(filepath.Join(dir, id+".down.sql"), []byte(downSQL), 0o644); err != nil {
			t.Fatalf("write down migration %s: %v", id, err)
		}
	}
}

// WriteOrphanDown writes a <id>.down.sql with no matching up-script.
func WriteOrphanDown(t *testing.T, dir, id, downSQL string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, id+".down.sql"), []byte(downSQL), 0o644); err != nil {
		t.Fatalf("write orphan down migration %s: %v", id, err)
	}
}

// NewTempDatabase opens a SQLite database inside t.TempDir and closes it when
// the test finishes.
func NewTempDatabase(t *testing.T) *sqlite.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.Open(sqlite.DefaultConfig(path))
	if err != nil {
		t.Fatalf("open temp database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close temp database: %v", err)
		}
	})
	return db
}
