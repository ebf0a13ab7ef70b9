package migration

import (
	"reflect"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "empty script",
			script: "",
			want:   nil,
		},
		{
			name:   "single statement",
			script: "CREATE TABLE t (id INTEGER);",
			want:   []string{"CREATE TABLE t (id INTEGER)"},
		},
		{
			name:   "multiple statements",
			script: "CREATE TABLE t (id INTEGER);\nCREATE INDEX i ON t (id);\n",
			want:   []string{"CREATE TABLE t (id INTEGER)", "CREATE INDEX i ON t (id)"},
		},
		{
			name:   "semicolon inside single-quoted literal",
			script: "INSERT INTO t VALUES ('a;b'); SELECT 1;",
			want:   []string{"INSERT INTO t VALUES ('a;b')", "SELECT 1"},
		},
		{
			name:   "semicolon inside double-quoted identifier",
			script: `CREATE TABLE "odd;name" (id INTEGER); SELECT 1;`,
			want:   []string{`CREATE TABLE "odd;name" (id INTEGER)`, "SELECT 1"},
		},
		{
			name:   "doubled quote escape",
			script: "INSERT INTO t VALUES ('it''s; fine'); SELECT 2;",
			want:   []string{"INSERT INTO t VALUES ('it''s; fine')", "SELECT 2"},
		},
		{
			name:   "trailing statement without semicolon",
			script: "SELECT 1; SELECT 2",
			want:   []string{"SELECT 1", "SELECT 2"},
		},
		{
			name:   "blank statements dropped",
			script: ";;\n ; SELECT 1;",
			want:   []string{"SELECT 1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitStatements(tt.script)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitStatements(%q) = %q, want %q", tt.script, got, tt.want)
			}
		})
	}
}
