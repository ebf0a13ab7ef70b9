package migration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChecksum(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "empty input",
			content: "",
			want:    "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:    "sql statement",
			content: "CREATE TABLE t (id INTEGER);",
			want:    Checksum([]byte("CREATE TABLE t (id INTEGER);")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Checksum([]byte(tt.content))
			if got != tt.want {
				t.Errorf("Checksum = %s, want %s", got, tt.want)
			}
			if len(got) != 64 {
				t.Errorf("Checksum length = %d, want 64", len(got))
			}
		})
	}
}

func TestChecksumIsByteExact(t *testing.T) {
	a := Checksum([]byte("SELECT 1;\n"))
	b := Checksum([]byte("SELECT 1;\r\n"))
	if a == b {
		t.Error("different line endings must produce different checksums")
	}
	if a != Checksum([]byte("SELECT 1;\n")) {
		t.Error("checksum is not stable for identical input")
	}
}

func TestChecksumFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.sql")
	content := []byte("CREATE TABLE t (id INTEGER);")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := ChecksumFile(path)
	if err != nil {
		t.Fatalf("ChecksumFile: %v", err)
	}
	if want := Checksum(content); got != want {
		t.Errorf("ChecksumFile = %s, want %s", got, want)
	}

	if _, err := ChecksumFile(filepath.Join(t.TempDir(), "missing.sql")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
