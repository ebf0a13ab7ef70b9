package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Checksum returns the SHA-256 digest of content as a 64-character lowercase
// hex string. The digest is byte-exact: no normalization of line endings or
// whitespace, so it is stable across runs and platforms for identical bytes.
//
// Used for drift detection only, not security.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ChecksumFile returns the checksum of a file's raw bytes.
func ChecksumFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read migration file %s: %w", path, err)
	}
	return Checksum(data), nil
}
