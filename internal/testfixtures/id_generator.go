package testfixtures

import (
	"fmt"
	"sync"
)

// IDGenerator produces deterministic, lexicographically ordered migration
// identifiers for tests, e.g. "2025_01_01_000001_step".
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

// NewIDGenerator constructs a generator with the given date prefix. When
// prefix is empty, "2025_01_01" is used.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "2025_01_01"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier in the sequence. Zero-padding keeps the
// sequence sortable as plain text.
func (g *IDGenerator) Next(slug string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s_%06d_%s", g.prefix, g.counter, slug)
}
