package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator hands out predictable document ids.
//
// Ids are "<prefix>-0001", "<prefix>-0002", ... so that tests can assert on
// exact ids and sort order.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewFixedIDGenerator creates a generator. An empty prefix becomes "test-id".
func NewFixedIDGenerator(prefix string) *FixedIDGenerator {
	if prefix == "" {
		prefix = "test-id"
	}
	return &FixedIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}

// Reset starts the sequence over.
func (g *FixedIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = 0
}
