package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator produces query IDs "<prefix>-1", "<prefix>-2", ...
//
// Unlike engine.FixedGenerator it never runs out, and it can be reset so the
// same scenario run twice produces identical IDs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequenceGenerator creates a generator starting at 1.
// If prefix is empty, "query" is used.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "query"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements engine.QueryIDGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Current returns the number of IDs generated so far.
func (g *SequenceGenerator) Current() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seq
}

// Reset restarts the sequence. The next Generate returns "<prefix>-1".
func (g *SequenceGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}

// ConstantGenerator returns the same query ID every time.
//
// Useful for golden output where every response should carry one known ID.
//
// Thread-safety: ConstantGenerator is stateless and safe for concurrent use.
type ConstantGenerator struct {
	id string
}

// NewConstantGenerator creates a constant generator.
// If id is empty, Generate returns "test-query-default".
func NewConstantGenerator(id string) *ConstantGenerator {
	if id == "" {
		id = "test-query-default"
	}
	return &ConstantGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *ConstantGenerator) Generate() string {
	return g.id
}
