package testutil

import (
	"fmt"
	"sync"
)

// Tokens returns predetermined operation tokens in sequence.
//
// This enables deterministic test execution and golden trace comparison:
// the same scenario with the same token list produces byte-identical
// traces. Implements register.TokenGenerator.
//
// With no predetermined tokens, Generate() counts through "op-001",
// "op-002", ... instead.
//
// Thread-safety: Tokens is safe for concurrent use via internal mutex.
type Tokens struct {
	mu    sync.Mutex
	fixed []string
	idx   int
}

// NewTokens creates a generator that returns tokens in order.
//
// Example:
//
//	gen := testutil.NewTokens("op-a", "op-b")
//	gen.Generate() // "op-a"
//	gen.Generate() // "op-b"
//	gen.Generate() // panic: all tokens exhausted
//
// Panicking on exhaustion is a fail-fast approach to catch test
// misconfiguration (the test ran more operations than it declared).
func NewTokens(tokens ...string) *Tokens {
	return &Tokens{fixed: tokens}
}

// Generate returns the next token.
func (g *Tokens) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if len(g.fixed) == 0 {
		return fmt.Sprintf("op-%03d", g.idx)
	}
	if g.idx > len(g.fixed) {
		panic("testutil: all fixed tokens exhausted")
	}
	return g.fixed[g.idx-1]
}

// Reset rewinds the generator to its first token.
func (g *Tokens) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.idx = 0
}
