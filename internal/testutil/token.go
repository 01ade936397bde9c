package testutil

import "sync"

// FixedTokenGenerator returns predetermined session tokens.
//
// Session tokens only appear in log lines; fixing them keeps captured logs
// stable across runs. Once the listed tokens are exhausted the generator
// repeats the last one.
//
// Thread-safety: FixedTokenGenerator is safe for concurrent use via internal mutex.
type FixedTokenGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedTokenGenerator creates a generator that returns tokens in order.
// With no tokens, Generate returns "test-session-default".
func NewFixedTokenGenerator(tokens ...string) *FixedTokenGenerator {
	if len(tokens) == 0 {
		tokens = []string{"test-session-default"}
	}
	return &FixedTokenGenerator{tokens: tokens}
}

// Generate returns the next token.
func (g *FixedTokenGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := g.tokens[g.idx]
	if g.idx < len(g.tokens)-1 {
		g.idx++
	}
	return token
}
