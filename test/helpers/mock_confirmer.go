package helpers

import (
	"context"
	"sync"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// MockConfirmer answers prompts with a configurable decision and records them
type MockConfirmer struct {
	mu      sync.Mutex
	answer  bool
	prompts []shared.Prompt
}

// NewMockConfirmer creates a confirmer that always gives answer
func NewMockConfirmer(answer bool) *MockConfirmer {
	return &MockConfirmer{answer: answer}
}

// SetAnswer changes the decision for later prompts
func (c *MockConfirmer) SetAnswer(answer bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answer = answer
}

// Confirm records the prompt and returns the configured answer
func (c *MockConfirmer) Confirm(ctx context.Context, prompt shared.Prompt) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.answer
}

// Prompts returns every prompt seen so far
func (c *MockConfirmer) Prompts() []shared.Prompt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]shared.Prompt(nil), c.prompts...)
}

// Reset forgets recorded prompts
func (c *MockConfirmer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = nil
}
