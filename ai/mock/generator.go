package mock

import (
	"context"

	"github.com/veracue/docflow/core"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses default deterministic behavior.
	GenerateFunc func(ctx context.Context, query, prompt string, evidence []*core.ChunkRecord) (string, error)

	callCount int
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// WithGenerateFunc sets a custom generate function and returns the mock for chaining.
func (m *MockGenerator) WithGenerateFunc(fn func(ctx context.Context, query, prompt string, evidence []*core.ChunkRecord) (string, error)) *MockGenerator {
	m.GenerateFunc = fn
	return m
}

// Generate echoes the query so tests can assert the wiring without a model.
func (m *MockGenerator) Generate(ctx context.Context, query, prompt string, evidence []*core.ChunkRecord) (string, error) {
	m.callCount++

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, query, prompt, evidence)
	}
	return "Answer: " + query, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.GenerateFunc = nil
}
