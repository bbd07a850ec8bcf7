package mock

import (
	"context"

	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
)

// MockScorer is a test double for ai.GroundednessScorer.
// It allows custom behavior injection via function fields.
type MockScorer struct {
	// ScoreFunc is called by ScoreGroundedness if set.
	// If nil, uses default deterministic behavior.
	ScoreFunc func(ctx context.Context, answer, query string, evidence []*core.ChunkRecord) (*ai.Judgment, error)

	callCount int
}

// NewMockScorer creates a mock scorer with default deterministic behavior.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

// WithScoreFunc sets a custom score function and returns the mock for chaining.
func (m *MockScorer) WithScoreFunc(fn func(ctx context.Context, answer, query string, evidence []*core.ChunkRecord) (*ai.Judgment, error)) *MockScorer {
	m.ScoreFunc = fn
	return m
}

// ScoreGroundedness returns a fixed mid-range judgment.
func (m *MockScorer) ScoreGroundedness(ctx context.Context, answer, query string, evidence []*core.ChunkRecord) (*ai.Judgment, error) {
	m.callCount++

	if m.ScoreFunc != nil {
		return m.ScoreFunc(ctx, answer, query, evidence)
	}
	return &ai.Judgment{Score: 5, Rationale: "mock judgment"}, nil
}

// CallCount returns the number of times ScoreGroundedness was called.
func (m *MockScorer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockScorer) Reset() {
	m.callCount = 0
	m.ScoreFunc = nil
}
