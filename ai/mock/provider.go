package mock

import "github.com/veracue/docflow/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock generator and scorer instances.
type MockProvider struct {
	generator *MockGenerator
	scorer    *MockScorer
	closed    bool
}

// NewMockProvider creates a provider backed by default mocks.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		generator: NewMockGenerator(),
		scorer:    NewMockScorer(),
	}
}

// Generator returns the answer generation service.
func (p *MockProvider) Generator() ai.Generator {
	return p.generator
}

// Scorer returns the groundedness scoring service.
func (p *MockProvider) Scorer() ai.GroundednessScorer {
	return p.scorer
}

// GetMockGenerator returns the concrete mock for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator {
	return p.generator
}

// GetMockScorer returns the concrete mock for test assertions.
func (p *MockProvider) GetMockScorer() *MockScorer {
	return p.scorer
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed
}

var _ ai.Provider = (*MockProvider)(nil)
