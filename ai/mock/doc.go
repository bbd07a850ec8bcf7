// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Extractor, ai.Generator,
// ai.GroundednessScorer, and ai.Provider for use in unit tests. The mocks
// allow tests to run without external AI service dependencies and enable
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	judgment, err := mockProvider.Scorer().ScoreGroundedness(ctx, answer, query, evidence)
//
//	// Custom behavior injection
//	mockScorer := mock.NewMockScorer().
//	    WithScoreFunc(func(ctx context.Context, answer, query string, evidence []*core.ChunkRecord) (*ai.Judgment, error) {
//	        return &ai.Judgment{Score: 5, Rationale: "test"}, nil
//	    })
//
//	// Check call counts
//	count := mockScorer.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockExtractor: Derives a deterministic two-page document from the source URL
//   - MockGenerator: Echoes the query prefixed with "Answer: "
//   - MockScorer: Returns a fixed mid-range judgment
//   - MockProvider: Aggregates mock generator and scorer
package mock
