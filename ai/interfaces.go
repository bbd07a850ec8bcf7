package ai

import (
	"context"

	"github.com/veracue/docflow/core"
)

// Extractor retrieves the text and page layout of a raw document.
// Implementations must be thread-safe for concurrent use.
type Extractor interface {
	// Extract fetches and analyzes the document at the source URL.
	// The result carries the text per page when the source has layout
	// information; sources without pages return a single unnumbered page.
	Extract(ctx context.Context, sourceURL string) (*ExtractedDocument, error)
}

// Generator produces an answer to a query grounded in evidence chunks.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate invokes the remote generation capability with the query,
	// the query-shaping prompt, and the serialized evidence, and returns
	// the answer text.
	Generate(ctx context.Context, query, prompt string, evidence []*core.ChunkRecord) (string, error)
}

// GroundednessScorer judges how well an answer is supported by the
// evidence chunks it cites. Implementations must be thread-safe.
type GroundednessScorer interface {
	// ScoreGroundedness compares the answer against the evidence and
	// returns a bounded numeric score with a rationale. The evidence is
	// serialized deterministically in the order supplied, so a fixed
	// remote response yields a fixed judgment.
	ScoreGroundedness(ctx context.Context, answer, query string, evidence []*core.ChunkRecord) (*Judgment, error)
}

// Provider aggregates the generation and scoring services for
// convenient initialization and lifecycle management.
type Provider interface {
	// Generator returns the answer generation service.
	Generator() Generator

	// Scorer returns the groundedness scoring service.
	Scorer() GroundednessScorer

	// Close releases resources held by the provider and its services.
	Close() error
}
