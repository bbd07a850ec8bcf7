package storage

import (
	"context"

	"github.com/veracue/docflow/core"
)

// ChunkRepository stores the chunk records produced by the chunking
// stage. Chunks are written in bulk and never mutated; a document's set
// is only ever replaced wholesale by re-ingestion.
type ChunkRepository interface {
	// ReplaceChunks atomically replaces the document's entire chunk set.
	// Any previously stored chunks for the document are removed in the
	// same transaction, so re-ingestion replaces rather than appends.
	// Chunks with Id zero get content-based IDs; InsertedAt is set.
	ReplaceChunks(ctx context.Context, documentID string, chunks ...*core.ChunkRecord) ([]*core.ChunkRecord, error)

	// GetChunks retrieves all chunks of a document, in stored order.
	// Returns an empty slice for an unknown document.
	GetChunks(ctx context.Context, documentID string) ([]*core.ChunkRecord, error)

	// DeleteChunks removes all chunks of a document. Unknown documents
	// are a no-op.
	DeleteChunks(ctx context.Context, documentID string) error

	// Candidates returns chunks matching the metadata filter, up to
	// limit (0 means no limit). Ordering across documents is unspecified;
	// ranking is the index collaborator's concern.
	Candidates(ctx context.Context, filter core.MetadataFilter, limit int) ([]*core.ChunkRecord, error)

	// Close releases resources held by the repository.
	Close() error
}

// StatusRepository holds the last-known stage outcome per document.
type StatusRepository interface {
	// Put stores the entry, overwriting any existing entry for the
	// document (last-writer-wins).
	Put(ctx context.Context, entry *core.StatusEntry) error

	// Get retrieves the entry for a document.
	// Returns ErrNotFound when the document has no entry yet.
	Get(ctx context.Context, documentID string) (*core.StatusEntry, error)

	// Close releases resources held by the repository.
	Close() error
}

// ScoreRepository persists groundedness scores keyed by transaction ID.
type ScoreRepository interface {
	// PutScore stores the score. Returns ErrDuplicateKey without
	// modifying anything when a record already exists for the
	// transaction ID, guaranteeing at most one record under redelivery.
	PutScore(ctx context.Context, score *core.ModelScore) error

	// GetScore retrieves the score for a transaction.
	// Returns ErrNotFound when none exists.
	GetScore(ctx context.Context, transactionID string) (*core.ModelScore, error)

	// Close releases resources held by the repository.
	Close() error
}
