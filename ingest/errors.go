package ingest

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrExtractorRequired is returned when an extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrTrackerRequired is returned when a status tracker is not provided.
	ErrTrackerRequired = errors.New("status tracker required")

	// ErrPublisherRequired is returned when a queue publisher is not provided.
	ErrPublisherRequired = errors.New("queue publisher required")
)
