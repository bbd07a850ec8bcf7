// Copyright 2025 Veracue Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/status"
	"github.com/veracue/docflow/storage"
)

// Pipeline is the chunking stage. It consumes hand-off messages,
// extracts document text, splits it into chunks with page provenance,
// and persists the chunk set as a full-document replacement.
type Pipeline struct {
	extractor ai.Extractor
	chunks    storage.ChunkRepository
	tracker   *status.Tracker
	policy    ChunkingPolicy
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for batch processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkingPolicy overrides the default chunk size and overlap.
func WithChunkingPolicy(policy ChunkingPolicy) Option {
	return func(p *Pipeline) error {
		if policy.ChunkSize < 1 {
			return fmt.Errorf("chunk size must be positive, got %d", policy.ChunkSize)
		}
		if policy.ChunkOverlap < 0 || policy.ChunkOverlap >= policy.ChunkSize {
			return fmt.Errorf("chunk overlap must be in [0, chunk size), got %d", policy.ChunkOverlap)
		}
		p.policy = policy
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a chunking pipeline.
func NewPipeline(
	extractor ai.Extractor,
	chunks storage.ChunkRepository,
	tracker *status.Tracker,
	opts ...Option,
) (*Pipeline, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		extractor: extractor,
		chunks:    chunks,
		tracker:   tracker,
		policy:    DefaultChunkingPolicy(),
		pool:      pool,
		logger:    slog.Default().With("component", "chunking-pipeline"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Ingest processes one hand-off message.
//
// An empty or whitespace-only message is a no-op: nothing is extracted
// and no status is written. A message that is not valid JSON returns a
// parsing error so the delivery mechanism can dead-letter it. Any
// failure after a successful parse marks the document ingestion-failed
// with the underlying reason and returns a processing error; success
// marks it ingestion-success.
func (p *Pipeline) Ingest(ctx context.Context, raw []byte) error {
	if isBlank(raw) {
		p.logger.Debug("skipping empty message")
		return nil
	}

	msg, err := core.DecodeHandoffMessage(raw)
	if err != nil {
		return err
	}
	if msg.DocumentID == "" {
		return fmt.Errorf("%w: hand-off message missing %s", core.ErrParsing, core.MetadataKeyDocumentID)
	}

	return p.process(ctx, msg)
}

func (p *Pipeline) process(ctx context.Context, msg *core.HandoffMessage) error {
	record := msg.Document()

	doc, err := p.extractor.Extract(ctx, record.SourceURL)
	if err != nil {
		return p.fail(ctx, record, fmt.Errorf("extracting %q: %w", record.SourceURL, err))
	}

	chunks, err := splitDocument(doc, record, p.policy)
	if err != nil {
		return p.fail(ctx, record, fmt.Errorf("splitting document: %w", err))
	}

	stored, err := p.chunks.ReplaceChunks(ctx, record.DocumentID, chunks...)
	if err != nil {
		return p.fail(ctx, record, fmt.Errorf("storing chunks: %w", err))
	}

	p.tracker.Record(ctx, record.DocumentID, record.Name, core.OutcomeIngestionSuccess, "")
	p.logger.Info("document ingested",
		"document_id", record.DocumentID,
		"object", record.Name,
		"chunks", len(stored))
	return nil
}

// fail records the failure for status queries and wraps the cause as a
// processing error for the caller.
func (p *Pipeline) fail(ctx context.Context, record core.DocumentRecord, cause error) error {
	p.logger.Error("document ingestion failed",
		"document_id", record.DocumentID,
		"object", record.Name,
		"err", cause)
	p.tracker.Record(ctx, record.DocumentID, record.Name, core.OutcomeIngestionFailed, cause.Error())
	return fmt.Errorf("%w: %w", core.ErrDocumentProcessing, cause)
}

// IngestAll drains a backlog of messages concurrently on the worker
// pool. Each message is processed independently, so duplicates and
// interleavings cannot corrupt state. The returned error joins every
// per-message failure.
func (p *Pipeline) IngestAll(ctx context.Context, messages [][]byte) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, raw := range messages {
		raw := raw
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.Ingest(ctx, raw); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, submitErr)
			mu.Unlock()
		}
	}
	wg.Wait()

	return errors.Join(errs...)
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// isBlank reports whether the message carries no content.
func isBlank(raw []byte) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}
