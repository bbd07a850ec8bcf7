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


// Package docflow is the composition root of the document-QA pipeline.
// It wires storage, the remote client cache, the AI services, the
// queues, and the four stages into one facade.
package docflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/ai/docintel"
	"github.com/veracue/docflow/ai/openai"
	"github.com/veracue/docflow/answer"
	"github.com/veracue/docflow/blob"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/ingest"
	"github.com/veracue/docflow/queue"
	"github.com/veracue/docflow/remote"
	"github.com/veracue/docflow/scoring"
	"github.com/veracue/docflow/status"
	"github.com/veracue/docflow/storage"
	storebadger "github.com/veracue/docflow/storage/badger"
	"github.com/veracue/docflow/telemetry"
)

// Pipeline owns every stage of the document-QA flow plus the shared
// state they depend on. Create one per process with NewPipeline and
// tear it down with Close.
type Pipeline struct {
	backend    *storebadger.Backend
	chunkRepo  storage.ChunkRepository
	statusRepo storage.StatusRepository
	scoreRepo  storage.ScoreRepository

	cache     *remote.ClientCache
	provider  ai.Provider
	extractor ai.Extractor

	chunkQueue   *queue.Memory
	scoringQueue *queue.Memory
	blobs        blob.Store

	tracker   *status.Tracker
	validator *ingest.Validator
	chunking  *ingest.Pipeline
	answers   *answer.Service
	scores    *scoring.Service

	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*pipelineOptions)

type pipelineOptions struct {
	aiConfig    *ai.Config
	policy      remote.Policy
	source      core.SourceLocation
	chunkPolicy ingest.ChunkingPolicy
	evidence    int
	inMemory    bool

	provider  ai.Provider
	extractor ai.Extractor
	blobs     blob.Store
	telemetry telemetry.Publisher
}

// WithAIConfig sets the remote AI service configuration.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *pipelineOptions) {
		if cfg != nil {
			o.aiConfig = cfg
		}
	}
}

// WithRetryPolicy sets the retry/backoff policy every remote client is
// built with.
func WithRetryPolicy(policy remote.Policy) Option {
	return func(o *pipelineOptions) {
		o.policy = policy
	}
}

// WithSource sets the storage location upload notifications refer to.
func WithSource(source core.SourceLocation) Option {
	return func(o *pipelineOptions) {
		o.source = source
	}
}

// WithChunkingPolicy overrides the default chunk size and overlap.
func WithChunkingPolicy(policy ingest.ChunkingPolicy) Option {
	return func(o *pipelineOptions) {
		o.chunkPolicy = policy
	}
}

// WithEvidenceLimit bounds the evidence sent to the generator.
func WithEvidenceLimit(limit int) Option {
	return func(o *pipelineOptions) {
		o.evidence = limit
	}
}

// WithInMemory keeps all state in memory. For tests and local
// experiments.
func WithInMemory() Option {
	return func(o *pipelineOptions) {
		o.inMemory = true
	}
}

// WithProvider injects a pre-built AI provider instead of constructing
// the OpenAI-backed one.
func WithProvider(provider ai.Provider) Option {
	return func(o *pipelineOptions) {
		o.provider = provider
	}
}

// WithExtractor injects a pre-built extractor instead of constructing
// the document-analysis client.
func WithExtractor(extractor ai.Extractor) Option {
	return func(o *pipelineOptions) {
		o.extractor = extractor
	}
}

// WithBlobStore sets the store blob-reference scoring messages resolve
// against. Default is an empty in-memory store.
func WithBlobStore(store blob.Store) Option {
	return func(o *pipelineOptions) {
		if store != nil {
			o.blobs = store
		}
	}
}

// WithTelemetry sets the score event publisher. Default publishes
// OpenTelemetry spans.
func WithTelemetry(publisher telemetry.Publisher) Option {
	return func(o *pipelineOptions) {
		if publisher != nil {
			o.telemetry = publisher
		}
	}
}

// NewPipeline opens storage at filePath and wires every stage.
func NewPipeline(filePath string, opts ...Option) (*Pipeline, error) {
	options := &pipelineOptions{
		aiConfig:    ai.DefaultConfig(),
		policy:      remote.DefaultPolicy(),
		source:      core.SourceLocation{Account: "docflow", Container: "uploads"},
		chunkPolicy: ingest.DefaultChunkingPolicy(),
		evidence:    answer.DefaultEvidenceLimit,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := storebadger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := storebadger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	statusRepo := storebadger.NewStatusRepository(backend)
	scoreRepo := storebadger.NewScoreRepository(backend)

	teardown := func() {
		chunkRepo.Close()
		statusRepo.Close()
		scoreRepo.Close()
		backend.Close()
	}

	cache := remote.NewClientCache(options.aiConfig.Token, options.policy)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig, cache)
		if err != nil {
			teardown()
			return nil, err
		}
	}

	extractor := options.extractor
	if extractor == nil {
		extractor, err = docintel.NewExtractor(options.aiConfig, cache)
		if err != nil {
			provider.Close()
			teardown()
			return nil, err
		}
	}

	blobs := options.blobs
	if blobs == nil {
		blobs = blob.NewMemory()
	}
	scoreTelemetry := options.telemetry
	if scoreTelemetry == nil {
		scoreTelemetry = telemetry.NewOTel("docflow")
	}

	chunkQueue := queue.NewMemory()
	scoringQueue := queue.NewMemory()
	tracker := status.NewTracker(statusRepo)

	validator, err := ingest.NewValidator(options.source, chunkQueue, tracker)
	if err != nil {
		provider.Close()
		teardown()
		return nil, err
	}

	chunking, err := ingest.NewPipeline(extractor, chunkRepo, tracker,
		ingest.WithChunkingPolicy(options.chunkPolicy))
	if err != nil {
		provider.Close()
		teardown()
		return nil, err
	}

	answers, err := answer.NewService(
		answer.NewRepositoryIndex(chunkRepo),
		provider.Generator(),
		scoringQueue,
		answer.WithEvidenceLimit(options.evidence))
	if err != nil {
		chunking.Release()
		provider.Close()
		teardown()
		return nil, err
	}

	evaluator, err := scoring.NewEvaluator(provider.Scorer())
	if err != nil {
		chunking.Release()
		provider.Close()
		teardown()
		return nil, err
	}
	scores, err := scoring.NewService(evaluator, scoreRepo, blobs, scoreTelemetry)
	if err != nil {
		chunking.Release()
		provider.Close()
		teardown()
		return nil, err
	}

	return &Pipeline{
		backend:      backend,
		chunkRepo:    chunkRepo,
		statusRepo:   statusRepo,
		scoreRepo:    scoreRepo,
		cache:        cache,
		provider:     provider,
		extractor:    extractor,
		chunkQueue:   chunkQueue,
		scoringQueue: scoringQueue,
		blobs:        blobs,
		tracker:      tracker,
		validator:    validator,
		chunking:     chunking,
		answers:      answers,
		scores:       scores,
		logger:       slog.Default(),
	}, nil
}

// ValidateUpload classifies an upload notification. Accepted uploads
// are queued for chunking; rejected ones get a status record.
func (p *Pipeline) ValidateUpload(ctx context.Context, objectName string, metadata map[string]string) (core.Disposition, error) {
	return p.validator.HandleUpload(ctx, objectName, metadata)
}

// IngestNext processes one queued hand-off message. It reports false
// when the chunking queue is empty.
func (p *Pipeline) IngestNext(ctx context.Context) (bool, error) {
	raw, err := p.chunkQueue.Receive(ctx)
	if errors.Is(err, queue.ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, p.chunking.Ingest(ctx, raw)
}

// Ingest processes a hand-off message delivered out of band.
func (p *Pipeline) Ingest(ctx context.Context, raw []byte) error {
	return p.chunking.Ingest(ctx, raw)
}

// Answer retrieves evidence, generates a grounded answer and queues the
// scoring trigger for it. When queueing fails the payload is returned
// alongside the error: the answer is usable, but nothing re-emits the
// trigger and the transaction will never be scored.
func (p *Pipeline) Answer(ctx context.Context, req core.QueryRequest) (*core.AnswerPayload, error) {
	payload, err := p.answers.Answer(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := p.answers.Publish(ctx, payload); err != nil {
		p.logger.Error("scoring trigger lost, answer will not be scored",
			"transaction_id", payload.TransactionID,
			"err", err)
		return payload, fmt.Errorf("queueing scoring trigger: %w", err)
	}
	return payload, nil
}

// ScoreNext processes one queued scoring trigger. It reports false when
// the scoring queue is empty.
func (p *Pipeline) ScoreNext(ctx context.Context) (bool, error) {
	raw, err := p.scoringQueue.Receive(ctx)
	if errors.Is(err, queue.ErrEmpty) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, p.scores.HandleMessage(ctx, raw)
}

// Score processes a scoring trigger delivered out of band.
func (p *Pipeline) Score(ctx context.Context, raw []byte) error {
	return p.scores.HandleMessage(ctx, raw)
}

// Status returns the last recorded outcome for a document.
// storage.ErrNotFound means the document was never processed.
func (p *Pipeline) Status(ctx context.Context, documentID string) (*core.StatusEntry, error) {
	return p.tracker.Get(ctx, documentID)
}

// GetScore returns the stored groundedness score for a transaction.
func (p *Pipeline) GetScore(ctx context.Context, transactionID string) (*core.ModelScore, error) {
	return p.scoreRepo.GetScore(ctx, transactionID)
}

// ChunkRepository exposes the chunk store for advanced callers.
func (p *Pipeline) ChunkRepository() storage.ChunkRepository {
	return p.chunkRepo
}

// ClientCache exposes the shared remote client cache.
func (p *Pipeline) ClientCache() *remote.ClientCache {
	return p.cache
}

// Close tears the pipeline down in reverse construction order.
func (p *Pipeline) Close() error {
	p.chunking.Release()

	if err := p.provider.Close(); err != nil {
		p.logger.Error("error closing AI provider", "err", err)
	}

	if err := p.chunkRepo.Close(); err != nil {
		p.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := p.statusRepo.Close(); err != nil {
		p.logger.Error("error closing status repository", "err", err)
		return err
	}
	if err := p.scoreRepo.Close(); err != nil {
		p.logger.Error("error closing score repository", "err", err)
		return err
	}

	if err := p.backend.Close(); err != nil {
		p.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
