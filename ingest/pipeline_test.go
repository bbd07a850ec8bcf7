package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/ai/mock"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/status"
	"github.com/veracue/docflow/storage"
	storebadger "github.com/veracue/docflow/storage/badger"
)

type pipelineFixture struct {
	pipeline  *Pipeline
	extractor *mock.MockExtractor
	chunks    storage.ChunkRepository
	tracker   *status.Tracker
}

func setupPipeline(t *testing.T, opts ...Option) *pipelineFixture {
	chunkRepo, statusRepo, _, backend, err := storebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		statusRepo.Close()
		backend.Close()
	})

	extractor := mock.NewMockExtractor()
	tracker := status.NewTracker(statusRepo)
	pipeline, err := NewPipeline(extractor, chunkRepo, tracker, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		pipeline:  pipeline,
		extractor: extractor,
		chunks:    chunkRepo,
		tracker:   tracker,
	}
}

func handoffBytes(t *testing.T, documentID string) []byte {
	raw, err := json.Marshal(&core.HandoffMessage{
		DocumentID: documentID,
		Metadata:   map[string]string{"department": "finance"},
		BlobURL:    "https://acct.blob.core.windows.net/docs/report.pdf",
		Timestamp:  time.Now().UTC(),
	})
	require.NoError(t, err)
	return raw
}

func TestPipeline_IngestSuccess(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	require.NoError(t, f.pipeline.Ingest(ctx, handoffBytes(t, testDocumentID)))

	chunks, err := f.chunks.GetChunks(ctx, testDocumentID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "report.pdf", chunks[0].FileName)
	assert.Equal(t, "finance", chunks[0].Metadata["department"])

	entry, err := f.tracker.Get(ctx, testDocumentID)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeIngestionSuccess, entry.Outcome)
	assert.Equal(t, "ingestion-success", entry.Outcome.String())
}

func TestPipeline_EmptyMessageIsNoOp(t *testing.T) {
	f := setupPipeline(t)

	require.NoError(t, f.pipeline.Ingest(context.Background(), []byte("  \n\t ")))
	require.NoError(t, f.pipeline.Ingest(context.Background(), nil))
	assert.Equal(t, 0, f.extractor.CallCount(), "no extraction for empty messages")
}

func TestPipeline_MalformedMessage(t *testing.T) {
	f := setupPipeline(t)

	err := f.pipeline.Ingest(context.Background(), []byte("{not json"))
	assert.ErrorIs(t, err, core.ErrParsing)
	assert.Equal(t, 0, f.extractor.CallCount())
}

func TestPipeline_MissingDocumentID(t *testing.T) {
	f := setupPipeline(t)

	err := f.pipeline.Ingest(context.Background(), []byte(`{"blob_url":"https://x/y.pdf"}`))
	assert.ErrorIs(t, err, core.ErrParsing)
}

func TestPipeline_ExtractionFailure(t *testing.T) {
	f := setupPipeline(t)
	f.extractor.WithExtractFunc(func(ctx context.Context, sourceURL string) (*ai.ExtractedDocument, error) {
		return nil, errors.New("analysis service returned 503")
	})
	ctx := context.Background()

	err := f.pipeline.Ingest(ctx, handoffBytes(t, testDocumentID))
	assert.ErrorIs(t, err, core.ErrDocumentProcessing)

	entry, err := f.tracker.Get(ctx, testDocumentID)
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeIngestionFailed, entry.Outcome)
	assert.Contains(t, entry.Reason, "503")
}

func TestPipeline_ReingestionReplaces(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()
	raw := handoffBytes(t, testDocumentID)

	require.NoError(t, f.pipeline.Ingest(ctx, raw))
	first, err := f.chunks.GetChunks(ctx, testDocumentID)
	require.NoError(t, err)

	// Redelivery of the same document converges on the same chunk set.
	require.NoError(t, f.pipeline.Ingest(ctx, raw))
	second, err := f.chunks.GetChunks(ctx, testDocumentID)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id, "content-based ids are stable across re-ingestion")
	}
}

func TestPipeline_IngestAll(t *testing.T) {
	f := setupPipeline(t, WithPoolSize(4))
	ctx := context.Background()

	ids := []string{
		"11111111-1111-4111-8111-111111111111",
		"22222222-2222-4222-8222-222222222222",
		"33333333-3333-4333-8333-333333333333",
	}
	messages := make([][]byte, len(ids))
	for i, id := range ids {
		messages[i] = handoffBytes(t, id)
	}

	require.NoError(t, f.pipeline.IngestAll(ctx, messages))

	for _, id := range ids {
		entry, err := f.tracker.Get(ctx, id)
		require.NoError(t, err, "document %s", id)
		assert.Equal(t, core.OutcomeIngestionSuccess, entry.Outcome)
	}
}

func TestPipeline_IngestAllCollectsFailures(t *testing.T) {
	f := setupPipeline(t)
	calls := 0
	f.extractor.WithExtractFunc(func(ctx context.Context, sourceURL string) (*ai.ExtractedDocument, error) {
		calls++
		return nil, fmt.Errorf("boom %d", calls)
	})

	err := f.pipeline.IngestAll(context.Background(), [][]byte{
		handoffBytes(t, "11111111-1111-4111-8111-111111111111"),
		[]byte("not json"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDocumentProcessing)
	assert.ErrorIs(t, err, core.ErrParsing)
}
