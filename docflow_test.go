package docflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/ai/mock"
	"github.com/veracue/docflow/answer"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
	"github.com/veracue/docflow/telemetry"
)

const testDocumentID = "53ac8b90-c4c8-472c-a5ee-fe84ed96047b"

type pipelineFixture struct {
	pipeline  *Pipeline
	provider  *mock.MockProvider
	extractor *mock.MockExtractor
	recorder  *telemetry.Recorder
}

func setupPipeline(t *testing.T) *pipelineFixture {
	provider := mock.NewMockProvider()
	extractor := mock.NewMockExtractor().WithDocument(&ai.ExtractedDocument{
		Pages: []ai.Page{
			{Number: 1, Text: "Quarterly results overview."},
			{Number: 2, Text: "Revenue grew 12% in fiscal 2024 driven by subscriptions."},
		},
	})
	recorder := telemetry.NewRecorder()

	pipeline, err := NewPipeline("",
		WithInMemory(),
		WithProvider(provider),
		WithExtractor(extractor),
		WithTelemetry(recorder),
		WithSource(core.SourceLocation{Account: "acct", Container: "docs"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { pipeline.Close() })

	return &pipelineFixture{
		pipeline:  pipeline,
		provider:  provider,
		extractor: extractor,
		recorder:  recorder,
	}
}

func TestPipeline_UploadToIngestionSuccess(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	disposition, err := f.pipeline.ValidateUpload(ctx, "report.pdf", map[string]string{
		"document_id": testDocumentID,
		"department":  "finance",
	})
	require.NoError(t, err)
	require.True(t, disposition.Accepted)

	processed, err := f.pipeline.IngestNext(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	entry, err := f.pipeline.Status(ctx, testDocumentID)
	require.NoError(t, err)
	assert.Equal(t, "ingestion-success", entry.Outcome.String())

	chunks, err := f.pipeline.ChunkRepository().GetChunks(ctx, testDocumentID)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestPipeline_RejectedUploadNeverIngested(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	disposition, err := f.pipeline.ValidateUpload(ctx, "bad.pdf", map[string]string{
		"document_id": "not-a-uuid",
	})
	require.NoError(t, err)
	assert.False(t, disposition.Accepted)

	processed, err := f.pipeline.IngestNext(ctx)
	require.NoError(t, err)
	assert.False(t, processed, "nothing queued for a rejected upload")
	assert.Equal(t, 0, f.extractor.CallCount())
}

func TestPipeline_AnswerThenScoreOnce(t *testing.T) {
	f := setupPipeline(t)
	f.provider.GetMockScorer().WithScoreFunc(
		func(ctx context.Context, answer, query string, evidence []*core.ChunkRecord) (*ai.Judgment, error) {
			return &ai.Judgment{Score: 5, Rationale: "half supported"}, nil
		})
	ctx := context.Background()

	_, err := f.pipeline.ValidateUpload(ctx, "report.pdf", map[string]string{"document_id": testDocumentID})
	require.NoError(t, err)
	_, err = f.pipeline.IngestNext(ctx)
	require.NoError(t, err)

	payload, err := f.pipeline.Answer(ctx, core.QueryRequest{
		Query:         "How much did revenue grow?",
		TransactionID: "12345",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, payload.Answer)
	assert.NotEmpty(t, payload.Evidence)

	processed, err := f.pipeline.ScoreNext(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	score, err := f.pipeline.GetScore(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, float64(5), score.Score)

	events := f.recorder.Events()
	require.Len(t, events, 1, "exactly one telemetry event for transaction 12345")
	assert.Equal(t, "12345", events[0].TransactionID)
	assert.Equal(t, float64(5), events[0].Score)
}

type failingPublisher struct{}

func (failingPublisher) Publish(ctx context.Context, payload []byte) error {
	return errors.New("broker unavailable")
}

func TestPipeline_AnswerReportsLostScoringTrigger(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	_, err := f.pipeline.ValidateUpload(ctx, "report.pdf", map[string]string{"document_id": testDocumentID})
	require.NoError(t, err)
	_, err = f.pipeline.IngestNext(ctx)
	require.NoError(t, err)

	svc, err := answer.NewService(
		answer.NewRepositoryIndex(f.pipeline.chunkRepo),
		f.provider.Generator(),
		failingPublisher{},
	)
	require.NoError(t, err)
	f.pipeline.answers = svc

	payload, err := f.pipeline.Answer(ctx, core.QueryRequest{
		Query:         "How much did revenue grow?",
		TransactionID: "12345",
	})
	require.Error(t, err)
	require.NotNil(t, payload, "the generated answer is still usable")
	assert.NotEmpty(t, payload.Answer)

	processed, err := f.pipeline.ScoreNext(ctx)
	require.NoError(t, err)
	assert.False(t, processed, "nothing was queued for scoring")
}

func TestPipeline_ScoreRedeliveryKeepsOneRecord(t *testing.T) {
	f := setupPipeline(t)
	ctx := context.Background()

	_, err := f.pipeline.ValidateUpload(ctx, "report.pdf", map[string]string{"document_id": testDocumentID})
	require.NoError(t, err)
	_, err = f.pipeline.IngestNext(ctx)
	require.NoError(t, err)

	payload, err := f.pipeline.Answer(ctx, core.QueryRequest{Query: "How much did revenue grow?", TransactionID: "12345"})
	require.NoError(t, err)

	// Score the same trigger twice via the out-of-band entry point.
	raw, err := json.Marshal(core.NewScoringMessage(payload))
	require.NoError(t, err)
	require.NoError(t, f.pipeline.Score(ctx, raw))
	require.NoError(t, f.pipeline.Score(ctx, raw))

	assert.Len(t, f.recorder.Events(), 1, "redelivery publishes no second event")
}

func TestPipeline_StatusUnknownDocument(t *testing.T) {
	f := setupPipeline(t)

	_, err := f.pipeline.Status(context.Background(), "99999999-9999-4999-8999-999999999999")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
