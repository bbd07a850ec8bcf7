package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
	storebadger "github.com/veracue/docflow/storage/badger"
)

func setupTracker(t *testing.T) *Tracker {
	_, statusRepo, _, backend, err := storebadger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		statusRepo.Close()
		backend.Close()
	})
	return NewTracker(statusRepo)
}

func TestTracker_RecordAndGet(t *testing.T) {
	tracker := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.Record(ctx, "53ac8b90-c4c8-472c-a5ee-fe84ed96047b", "report.pdf",
		core.OutcomeIngestionSuccess, ""))

	entry, err := tracker.Get(ctx, "53ac8b90-c4c8-472c-a5ee-fe84ed96047b")
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeIngestionSuccess, entry.Outcome)
	assert.Equal(t, "report.pdf", entry.DocumentName)
	assert.False(t, entry.LastUpdated.IsZero())
}

func TestTracker_OverwriteLastWriterWins(t *testing.T) {
	tracker := setupTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.Record(ctx, "doc-1", "a.pdf", core.OutcomeIngestionFailed, "extraction timed out"))
	require.NoError(t, tracker.Record(ctx, "doc-1", "a.pdf", core.OutcomeIngestionSuccess, ""))

	entry, err := tracker.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeIngestionSuccess, entry.Outcome)
	assert.Empty(t, entry.Reason)
}

func TestTracker_UnprocessedDocument(t *testing.T) {
	tracker := setupTracker(t)

	_, err := tracker.Get(context.Background(), "never-seen")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
