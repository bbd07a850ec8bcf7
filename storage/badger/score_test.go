package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
)

func setupScoreRepository(t *testing.T) storage.ScoreRepository {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	repo := NewScoreRepository(backend)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func TestScoreRepository_PutAndGet(t *testing.T) {
	repo := setupScoreRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.PutScore(ctx, &core.ModelScore{
		TransactionID: "12345",
		Score:         5,
		Rationale:     "Well supported",
	}))

	got, err := repo.GetScore(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.Score)
	assert.Equal(t, "Well supported", got.Rationale)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestScoreRepository_DuplicateRejected(t *testing.T) {
	repo := setupScoreRepository(t)
	ctx := context.Background()

	first := &core.ModelScore{TransactionID: "12345", Score: 5, Rationale: "Well supported"}
	require.NoError(t, repo.PutScore(ctx, first))

	// A redelivered write must not create a second record or change the first.
	err := repo.PutScore(ctx, &core.ModelScore{TransactionID: "12345", Score: 9, Rationale: "different"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := repo.GetScore(ctx, "12345")
	require.NoError(t, err)
	assert.Equal(t, float64(5), got.Score, "original record untouched")
	assert.Equal(t, "Well supported", got.Rationale)
}

func TestScoreRepository_GetNotFound(t *testing.T) {
	repo := setupScoreRepository(t)

	_, err := repo.GetScore(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScoreRepository_DistinctTransactions(t *testing.T) {
	repo := setupScoreRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.PutScore(ctx, &core.ModelScore{TransactionID: "txn-a", Score: 3}))
	require.NoError(t, repo.PutScore(ctx, &core.ModelScore{TransactionID: "txn-b", Score: 8}))

	a, err := repo.GetScore(ctx, "txn-a")
	require.NoError(t, err)
	b, err := repo.GetScore(ctx, "txn-b")
	require.NoError(t, err)
	assert.Equal(t, float64(3), a.Score)
	assert.Equal(t, float64(8), b.Score)
}
