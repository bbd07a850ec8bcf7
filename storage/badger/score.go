package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
)

// ScoreRepository implements storage.ScoreRepository for BadgerDB.
type ScoreRepository struct {
	backend *Backend
}

var _ storage.ScoreRepository = (*ScoreRepository)(nil)

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(backend *Backend) *ScoreRepository {
	return &ScoreRepository{
		backend: backend,
	}
}

// Close releases resources. ScoreRepository has no resources to release.
func (r *ScoreRepository) Close() error {
	return nil
}

// PutScore stores the score for its transaction ID. The existence check
// and the write share one transaction, so a redelivered message can
// never create a second record: it gets ErrDuplicateKey instead.
func (r *ScoreRepository) PutScore(ctx context.Context, score *core.ModelScore) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		key := makeScoreKey(score.TransactionID)

		_, err := tx.Get(key)
		if err == nil {
			return storage.ErrDuplicateKey
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if score.CreatedAt.IsZero() {
			score.CreatedAt = time.Now().UTC()
		}
		value, err := storage.MarshalModelScore(score)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// GetScore retrieves the score for a transaction.
func (r *ScoreRepository) GetScore(ctx context.Context, transactionID string) (*core.ModelScore, error) {
	var score *core.ModelScore
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeScoreKey(transactionID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var uerr error
			score, uerr = storage.UnmarshalModelScore(val)
			return uerr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return score, nil
}
