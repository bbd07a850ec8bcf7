package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
)

// StatusRepository implements storage.StatusRepository for BadgerDB.
type StatusRepository struct {
	backend *Backend
}

var _ storage.StatusRepository = (*StatusRepository)(nil)

// NewStatusRepository creates a new StatusRepository.
func NewStatusRepository(backend *Backend) *StatusRepository {
	return &StatusRepository{
		backend: backend,
	}
}

// Close releases resources. StatusRepository has no resources to release.
func (r *StatusRepository) Close() error {
	return nil
}

// Put stores the entry, overwriting any existing one for the document.
func (r *StatusRepository) Put(ctx context.Context, entry *core.StatusEntry) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		entry.LastUpdated = time.Now().UTC()

		value, err := storage.MarshalStatusEntry(entry)
		if err != nil {
			return err
		}
		if err := tx.Set(makeStatusKey(entry.DocumentID), value); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Get retrieves the entry for a document.
func (r *StatusRepository) Get(ctx context.Context, documentID string) (*core.StatusEntry, error) {
	var entry *core.StatusEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeStatusKey(documentID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var uerr error
			entry, uerr = storage.UnmarshalStatusEntry(val)
			return uerr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return entry, nil
}
