package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	return &ChunkRepository{
		backend: backend,
	}, nil
}

// Close releases resources. ChunkRepository has no resources to release.
func (r *ChunkRepository) Close() error {
	return nil
}

// ReplaceChunks atomically replaces the document's entire chunk set.
// Deleting the previous set and writing the new one happen in the same
// transaction, which is what makes re-ingestion idempotent: running it
// twice yields the same final set, never an appended one.
func (r *ChunkRepository) ReplaceChunks(ctx context.Context, documentID string, chunks ...*core.ChunkRecord) ([]*core.ChunkRecord, error) {
	err := r.backend.Update(ctx, func(tx *badger.Txn) error {
		// Remove the existing set.
		if err := deleteDocumentChunks(tx, documentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		for i, chunk := range chunks {
			chunk.DocumentID = documentID
			if chunk.Id == 0 {
				chunk.Id = core.ChunkID(documentID, i, chunk.Text)
			}
			chunk.InsertedAt = now

			value, err := storage.MarshalChunkRecord(chunk)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(chunk.Id), value); err != nil {
				return err
			}
			if err := tx.Set(makeChunkDocKey(documentID, i, chunk.Id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	})

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetChunks retrieves all chunks of a document in stored order.
func (r *ChunkRepository) GetChunks(ctx context.Context, documentID string) ([]*core.ChunkRecord, error) {
	var chunks []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkDocScanPrefix(documentID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := chunkIDFromDocKey(iter.Item().Key())
			item, err := tx.Get(makeChunkKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}
			var chunk *core.ChunkRecord
			err = item.Value(func(val []byte) error {
				var uerr error
				chunk, uerr = storage.UnmarshalChunkRecord(val)
				return uerr
			})
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// DeleteChunks removes all chunks of a document.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, documentID string) error {
	return r.backend.Update(ctx, func(tx *badger.Txn) error {
		if err := deleteDocumentChunks(tx, documentID); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Candidates returns chunks matching the metadata filter, up to limit.
func (r *ChunkRepository) Candidates(ctx context.Context, filter core.MetadataFilter, limit int) ([]*core.ChunkRecord, error) {
	var chunks []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var uerr error
				chunk, uerr = storage.UnmarshalChunkRecord(val)
				return uerr
			})
			if err != nil {
				return err
			}
			if !filter.Matches(chunk) {
				continue
			}
			chunks = append(chunks, chunk)
			if limit > 0 && len(chunks) >= limit {
				return nil
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// deleteDocumentChunks removes a document's chunk records and index
// entries within an open transaction.
func deleteDocumentChunks(tx *badger.Txn, documentID string) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeChunkDocScanPrefix(documentID)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var indexKeys [][]byte
	var ids []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		key := iter.Item().KeyCopy(nil)
		indexKeys = append(indexKeys, key)
		ids = append(ids, chunkIDFromDocKey(key))
	}
	iter.Close()

	for i, key := range indexKeys {
		if err := tx.Delete(key); err != nil {
			return err
		}
		if err := tx.Delete(makeChunkKey(ids[i])); err != nil {
			return err
		}
	}
	return nil
}
