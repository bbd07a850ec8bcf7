package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/veracue/docflow/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chkrec"
	chunkDocPrefix    = "chkdoc"
	statusPrefix      = "docsta"
	scorePrefix       = "txnsco"
)

// makeChunkKey generates a key for a chunk record by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkDocKey generates a composite key for the per-document chunk
// index. Format: prefix:documentID:ordinal:id. The ordinal keeps a
// prefix scan in chunk order.
func makeChunkDocKey(documentID string, ordinal int, id core.ID) []byte {
	prefix := chunkDocPrefix + ":" + documentID + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 16 // 8 bytes ordinal + 8 bytes ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// BigEndian so lexicographic iteration follows chunk order
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkDocScanPrefix generates the scan prefix for all chunks of a document.
func makeChunkDocScanPrefix(documentID string) []byte {
	return []byte(chunkDocPrefix + ":" + documentID + ":")
}

// chunkIDFromDocKey extracts the chunk ID from a per-document index key.
func chunkIDFromDocKey(key []byte) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))
}

// makeStatusKey generates a key for a document's status entry.
func makeStatusKey(documentID string) []byte {
	return []byte(statusPrefix + ":" + documentID)
}

// makeScoreKey generates a key for a transaction's score record.
func makeScoreKey(transactionID string) []byte {
	return []byte(scorePrefix + ":" + transactionID)
}
