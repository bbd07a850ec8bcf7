package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored chunk records.
// It is generated using content-based hashing so that re-ingesting the
// same document produces the same set of IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces the identical ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID generates the content-based ID for a chunk of a document.
// The owning document ID and the chunk ordinal are part of the hash so
// that identical text appearing in two documents (or twice in one) still
// yields distinct IDs, while re-ingestion of the same document yields the
// same IDs in the same order.
func ChunkID(documentID string, ordinal int, text string) ID {
	return IDFromContent(documentID + "\x00" + strconv.Itoa(ordinal) + "\x00" + text)
}

// DocumentRecord describes an uploaded source document.
// Records are immutable once accepted; a re-upload supersedes the old
// record rather than mutating it.
type DocumentRecord struct {
	DocumentID string            // UUID naming the document across its lifecycle
	Name       string            // Display name (typically the blob object name)
	SourceURL  string            // Location the raw content can be fetched from
	Metadata   map[string]string // Arbitrary key/value metadata from the upload
	IngestedAt time.Time         // When the upload notification was accepted
}

// ChunkRecord is a bounded span of extracted document text used as a
// retrieval and citation unit.
type ChunkRecord struct {
	Id         ID
	DocumentID string            // Owning document UUID
	FileName   string            // Display name of the owning document
	Text       string
	Pages      []int             // Originating page numbers; empty when the source has no page layout
	Score      *float64          // Retrieval relevance score; nil until retrieved from an index
	Metadata   map[string]string // Document metadata carried for filtered retrieval
	InsertedAt time.Time
}

// FilterClause is a single key/value constraint of a metadata filter.
type FilterClause struct {
	Key   string
	Value string
}

// MetadataFilter is an ordered sequence of clauses, ALL of which must
// match (AND semantics). An empty filter matches every chunk.
type MetadataFilter []FilterClause

// Matches reports whether the chunk's metadata satisfies every clause.
func (f MetadataFilter) Matches(chunk *ChunkRecord) bool {
	for _, clause := range f {
		if chunk.Metadata[clause.Key] != clause.Value {
			return false
		}
	}
	return true
}

// QueryRequest is a transient answer request. The transaction ID
// correlates the eventual groundedness score back to this request.
type QueryRequest struct {
	Query         string
	Prompt        string         // Optional query-shaping prompt
	Filter        MetadataFilter // Optional metadata filter over candidate chunks
	TransactionID string
}

// AnswerPayload carries a generated answer together with the exact
// evidence chunks that were sent to the generation service, in order.
// It is produced once by the answer stage and consumed exactly once by
// the scoring stage.
type AnswerPayload struct {
	Query         string
	Prompt        string
	Answer        string
	Evidence      []*ChunkRecord
	TransactionID string
}

// Groundedness score bounds. A score outside this range is a scoring
// service error, never stored.
const (
	ScoreMin = 0
	ScoreMax = 10
)

// ModelScore is the groundedness judgment for one answered transaction.
// Immutable once computed; at most one record exists per transaction ID.
type ModelScore struct {
	TransactionID string
	Score         float64 // Within [ScoreMin, ScoreMax]
	Rationale     string
	CreatedAt     time.Time
}

// Outcome is the coarse per-stage result recorded for a document.
type Outcome int

const (
	// OutcomeUnknown is recorded when a stage failed for an unclassified reason.
	OutcomeUnknown Outcome = iota
	// OutcomeIngestionSuccess means extraction and chunking completed.
	OutcomeIngestionSuccess
	// OutcomeIngestionFailed means extraction or chunking failed.
	OutcomeIngestionFailed
	// OutcomeMetadataMissing means the upload carried no document_id.
	OutcomeMetadataMissing
	// OutcomeMetadataInvalid means the document_id is not a well-formed UUID.
	OutcomeMetadataInvalid
	// OutcomeBlobNotFound means the referenced blob could not be read.
	OutcomeBlobNotFound
	// OutcomeEnqueueFailed means the hand-off message could not be published.
	OutcomeEnqueueFailed
)

// String returns the wire representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeIngestionSuccess:
		return "ingestion-success"
	case OutcomeIngestionFailed:
		return "ingestion-failed"
	case OutcomeMetadataMissing:
		return "metadata-missing"
	case OutcomeMetadataInvalid:
		return "metadata-invalid"
	case OutcomeBlobNotFound:
		return "blob-not-found"
	case OutcomeEnqueueFailed:
		return "enqueue-failed"
	default:
		return "unknown"
	}
}

// StatusEntry is the last-known stage outcome for a document. One logical
// entry exists per document ID; each stage transition overwrites it.
type StatusEntry struct {
	DocumentID   string
	DocumentName string
	Outcome      Outcome
	Reason       string
	LastUpdated  time.Time
}

// Disposition is the validator's classification of an inbound upload.
// Accepted dispositions carry the normalized hand-off message; rejected
// ones carry the outcome and reason to record.
type Disposition struct {
	Accepted bool
	Outcome  Outcome
	Reason   string
	Handoff  *HandoffMessage
}
