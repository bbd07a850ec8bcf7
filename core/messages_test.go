package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoffMessage_RoundTrip(t *testing.T) {
	msg := &HandoffMessage{
		DocumentID: "53ac8b90-c4c8-472c-a5ee-fe84ed96047b",
		Metadata:   map[string]string{"author": "jdoe", "department": "legal"},
		BlobURL:    "https://uploads.blob.core.windows.net/docs/contract.pdf",
		Timestamp:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	// The wire form is a flat object with metadata keys at the top level.
	var flat map[string]string
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "53ac8b90-c4c8-472c-a5ee-fe84ed96047b", flat["document_id"])
	assert.Equal(t, msg.BlobURL, flat["blob_url"])
	assert.Equal(t, "2026-03-14T09:26:53Z", flat["current_timestamp"])
	assert.Equal(t, "jdoe", flat["author"])
	assert.Equal(t, "legal", flat["department"])

	decoded, err := DecodeHandoffMessage(raw)
	require.NoError(t, err)
	assert.Equal(t, msg.DocumentID, decoded.DocumentID)
	assert.Equal(t, msg.BlobURL, decoded.BlobURL)
	assert.Equal(t, msg.Metadata, decoded.Metadata)
	assert.True(t, msg.Timestamp.Equal(decoded.Timestamp))
}

func TestHandoffMessage_Document(t *testing.T) {
	msg := &HandoffMessage{
		DocumentID: "53ac8b90-c4c8-472c-a5ee-fe84ed96047b",
		Metadata:   map[string]string{"department": "legal"},
		BlobURL:    "https://uploads.blob.core.windows.net/docs/contract.pdf",
		Timestamp:  time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	record := msg.Document()
	assert.Equal(t, msg.DocumentID, record.DocumentID)
	assert.Equal(t, "contract.pdf", record.Name)
	assert.Equal(t, msg.BlobURL, record.SourceURL)
	assert.Equal(t, msg.Metadata, record.Metadata)
	assert.True(t, msg.Timestamp.Equal(record.IngestedAt))
}

func TestDecodeHandoffMessage_Invalid(t *testing.T) {
	_, err := DecodeHandoffMessage([]byte("not json at all"))
	assert.ErrorIs(t, err, ErrParsing)

	_, err = DecodeHandoffMessage([]byte(`{"document_id": 42}`))
	assert.ErrorIs(t, err, ErrParsing, "non-string values are not a valid hand-off")
}

func TestDecodeScoringMessage_Inline(t *testing.T) {
	raw := []byte(`{"llmResponse":"response","userQuery":"query","chunkedEntries":[],"transactionId":"12345"}`)

	msg, err := DecodeScoringMessage(raw)
	require.NoError(t, err)
	assert.False(t, msg.IsBlobReference())

	payload := msg.AnswerPayload()
	assert.Equal(t, "query", payload.Query)
	assert.Equal(t, "response", payload.Answer)
	assert.Equal(t, "12345", payload.TransactionID)
	assert.Empty(t, payload.Evidence)
}

func TestDecodeScoringMessage_BlobReference(t *testing.T) {
	msg, err := DecodeScoringMessage([]byte(`{"filename":"answers/12345.json"}`))
	require.NoError(t, err)
	assert.True(t, msg.IsBlobReference())
	assert.Equal(t, "answers/12345.json", msg.Filename)
}

func TestDecodeScoringMessage_Invalid(t *testing.T) {
	_, err := DecodeScoringMessage([]byte("{{{"))
	assert.ErrorIs(t, err, ErrParsing)
}

func TestScoringMessage_EvidenceRoundTrip(t *testing.T) {
	score := 0.87
	payload := &AnswerPayload{
		Query:  "what is the termination clause",
		Prompt: "answer from the contract only",
		Answer: "thirty days written notice",
		Evidence: []*ChunkRecord{
			{FileName: "contract.pdf", Text: "either party may terminate...", Pages: []int{4, 5}, Score: &score},
			{FileName: "contract.pdf", Text: "notice must be written", Score: &score},
		},
		TransactionID: "txn-1",
	}

	msg := NewScoringMessage(payload)
	require.Len(t, msg.ChunkedEntries, 2)
	assert.Equal(t, 4, msg.ChunkedEntries[0].PageNumber, "first page of a multi-page chunk")
	assert.Equal(t, 0, msg.ChunkedEntries[1].PageNumber, "no layout, no page")
	assert.Equal(t, 0.87, msg.ChunkedEntries[0].Score)

	back := msg.AnswerPayload()
	require.Len(t, back.Evidence, 2)
	assert.Equal(t, payload.Evidence[0].Text, back.Evidence[0].Text)
	assert.Equal(t, []int{4}, back.Evidence[0].Pages)
	assert.Empty(t, back.Evidence[1].Pages)
}

func TestChunkID_Deterministic(t *testing.T) {
	a := ChunkID("doc-1", 0, "some text")
	b := ChunkID("doc-1", 0, "some text")
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, ChunkID("doc-2", 0, "some text"))
	assert.NotEqual(t, a, ChunkID("doc-1", 1, "some text"))
	assert.NotEqual(t, a, ChunkID("doc-1", 0, "other text"))
}

func TestMetadataFilter_Matches(t *testing.T) {
	chunk := &ChunkRecord{Metadata: map[string]string{"department": "legal", "year": "2026"}}

	assert.True(t, MetadataFilter{}.Matches(chunk), "empty filter matches everything")
	assert.True(t, MetadataFilter{{Key: "department", Value: "legal"}}.Matches(chunk))
	assert.True(t, MetadataFilter{
		{Key: "department", Value: "legal"},
		{Key: "year", Value: "2026"},
	}.Matches(chunk))

	assert.False(t, MetadataFilter{{Key: "department", Value: "sales"}}.Matches(chunk))
	assert.False(t, MetadataFilter{
		{Key: "department", Value: "legal"},
		{Key: "year", Value: "1999"},
	}.Matches(chunk), "AND semantics: one failing clause rejects")
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "ingestion-success", OutcomeIngestionSuccess.String())
	assert.Equal(t, "ingestion-failed", OutcomeIngestionFailed.String())
	assert.Equal(t, "metadata-missing", OutcomeMetadataMissing.String())
	assert.Equal(t, "metadata-invalid", OutcomeMetadataInvalid.String())
	assert.Equal(t, "blob-not-found", OutcomeBlobNotFound.String())
	assert.Equal(t, "enqueue-failed", OutcomeEnqueueFailed.String())
	assert.Equal(t, "unknown", OutcomeUnknown.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
