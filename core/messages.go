package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Reserved keys of the hand-off message. Upload metadata using these
// names would be shadowed, so the validator never forwards them as-is.
const (
	handoffKeyDocumentID = "document_id"
	handoffKeyBlobURL    = "blob_url"
	handoffKeyTimestamp  = "current_timestamp"
)

// HandoffMessage is the normalized payload the validator enqueues for the
// chunking stage. On the wire it is a flat JSON object: the reserved keys
// plus every other metadata key/value at the top level.
type HandoffMessage struct {
	DocumentID string
	Metadata   map[string]string
	BlobURL    string
	Timestamp  time.Time
}

// MarshalJSON flattens the message into a single JSON object.
func (m HandoffMessage) MarshalJSON() ([]byte, error) {
	flat := make(map[string]string, len(m.Metadata)+3)
	for k, v := range m.Metadata {
		flat[k] = v
	}
	flat[handoffKeyDocumentID] = m.DocumentID
	flat[handoffKeyBlobURL] = m.BlobURL
	flat[handoffKeyTimestamp] = m.Timestamp.UTC().Format(time.RFC3339)
	return json.Marshal(flat)
}

// UnmarshalJSON collects the reserved keys into typed fields and every
// remaining key into Metadata.
func (m *HandoffMessage) UnmarshalJSON(data []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}

	m.DocumentID = flat[handoffKeyDocumentID]
	m.BlobURL = flat[handoffKeyBlobURL]
	m.Timestamp = time.Time{}
	if raw := flat[handoffKeyTimestamp]; raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", handoffKeyTimestamp, err)
		}
		m.Timestamp = ts
	}

	m.Metadata = make(map[string]string, len(flat))
	for k, v := range flat {
		switch k {
		case handoffKeyDocumentID, handoffKeyBlobURL, handoffKeyTimestamp:
			continue
		}
		m.Metadata[k] = v
	}
	return nil
}

// Document materializes the record the hand-off describes. The display
// name is the object name taken from the blob URL.
func (m *HandoffMessage) Document() DocumentRecord {
	name := m.BlobURL
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return DocumentRecord{
		DocumentID: m.DocumentID,
		Name:       name,
		SourceURL:  m.BlobURL,
		Metadata:   m.Metadata,
		IngestedAt: m.Timestamp,
	}
}

// DecodeHandoffMessage parses a hand-off message from queue bytes.
// A message that is not valid JSON is a parsing error; the caller must
// propagate it so the delivery mechanism can dead-letter.
func DecodeHandoffMessage(raw []byte) (*HandoffMessage, error) {
	var msg HandoffMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsing, err)
	}
	return &msg, nil
}

// ChunkedEntry is the wire form of one evidence chunk in a scoring
// trigger message.
type ChunkedEntry struct {
	DocumentFileName string  `json:"documentFileName"`
	Chunk            string  `json:"chunk"`
	PageNumber       int     `json:"pageNumber"`
	Score            float64 `json:"score"`
}

// ScoringMessage triggers the scoring stage. It is either the inline
// answer-plus-evidence form or a blob reference ({filename}) that the
// stage resolves to the same structure via the blob collaborator.
type ScoringMessage struct {
	UserQuery      string         `json:"userQuery"`
	LLMResponse    string         `json:"llmResponse"`
	QueryPrompt    string         `json:"queryPrompt"`
	ChunkedEntries []ChunkedEntry `json:"chunkedEntries"`
	TransactionID  string         `json:"transactionId"`
	Filename       string         `json:"filename,omitempty"`
}

// IsBlobReference reports whether the message is the blob-reference
// variant rather than an inline payload.
func (m *ScoringMessage) IsBlobReference() bool {
	return m.Filename != "" && m.LLMResponse == ""
}

// AnswerPayload converts the inline message into the domain payload the
// scoring stage evaluates.
func (m *ScoringMessage) AnswerPayload() *AnswerPayload {
	evidence := make([]*ChunkRecord, len(m.ChunkedEntries))
	for i, entry := range m.ChunkedEntries {
		score := entry.Score
		chunk := &ChunkRecord{
			FileName: entry.DocumentFileName,
			Text:     entry.Chunk,
			Score:    &score,
		}
		if entry.PageNumber > 0 {
			chunk.Pages = []int{entry.PageNumber}
		}
		evidence[i] = chunk
	}
	return &AnswerPayload{
		Query:         m.UserQuery,
		Prompt:        m.QueryPrompt,
		Answer:        m.LLMResponse,
		Evidence:      evidence,
		TransactionID: m.TransactionID,
	}
}

// NewScoringMessage builds the wire message for an answered request.
func NewScoringMessage(payload *AnswerPayload) *ScoringMessage {
	entries := make([]ChunkedEntry, len(payload.Evidence))
	for i, chunk := range payload.Evidence {
		entry := ChunkedEntry{
			DocumentFileName: chunk.FileName,
			Chunk:            chunk.Text,
		}
		if len(chunk.Pages) > 0 {
			entry.PageNumber = chunk.Pages[0]
		}
		if chunk.Score != nil {
			entry.Score = *chunk.Score
		}
		entries[i] = entry
	}
	return &ScoringMessage{
		UserQuery:      payload.Query,
		LLMResponse:    payload.Answer,
		QueryPrompt:    payload.Prompt,
		ChunkedEntries: entries,
		TransactionID:  payload.TransactionID,
	}
}

// DecodeScoringMessage parses a scoring trigger from queue bytes.
// Invalid JSON is a parsing error and must surface to the caller; it is
// never silently dropped.
func DecodeScoringMessage(raw []byte) (*ScoringMessage, error) {
	var msg ScoringMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsing, err)
	}
	return &msg, nil
}
