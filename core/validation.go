// Copyright 2025 Veracue Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MetadataKeyDocumentID is the upload metadata field naming the document.
const MetadataKeyDocumentID = "document_id"

// SourceLocation identifies where uploaded objects live. The hand-off
// message carries a full URL derived from it so downstream stages never
// need the account/container configuration themselves.
type SourceLocation struct {
	Account   string
	Container string
}

// URL builds the source URL for an object within the location.
func (s SourceLocation) URL(objectName string) string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.Account, s.Container, objectName)
}

// ParseDocumentID extracts and validates the document_id field from
// upload metadata. The ID must be a well-formed UUID.
func ParseDocumentID(metadata map[string]string) (string, error) {
	raw, ok := metadata[MetadataKeyDocumentID]
	if !ok || strings.TrimSpace(raw) == "" {
		return "", ErrMissingDocumentID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDocumentID, raw)
	}
	return id.String(), nil
}

// ValidateMetadata classifies an uploaded object's metadata into a
// disposition. On acceptance the disposition carries the normalized
// hand-off message: the document ID, all other metadata keys unchanged,
// the derived source URL, and a fresh UTC timestamp. On rejection it
// carries the outcome and reason to record; no hand-off is produced.
func ValidateMetadata(objectName string, metadata map[string]string, source SourceLocation) Disposition {
	documentID, err := ParseDocumentID(metadata)
	if err != nil {
		outcome := OutcomeMetadataInvalid
		if err == ErrMissingDocumentID {
			outcome = OutcomeMetadataMissing
		}
		return Disposition{
			Accepted: false,
			Outcome:  outcome,
			Reason:   err.Error(),
		}
	}

	// Carry every metadata key except the document ID itself.
	extra := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if k == MetadataKeyDocumentID {
			continue
		}
		extra[k] = v
	}

	return Disposition{
		Accepted: true,
		Outcome:  OutcomeIngestionSuccess,
		Handoff: &HandoffMessage{
			DocumentID: documentID,
			Metadata:   extra,
			BlobURL:    source.URL(objectName),
			Timestamp:  time.Now().UTC(),
		},
	}
}

// ValidateAnswerPayload checks that a payload is scoreable. A score is
// never produced for a payload lacking the query or the answer text.
func ValidateAnswerPayload(payload *AnswerPayload) error {
	if payload == nil {
		return fmt.Errorf("%w: payload is nil", ErrParsing)
	}
	if strings.TrimSpace(payload.Query) == "" {
		return ErrEmptyQuery
	}
	if strings.TrimSpace(payload.Answer) == "" {
		return ErrEmptyAnswer
	}
	return nil
}

// ValidateScore checks that a groundedness score is within bounds.
func ValidateScore(score float64) error {
	if score < ScoreMin || score > ScoreMax {
		return fmt.Errorf("%w: score %v outside [%d, %d]", ErrScoringService, score, ScoreMin, ScoreMax)
	}
	return nil
}
