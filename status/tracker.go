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


// Package status tracks the last-known processing outcome per document.
// One logical entry exists per document ID; each stage transition
// overwrites the previous entry (last-writer-wins).
package status

import (
	"context"
	"log/slog"

	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
)

// Tracker records and reads per-document outcomes.
type Tracker struct {
	repo   storage.StatusRepository
	logger *slog.Logger
}

// NewTracker creates a tracker over the status repository.
func NewTracker(repo storage.StatusRepository) *Tracker {
	return &Tracker{
		repo:   repo,
		logger: slog.Default().With("component", "status-tracker"),
	}
}

// Record overwrites the document's status entry with the outcome and
// reason. Recording failures are logged and returned but never abort
// the pipeline stage that triggered them.
func (t *Tracker) Record(ctx context.Context, documentID, documentName string, outcome core.Outcome, reason string) error {
	entry := &core.StatusEntry{
		DocumentID:   documentID,
		DocumentName: documentName,
		Outcome:      outcome,
		Reason:       reason,
	}
	if err := t.repo.Put(ctx, entry); err != nil {
		t.logger.Error("failed to record status",
			"document_id", documentID,
			"outcome", outcome.String(),
			"err", err)
		return err
	}

	t.logger.Info("status recorded",
		"document_id", documentID,
		"outcome", outcome.String(),
		"reason", reason)
	return nil
}

// Get returns the last recorded entry for the document. Unprocessed
// documents return storage.ErrNotFound; that is an expected state, not
// a failure.
func (t *Tracker) Get(ctx context.Context, documentID string) (*core.StatusEntry, error) {
	return t.repo.Get(ctx, documentID)
}
