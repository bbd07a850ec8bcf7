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


package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/queue"
	"github.com/veracue/docflow/status"
)

// Validator classifies inbound upload notifications. Accepted uploads
// are handed off to the chunking queue; rejected ones are recorded in
// the status tracker and never forwarded.
type Validator struct {
	source    core.SourceLocation
	publisher queue.Publisher
	tracker   *status.Tracker
	logger    *slog.Logger
}

// NewValidator creates a validator that derives source URLs from the
// given location and publishes accepted hand-offs to the publisher.
func NewValidator(source core.SourceLocation, publisher queue.Publisher, tracker *status.Tracker) (*Validator, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}
	return &Validator{
		source:    source,
		publisher: publisher,
		tracker:   tracker,
		logger:    slog.Default().With("component", "upload-validator"),
	}, nil
}

// HandleUpload validates one upload notification and applies the
// stage's side effects: enqueue on accept, status record on reject.
// Duplicate notifications for the same object produce the same
// disposition and are harmless downstream.
func (v *Validator) HandleUpload(ctx context.Context, objectName string, metadata map[string]string) (core.Disposition, error) {
	disposition := core.ValidateMetadata(objectName, metadata, v.source)

	if !disposition.Accepted {
		v.logger.Warn("upload rejected",
			"object", objectName,
			"outcome", disposition.Outcome.String(),
			"reason", disposition.Reason)
		v.tracker.Record(ctx, statusKeyFor(objectName, metadata), objectName, disposition.Outcome, disposition.Reason)
		return disposition, nil
	}

	payload, err := json.Marshal(disposition.Handoff)
	if err != nil {
		return disposition, err
	}

	if err := v.publisher.Publish(ctx, payload); err != nil {
		v.logger.Error("failed to enqueue hand-off",
			"document_id", disposition.Handoff.DocumentID,
			"err", err)
		disposition.Accepted = false
		disposition.Outcome = core.OutcomeEnqueueFailed
		disposition.Reason = err.Error()
		v.tracker.Record(ctx, disposition.Handoff.DocumentID, objectName, core.OutcomeEnqueueFailed, err.Error())
		return disposition, err
	}

	v.logger.Info("upload accepted",
		"document_id", disposition.Handoff.DocumentID,
		"object", objectName)
	return disposition, nil
}

// statusKeyFor picks the key a rejection is recorded under. A malformed
// document id is still the best available key; an absent one falls back
// to the object name so the rejection stays queryable.
func statusKeyFor(objectName string, metadata map[string]string) string {
	if raw := metadata[core.MetadataKeyDocumentID]; raw != "" {
		return raw
	}
	return objectName
}
