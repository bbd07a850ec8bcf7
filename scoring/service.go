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


package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veracue/docflow/blob"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
	"github.com/veracue/docflow/telemetry"
)

var (
	// ErrScoreRepositoryRequired is returned when a score repository is not provided.
	ErrScoreRepositoryRequired = errors.New("score repository required")

	// ErrTelemetryRequired is returned when a telemetry publisher is not provided.
	ErrTelemetryRequired = errors.New("telemetry publisher required")
)

// Service consumes scoring-trigger messages. It is safe under
// at-least-once delivery: the score repository's duplicate guard makes
// redeliveries benign, and telemetry fires exactly once per stored
// record.
type Service struct {
	evaluator *Evaluator
	scores    storage.ScoreRepository
	blobs     blob.Store
	telemetry telemetry.Publisher
	logger    *slog.Logger
}

// NewService creates the scoring service. The blob store may be nil
// when the deployment never sends blob-reference messages.
func NewService(evaluator *Evaluator, scores storage.ScoreRepository, blobs blob.Store, publisher telemetry.Publisher) (*Service, error) {
	if evaluator == nil {
		return nil, ErrScorerRequired
	}
	if scores == nil {
		return nil, ErrScoreRepositoryRequired
	}
	if publisher == nil {
		return nil, ErrTelemetryRequired
	}
	return &Service{
		evaluator: evaluator,
		scores:    scores,
		blobs:     blobs,
		telemetry: publisher,
		logger:    slog.Default().With("component", "scoring-service"),
	}, nil
}

// HandleMessage processes one scoring trigger.
//
// The message is either an inline answer-plus-evidence payload or a
// blob reference that resolves to one. A message that parses into
// neither is a parsing error and surfaces to the caller; it is never
// silently dropped. A duplicate delivery of an already-scored
// transaction is benign: the existing record stands, no second
// telemetry event fires, and nil is returned.
func (s *Service) HandleMessage(ctx context.Context, raw []byte) error {
	msg, err := core.DecodeScoringMessage(raw)
	if err != nil {
		return err
	}

	if msg.IsBlobReference() {
		msg, err = s.resolve(ctx, msg.Filename)
		if err != nil {
			return err
		}
	}

	payload := msg.AnswerPayload()
	if payload.TransactionID == "" {
		return fmt.Errorf("%w: scoring message missing transactionId", core.ErrParsing)
	}

	score, err := s.evaluator.EvaluateGroundedness(ctx, payload)
	if err != nil {
		return err
	}

	if err := s.scores.PutScore(ctx, score); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			s.logger.Info("transaction already scored, ignoring redelivery",
				"transaction_id", score.TransactionID)
			return nil
		}
		return err
	}

	if err := s.telemetry.PublishScore(ctx, telemetry.ScoreEvent{
		TransactionID: score.TransactionID,
		Score:         score.Score,
		UserQuery:     payload.Query,
	}); err != nil {
		// The score is already durable; a telemetry hiccup must not
		// trigger a redelivery that could double-publish later.
		s.logger.Error("failed to publish score event",
			"transaction_id", score.TransactionID,
			"err", err)
	}

	s.logger.Info("transaction scored",
		"transaction_id", score.TransactionID,
		"score", score.Score)
	return nil
}

// resolve reads a blob-reference message's real payload from the blob
// store and decodes it.
func (s *Service) resolve(ctx context.Context, filename string) (*core.ScoringMessage, error) {
	if s.blobs == nil {
		return nil, fmt.Errorf("%w: blob reference %q without a blob store", core.ErrParsing, filename)
	}

	payload, err := s.blobs.Read(ctx, filename)
	if err != nil {
		return nil, fmt.Errorf("resolving scoring blob %q: %w", filename, err)
	}

	msg, err := core.DecodeScoringMessage(payload)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resolved scoring blob", "filename", filename)
	return msg, nil
}
