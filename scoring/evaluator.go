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


// Package scoring implements the groundedness scoring stage: it judges
// answered transactions against their evidence, persists at most one
// score per transaction, and publishes one telemetry event per stored
// record.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
)

// ErrScorerRequired is returned when a scorer is not provided.
var ErrScorerRequired = errors.New("scorer required")

// Evaluator turns an answered payload into a groundedness score. The
// evidence is serialized in the payload's order, so a fixed judge
// response yields a fixed score.
type Evaluator struct {
	scorer ai.GroundednessScorer
	logger *slog.Logger
}

// NewEvaluator creates an evaluator over the scorer.
func NewEvaluator(scorer ai.GroundednessScorer) (*Evaluator, error) {
	if scorer == nil {
		return nil, ErrScorerRequired
	}
	return &Evaluator{
		scorer: scorer,
		logger: slog.Default().With("component", "groundedness-evaluator"),
	}, nil
}

// EvaluateGroundedness judges the payload's answer against its evidence
// and returns the bounded score with the judge's rationale. A payload
// lacking the query or answer is rejected before any scorer call; a
// judgment outside [0, 10] is a scoring service error.
func (e *Evaluator) EvaluateGroundedness(ctx context.Context, payload *core.AnswerPayload) (*core.ModelScore, error) {
	if err := core.ValidateAnswerPayload(payload); err != nil {
		return nil, err
	}

	judgment, err := e.scorer.ScoreGroundedness(ctx, payload.Answer, payload.Query, payload.Evidence)
	if err != nil {
		if errors.Is(err, core.ErrScoringService) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrScoringService, err)
	}
	if err := core.ValidateScore(judgment.Score); err != nil {
		return nil, err
	}

	e.logger.Debug("answer judged",
		"transaction_id", payload.TransactionID,
		"score", judgment.Score)

	return &core.ModelScore{
		TransactionID: payload.TransactionID,
		Score:         judgment.Score,
		Rationale:     judgment.Rationale,
	}, nil
}
