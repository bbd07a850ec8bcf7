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


package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/queue"
)

// DefaultEvidenceLimit bounds how many chunks are sent to the generator.
const DefaultEvidenceLimit = 10

var (
	// ErrIndexRequired is returned when an index is not provided.
	ErrIndexRequired = errors.New("index required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")
)

// Service answers queries over ingested chunks. There is no retry loop
// here: transient remote failures are absorbed by the shared transport
// policy, and anything that escapes it surfaces as ErrRetrieval.
type Service struct {
	index         Index
	generator     ai.Generator
	publisher     queue.Publisher
	evidenceLimit int
	logger        *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEvidenceLimit overrides the evidence bound. Values below 1 keep
// the default.
func WithEvidenceLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit >= 1 {
			s.evidenceLimit = limit
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates the answer service. The publisher may be nil when
// the deployment does not forward answers for scoring; Publish then
// becomes an error.
func NewService(index Index, generator ai.Generator, publisher queue.Publisher, opts ...ServiceOption) (*Service, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	s := &Service{
		index:         index,
		generator:     generator,
		publisher:     publisher,
		evidenceLimit: DefaultEvidenceLimit,
		logger:        slog.Default().With("component", "answer-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Answer retrieves evidence for the request and generates a grounded
// answer. The returned payload carries the exact evidence subset that
// was sent to the generator, in rank order, plus the transaction ID
// (minted here when the request carries none).
func (s *Service) Answer(ctx context.Context, req core.QueryRequest) (*core.AnswerPayload, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, core.ErrEmptyQuery
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = uuid.NewString()
	}

	evidence, err := s.index.Search(ctx, req.Query, req.Filter, s.evidenceLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: searching chunks: %w", core.ErrRetrieval, err)
	}

	answerText, err := s.generator.Generate(ctx, req.Query, req.Prompt, evidence)
	if err != nil {
		return nil, fmt.Errorf("%w: generating answer: %w", core.ErrRetrieval, err)
	}

	s.logger.Info("query answered",
		"transaction_id", transactionID,
		"evidence", len(evidence))

	return &core.AnswerPayload{
		Query:         req.Query,
		Prompt:        req.Prompt,
		Answer:        answerText,
		Evidence:      evidence,
		TransactionID: transactionID,
	}, nil
}

// Publish emits the scoring-trigger message for an answered payload.
func (s *Service) Publish(ctx context.Context, payload *core.AnswerPayload) error {
	if s.publisher == nil {
		return errors.New("answer service has no scoring publisher")
	}
	if err := core.ValidateAnswerPayload(payload); err != nil {
		return err
	}

	raw, err := json.Marshal(core.NewScoringMessage(payload))
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, raw); err != nil {
		return fmt.Errorf("publishing scoring trigger: %w", err)
	}

	s.logger.Debug("scoring trigger published", "transaction_id", payload.TransactionID)
	return nil
}
