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


package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/remote"
)

// Scorer implements ai.GroundednessScorer using OpenAI-compatible chat APIs.
type Scorer struct {
	client llms.Model
	logger *slog.Logger
}

// verdict is an internal type used for JSON unmarshaling.
// It matches the structure expected from the judge model.
type verdict struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// newScorer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newScorer(config *ai.Config, cache *remote.ClientCache) (*Scorer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient, err := cache.Get(config.ScoringHost)
	if err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ScoringHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ScoringModel),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	return &Scorer{
		client: client,
		logger: slog.Default().With("component", "openai-scorer"),
	}, nil
}

// NewScorer creates a groundedness scorer using the provided
// configuration. Its HTTP client comes from the shared cache.
//
// Returns ai.GroundednessScorer interface to enforce abstraction.
func NewScorer(config *ai.Config, cache *remote.ClientCache) (ai.GroundednessScorer, error) {
	return newScorer(config, cache)
}

// ScoreGroundedness judges how well the answer is supported by the
// evidence chunks. The judge's verdict is parsed from JSON and its score
// validated against the pipeline's bounds before being returned.
func (s *Scorer) ScoreGroundedness(ctx context.Context, answer, query string, evidence []*core.ChunkRecord) (*ai.Judgment, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildScoringPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(buildScoringInput(query, answer, ai.SerializeEvidence(evidence))),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result verdict
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.Error("failed to generate verdict", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %w", core.ErrScoringService, err)
		}

		if len(response.Choices) < 1 {
			return nil, fmt.Errorf("%w: judge returned no choices", core.ErrScoringService)
		}

		responseText := stripFences(response.Choices[0].Content)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			s.logger.Warn("error parsing judge response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		s.logger.Error("failed to parse judge response after retries", "err", lastErr)
		return nil, fmt.Errorf("%w: %w", core.ErrScoringService, lastErr)
	}

	if err := core.ValidateScore(result.Score); err != nil {
		return nil, err
	}

	s.logger.Debug("scored answer", "score", result.Score, "chunks", len(evidence))
	return &ai.Judgment{
		Score:     result.Score,
		Rationale: result.Reasoning,
	}, nil
}
