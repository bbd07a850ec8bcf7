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
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/remote"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	logger *slog.Logger
}

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config, cache *remote.ClientCache) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient, err := cache.Get(config.GenerationHost)
	if err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.GenerationHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.GenerationModel),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		logger: slog.Default().With("component", "openai-generator"),
	}, nil
}

// NewGenerator creates an answer generator using the provided
// configuration. Its HTTP client comes from the shared cache, so calls
// inherit the process-wide credential and retry policy.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config, cache *remote.ClientCache) (ai.Generator, error) {
	return newGenerator(config, cache)
}

// Generate produces an answer to the query grounded in the evidence
// chunks. The prompt argument carries caller-supplied query-shaping
// instructions and is embedded in the system message.
func (g *Generator) Generate(ctx context.Context, query, prompt string, evidence []*core.ChunkRecord) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", core.ErrEmptyQuery
	}

	systemPrompt := buildAnswerPrompt(prompt, ai.SerializeEvidence(evidence))
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(query),
			},
		},
	}

	response, err := g.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		g.logger.Error("failed to generate answer", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("%w: model returned no choices", core.ErrEmptyAnswer)
	}

	answer := strings.TrimSpace(response.Choices[0].Content)
	if answer == "" {
		return "", fmt.Errorf("%w: model returned blank content", core.ErrEmptyAnswer)
	}

	g.logger.Debug("generated answer", "chunks", len(evidence), "length", len(answer))
	return answer, nil
}
