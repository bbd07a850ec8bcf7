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
	"log/slog"

	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/remote"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages generator and scorer instances.
type Provider struct {
	config    *ai.Config
	generator *Generator
	scorer    *Scorer
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use. Both services draw
// their HTTP clients from the shared cache, so generation and scoring
// against the same host share a single client.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, cache *remote.ClientCache) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create generator (using internal constructor for concrete type)
	generator, err := newGenerator(config, cache)
	if err != nil {
		return nil, err
	}

	// Create scorer (using internal constructor for concrete type)
	scorer, err := newScorer(config, cache)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		generator: generator,
		scorer:    scorer,
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Generator returns the answer generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Scorer returns the groundedness scoring service.
func (p *Provider) Scorer() ai.GroundednessScorer {
	return p.scorer
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
