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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for the remote AI services.
type Config struct {
	// ExtractionEndpoint is the URL of the document-analysis service.
	ExtractionEndpoint string

	// GenerationHost is the base URL for the answer-generation API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	GenerationHost string

	// ScoringHost is the base URL for the groundedness-scoring API.
	ScoringHost string

	// GenerationModel is the model identifier used to generate answers.
	GenerationModel string

	// ScoringModel is the model identifier used to judge groundedness.
	ScoringModel string

	// Token is the credential sent to OpenAI-compatible services.
	// Local services that don't authenticate accept any value.
	Token string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithExtractionEndpoint sets the document-analysis service URL.
func WithExtractionEndpoint(endpoint string) ConfigOption {
	return func(c *Config) {
		c.ExtractionEndpoint = endpoint
	}
}

// WithGenerationHost sets the generation service host URL.
func WithGenerationHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
	}
}

// WithScoringHost sets the scoring service host URL.
func WithScoringHost(host string) ConfigOption {
	return func(c *Config) {
		c.ScoringHost = host
	}
}

// WithHost sets both generation and scoring hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.GenerationHost = host
		c.ScoringHost = host
	}
}

// WithGenerationModel sets the generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithScoringModel sets the scoring model identifier.
func WithScoringModel(model string) ConfigOption {
	return func(c *Config) {
		c.ScoringModel = model
	}
}

// WithToken sets the service credential.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		ExtractionEndpoint: "http://localhost:8070/analyze",
		GenerationHost:     defaultHost,
		ScoringHost:        defaultHost,
		GenerationModel:    "qwen2.5:3b",
		ScoringModel:       "qwen2.5:3b",
		Token:              "none",
	}
}

// NewConfig creates a Config with the default values and applies the
// provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It adds
// the /v1 suffix to chat hosts if missing, which is required by most
// OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.GenerationHost != "" && !strings.HasSuffix(c.GenerationHost, "/v1") {
		c.GenerationHost = strings.TrimSuffix(c.GenerationHost, "/") + "/v1"
	}
	if c.ScoringHost != "" && !strings.HasSuffix(c.ScoringHost, "/v1") {
		c.ScoringHost = strings.TrimSuffix(c.ScoringHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete,
// naming the missing key in the error. It normalizes first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.ExtractionEndpoint == "" {
		return errors.New("ai config: ExtractionEndpoint is required")
	}
	if c.GenerationHost == "" {
		return errors.New("ai config: GenerationHost is required")
	}
	if c.ScoringHost == "" {
		return errors.New("ai config: ScoringHost is required")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.ScoringModel == "" {
		return errors.New("ai config: ScoringModel is required")
	}
	return nil
}
