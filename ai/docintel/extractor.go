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


// Package docintel implements document text extraction against an HTTP
// document-analysis service. The service receives the source URL of a
// raw document and returns its text broken down by page.
package docintel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/remote"
)

// Extractor implements ai.Extractor over the document-analysis HTTP API.
type Extractor struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// analyzeRequest is the wire request sent to the analysis service.
type analyzeRequest struct {
	URL string `json:"url"`
}

// analyzeResponse is the wire response. Services that know the source's
// page layout populate pages; plain-text sources return only text.
type analyzeResponse struct {
	Pages []ai.Page `json:"pages"`
	Text  string    `json:"text"`
}

// NewExtractor creates an extractor for the configured analysis
// endpoint. Its HTTP client comes from the shared cache, so calls
// inherit the process-wide credential and retry policy.
//
// Returns ai.Extractor interface to enforce abstraction.
func NewExtractor(config *ai.Config, cache *remote.ClientCache) (ai.Extractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := cache.Get(config.ExtractionEndpoint)
	if err != nil {
		return nil, err
	}

	return &Extractor{
		endpoint: config.ExtractionEndpoint,
		client:   client,
		logger:   slog.Default().With("component", "docintel-extractor"),
	}, nil
}

// Extract submits the source URL to the analysis service and decodes the
// extracted pages. Plain-text sources come back as a single unnumbered page.
func (e *Extractor) Extract(ctx context.Context, sourceURL string) (*ai.ExtractedDocument, error) {
	if strings.TrimSpace(sourceURL) == "" {
		return nil, fmt.Errorf("extract: source URL is empty")
	}

	body, err := json.Marshal(analyzeRequest{URL: sourceURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Bounded read keeps a misbehaving service from blowing up the error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extract: analysis service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("extract: decoding analysis response: %w", err)
	}

	doc := &ai.ExtractedDocument{Pages: decoded.Pages}
	if len(doc.Pages) == 0 && decoded.Text != "" {
		doc.Pages = []ai.Page{{Number: 0, Text: decoded.Text}}
	}

	e.logger.Debug("extracted document", "url", sourceURL, "pages", len(doc.Pages))
	return doc, nil
}
