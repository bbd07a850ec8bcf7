package mock

import (
	"context"
	"strings"

	"github.com/veracue/docflow/ai"
)

// MockExtractor is a test double for ai.Extractor.
// It allows custom behavior injection via function fields.
type MockExtractor struct {
	// ExtractFunc is called by Extract if set.
	// If nil, uses default deterministic behavior.
	ExtractFunc func(ctx context.Context, sourceURL string) (*ai.ExtractedDocument, error)

	// Document is returned by the default behavior when set.
	Document *ai.ExtractedDocument

	callCount int
	lastURL   string
}

// NewMockExtractor creates a mock extractor with default deterministic behavior.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// WithExtractFunc sets a custom extract function and returns the mock for chaining.
func (m *MockExtractor) WithExtractFunc(fn func(ctx context.Context, sourceURL string) (*ai.ExtractedDocument, error)) *MockExtractor {
	m.ExtractFunc = fn
	return m
}

// WithDocument sets the document returned by the default behavior.
func (m *MockExtractor) WithDocument(doc *ai.ExtractedDocument) *MockExtractor {
	m.Document = doc
	return m
}

// Extract returns the configured document, or derives a deterministic
// two-page document from the source URL.
func (m *MockExtractor) Extract(ctx context.Context, sourceURL string) (*ai.ExtractedDocument, error) {
	m.callCount++
	m.lastURL = sourceURL

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, sourceURL)
	}
	if m.Document != nil {
		return m.Document, nil
	}

	name := sourceURL
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return &ai.ExtractedDocument{
		Pages: []ai.Page{
			{Number: 1, Text: "First page of " + name + "."},
			{Number: 2, Text: "Second page of " + name + "."},
		},
	}, nil
}

// CallCount returns the number of times Extract was called.
func (m *MockExtractor) CallCount() int {
	return m.callCount
}

// LastURL returns the source URL of the most recent call.
func (m *MockExtractor) LastURL() string {
	return m.lastURL
}

// Reset clears the call count and injected behavior.
func (m *MockExtractor) Reset() {
	m.callCount = 0
	m.lastURL = ""
	m.ExtractFunc = nil
	m.Document = nil
}
