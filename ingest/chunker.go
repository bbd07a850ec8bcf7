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
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
)

// Chunking policy defaults. 4000/500 keeps chunks inside typical model
// context limits while the overlap preserves continuity at boundaries.
const (
	DefaultChunkSize    = 4000
	DefaultChunkOverlap = 500
)

// pageSeparator joins page texts into the document's full text before
// splitting. Chunk offsets are mapped back through it for provenance.
const pageSeparator = "\n\n"

// ChunkingPolicy names the splitting strategy and its parameters.
// The strategy is recursive character splitting, which prefers breaking
// at paragraph, then line, then word boundaries before cutting words.
type ChunkingPolicy struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultChunkingPolicy returns the standard policy.
func DefaultChunkingPolicy() ChunkingPolicy {
	return ChunkingPolicy{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// pageSpan is the half-open offset range a page occupies in the full text.
type pageSpan struct {
	number     int
	start, end int
}

// splitDocument splits an extracted document into chunk records with
// page provenance. A chunk spanning a page boundary records every page
// it touches; documents without page layout produce chunks with an
// empty page set.
func splitDocument(doc *ai.ExtractedDocument, record core.DocumentRecord, policy ChunkingPolicy) ([]*core.ChunkRecord, error) {
	fullText, spans := assemble(doc)
	if strings.TrimSpace(fullText) == "" {
		return nil, nil
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(policy.ChunkSize),
		textsplitter.WithChunkOverlap(policy.ChunkOverlap),
	)
	pieces, err := splitter.SplitText(fullText)
	if err != nil {
		return nil, err
	}

	chunks := make([]*core.ChunkRecord, 0, len(pieces))
	cursor := 0
	for _, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}

		// Overlapping chunks revisit text, so the cursor only advances
		// one rune per chunk rather than a full chunk length.
		offset := strings.Index(fullText[cursor:], piece)
		if offset >= 0 {
			offset += cursor
			cursor = offset + 1
		} else {
			offset = strings.Index(fullText, piece)
		}

		chunks = append(chunks, &core.ChunkRecord{
			DocumentID: record.DocumentID,
			FileName:   record.Name,
			Text:       piece,
			Pages:      pagesFor(spans, offset, len(piece)),
			Metadata:   record.Metadata,
		})
	}
	return chunks, nil
}

// assemble joins page texts and records each page's offset range.
// Unnumbered pages (layout-free sources) contribute text but no span.
func assemble(doc *ai.ExtractedDocument) (string, []pageSpan) {
	var sb strings.Builder
	spans := make([]pageSpan, 0, len(doc.Pages))
	for i, page := range doc.Pages {
		if i > 0 {
			sb.WriteString(pageSeparator)
		}
		start := sb.Len()
		sb.WriteString(page.Text)
		if page.Number > 0 {
			spans = append(spans, pageSpan{number: page.Number, start: start, end: sb.Len()})
		}
	}
	return sb.String(), spans
}

// pagesFor returns the numbers of every page whose span intersects the
// chunk at [offset, offset+length). A negative offset means the chunk
// could not be located and gets no provenance.
func pagesFor(spans []pageSpan, offset, length int) []int {
	if offset < 0 || len(spans) == 0 {
		return nil
	}
	end := offset + length

	var pages []int
	for _, span := range spans {
		if span.start < end && offset < span.end {
			pages = append(pages, span.number)
		}
	}
	return pages
}
