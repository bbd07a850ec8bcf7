package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/core"
)

func testHandoff() *core.HandoffMessage {
	return &core.HandoffMessage{
		DocumentID: testDocumentID,
		Metadata:   map[string]string{"department": "finance"},
		BlobURL:    "https://acct.blob.core.windows.net/docs/report.pdf",
	}
}

func TestSplitDocument_SinglePage(t *testing.T) {
	doc := &ai.ExtractedDocument{Pages: []ai.Page{
		{Number: 1, Text: "Revenue grew 12% in fiscal 2024."},
	}}

	chunks, err := splitDocument(doc, testHandoff().Document(), DefaultChunkingPolicy())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []int{1}, chunks[0].Pages)
	assert.Equal(t, "report.pdf", chunks[0].FileName)
	assert.Equal(t, testDocumentID, chunks[0].DocumentID)
}

func TestSplitDocument_ChunkSpanningPages(t *testing.T) {
	// Two pages of continuous prose with a tiny chunk size force chunks
	// across the page boundary.
	doc := &ai.ExtractedDocument{Pages: []ai.Page{
		{Number: 1, Text: strings.Repeat("alpha beta gamma delta. ", 20)},
		{Number: 2, Text: strings.Repeat("epsilon zeta eta theta. ", 20)},
	}}

	chunks, err := splitDocument(doc, testHandoff().Document(), ChunkingPolicy{ChunkSize: 300, ChunkOverlap: 50})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	seen := make(map[int]bool)
	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.Pages, "every chunk of a paged document has provenance")
		for _, p := range chunk.Pages {
			seen[p] = true
		}
	}
	assert.True(t, seen[1] && seen[2], "both pages attributed across the chunk set")
}

func TestSplitDocument_LayoutFreeSource(t *testing.T) {
	doc := &ai.ExtractedDocument{Pages: []ai.Page{
		{Number: 0, Text: "plain text with no page layout"},
	}}

	chunks, err := splitDocument(doc, testHandoff().Document(), DefaultChunkingPolicy())
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Pages)
}

func TestSplitDocument_EmptyDocument(t *testing.T) {
	chunks, err := splitDocument(&ai.ExtractedDocument{}, testHandoff().Document(), DefaultChunkingPolicy())
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitDocument_OverlapPreserved(t *testing.T) {
	text := strings.Repeat("one two three four five six seven eight nine ten. ", 30)
	doc := &ai.ExtractedDocument{Pages: []ai.Page{{Number: 1, Text: text}}}

	chunks, err := splitDocument(doc, testHandoff().Document(), ChunkingPolicy{ChunkSize: 200, ChunkOverlap: 60})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 200)
	}
}
