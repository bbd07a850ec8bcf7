package ai

import (
	"fmt"
	"strings"

	"github.com/veracue/docflow/core"
)

// Page is one page of extracted document text.
type Page struct {
	// Number is the 1-based page number, or 0 when the source has no
	// page layout.
	Number int `json:"number"`

	// Text is the extracted text of the page.
	Text string `json:"text"`
}

// ExtractedDocument is the result of analyzing a raw document.
type ExtractedDocument struct {
	Pages []Page `json:"pages"`
}

// FullText joins the page texts into the document's complete text, in
// page order, separated by blank lines.
func (d *ExtractedDocument) FullText() string {
	texts := make([]string, len(d.Pages))
	for i, page := range d.Pages {
		texts[i] = page.Text
	}
	return strings.Join(texts, "\n\n")
}

// Judgment is a remote scorer's verdict on one answer.
type Judgment struct {
	Score     float64
	Rationale string
}

// SerializeEvidence renders evidence chunks into the deterministic text
// block sent to the generation and scoring services. Chunks appear in
// the order supplied, each tagged with its source file and page.
func SerializeEvidence(evidence []*core.ChunkRecord) string {
	var sb strings.Builder
	for i, chunk := range evidence {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s", i+1, chunk.FileName)
		if len(chunk.Pages) > 0 {
			pages := make([]string, len(chunk.Pages))
			for j, p := range chunk.Pages {
				pages[j] = fmt.Sprintf("%d", p)
			}
			fmt.Fprintf(&sb, " (page %s)", strings.Join(pages, ", "))
		}
		sb.WriteString("\n")
		sb.WriteString(chunk.Text)
	}
	return sb.String()
}
