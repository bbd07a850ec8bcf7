package openai

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/veracue/docflow/core"
)

func newTestGenerator(model llms.Model) *Generator {
	return &Generator{client: model, logger: slog.Default()}
}

func TestGenerator_Answer(t *testing.T) {
	model := &fakeModel{responses: []string{"  Revenue grew 12% in fiscal 2024.\n"}}
	gen := newTestGenerator(model)

	answer, err := gen.Generate(context.Background(),
		"How much did revenue grow?", "Answer concisely.", testEvidence())
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12% in fiscal 2024.", answer)
}

func TestGenerator_EmptyQuery(t *testing.T) {
	gen := newTestGenerator(&fakeModel{responses: []string{"unused"}})

	_, err := gen.Generate(context.Background(), "   ", "", testEvidence())
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestGenerator_BlankContent(t *testing.T) {
	gen := newTestGenerator(&fakeModel{responses: []string{"   "}})

	_, err := gen.Generate(context.Background(), "q", "", testEvidence())
	assert.ErrorIs(t, err, core.ErrEmptyAnswer)
}
