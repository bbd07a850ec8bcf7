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


package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/veracue/docflow"
	"github.com/veracue/docflow/ai"
	"github.com/veracue/docflow/blob"
	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/ingest"
	"github.com/veracue/docflow/remote"
	"github.com/veracue/docflow/storage"
)

func main() {
	app := &cli.App{
		Name:  "docflow",
		Usage: "Document-QA pipeline: ingest documents, answer queries, score groundedness",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"DOCFLOW_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Process hand-off messages: extract, chunk and store the documents",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags:     append(pipelineFlags(), chunkingFlags()...),
			},
			{
				Name:   "answer",
				Usage:  "Answer a query over ingested chunks and queue it for scoring",
				Action: answerCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "The question to answer",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "prompt",
						Usage: "Optional query-shaping prompt",
					},
					&cli.StringSliceFlag{
						Name:  "filter",
						Usage: "Metadata filter clause key=value (repeatable, AND semantics)",
					},
					&cli.IntFlag{
						Name:    "evidence-limit",
						Usage:   "Maximum evidence chunks sent to the generator",
						Value:   10,
						EnvVars: []string{"DOCFLOW_EVIDENCE_LIMIT"},
					},
					&cli.BoolFlag{
						Name:  "score",
						Usage: "Immediately score the generated answer",
					},
				),
			},
			{
				Name:      "score",
				Usage:     "Score queued or file-provided scoring trigger messages",
				ArgsUsage: "[FILE...]",
				Action:    scoreCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:    "blob-dir",
						Usage:   "Directory blob-reference messages resolve against",
						EnvVars: []string{"DOCFLOW_BLOB_DIR"},
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Show the last recorded processing outcome for a document",
				Action: statusCommand,
				Flags: append(pipelineFlags(),
					&cli.StringFlag{
						Name:     "document-id",
						Usage:    "Document UUID to look up",
						Required: true,
					},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// pipelineFlags are shared by every command that opens the pipeline.
func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to BadgerDB database directory",
			Required: true,
			EnvVars:  []string{"DOCFLOW_DB"},
		},
		&cli.StringFlag{
			Name:    "extraction-endpoint",
			Usage:   "Document-analysis service URL",
			Value:   "http://localhost:8070/analyze",
			EnvVars: []string{"DOCFLOW_EXTRACTION_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "generation-host",
			Usage:   "Answer-generation service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"DOCFLOW_GENERATION_HOST"},
		},
		&cli.StringFlag{
			Name:    "generation-model",
			Usage:   "Answer-generation model name",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"DOCFLOW_GENERATION_MODEL"},
		},
		&cli.StringFlag{
			Name:    "scoring-host",
			Usage:   "Groundedness-scoring service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"DOCFLOW_SCORING_HOST"},
		},
		&cli.StringFlag{
			Name:    "scoring-model",
			Usage:   "Groundedness-scoring model name",
			Value:   "qwen2.5:3b",
			EnvVars: []string{"DOCFLOW_SCORING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "api-token",
			Usage:   "Credential attached to every remote call",
			Value:   "none",
			EnvVars: []string{"DOCFLOW_API_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "storage-account",
			Usage:   "Storage account upload notifications refer to",
			Value:   "docflow",
			EnvVars: []string{"DOCFLOW_STORAGE_ACCOUNT"},
		},
		&cli.StringFlag{
			Name:    "storage-container",
			Usage:   "Storage container upload notifications refer to",
			Value:   "uploads",
			EnvVars: []string{"DOCFLOW_STORAGE_CONTAINER"},
		},
		&cli.IntFlag{
			Name:    "max-retries",
			Usage:   "Maximum retry attempts for remote calls",
			Value:   remote.DefaultMaxRetries,
			EnvVars: []string{"DOCFLOW_MAX_RETRIES"},
		},
		&cli.DurationFlag{
			Name:    "base-delay",
			Usage:   "Base delay for exponential backoff",
			Value:   remote.DefaultBaseDelay,
			EnvVars: []string{"DOCFLOW_BASE_DELAY"},
		},
		&cli.DurationFlag{
			Name:    "max-delay",
			Usage:   "Backoff delay cap",
			Value:   remote.DefaultMaxDelay,
			EnvVars: []string{"DOCFLOW_MAX_DELAY"},
		},
		&cli.DurationFlag{
			Name:    "response-timeout",
			Usage:   "Overall per-request timeout",
			Value:   remote.DefaultResponseTimeout,
			EnvVars: []string{"DOCFLOW_RESPONSE_TIMEOUT"},
		},
		&cli.DurationFlag{
			Name:    "connect-timeout",
			Usage:   "Connection establishment timeout",
			Value:   remote.DefaultConnectTimeout,
			EnvVars: []string{"DOCFLOW_CONNECT_TIMEOUT"},
		},
		&cli.DurationFlag{
			Name:    "read-timeout",
			Usage:   "Response header read timeout",
			Value:   remote.DefaultReadTimeout,
			EnvVars: []string{"DOCFLOW_READ_TIMEOUT"},
		},
	}
}

func chunkingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "chunk-size",
			Usage:   "Maximum chunk length in characters",
			Value:   ingest.DefaultChunkSize,
			EnvVars: []string{"DOCFLOW_CHUNK_SIZE"},
		},
		&cli.IntFlag{
			Name:    "chunk-overlap",
			Usage:   "Overlap between consecutive chunks in characters",
			Value:   ingest.DefaultChunkOverlap,
			EnvVars: []string{"DOCFLOW_CHUNK_OVERLAP"},
		},
	}
}

// openPipeline builds the pipeline from the command's flags.
func openPipeline(c *cli.Context, extra ...docflow.Option) (*docflow.Pipeline, error) {
	aiConfig := ai.NewConfig(
		ai.WithExtractionEndpoint(c.String("extraction-endpoint")),
		ai.WithGenerationHost(c.String("generation-host")),
		ai.WithGenerationModel(c.String("generation-model")),
		ai.WithScoringHost(c.String("scoring-host")),
		ai.WithScoringModel(c.String("scoring-model")),
		ai.WithToken(c.String("api-token")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	policy := remote.NewPolicy(
		remote.WithMaxRetries(c.Int("max-retries")),
		remote.WithBaseDelay(c.Duration("base-delay")),
		remote.WithMaxDelay(c.Duration("max-delay")),
		remote.WithResponseTimeout(c.Duration("response-timeout")),
		remote.WithConnectTimeout(c.Duration("connect-timeout")),
		remote.WithReadTimeout(c.Duration("read-timeout")),
	)

	opts := []docflow.Option{
		docflow.WithAIConfig(aiConfig),
		docflow.WithRetryPolicy(policy),
		docflow.WithSource(core.SourceLocation{
			Account:   c.String("storage-account"),
			Container: c.String("storage-container"),
		}),
	}
	opts = append(opts, extra...)

	return docflow.NewPipeline(c.String("db"), opts...)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one hand-off message file is required")
	}

	pipeline, err := openPipeline(c, docflow.WithChunkingPolicy(ingest.ChunkingPolicy{
		ChunkSize:    c.Int("chunk-size"),
		ChunkOverlap: c.Int("chunk-overlap"),
	}))
	if err != nil {
		return err
	}
	defer pipeline.Close()

	for _, path := range c.Args().Slice() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := pipeline.Ingest(c.Context, raw); err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}
		fmt.Printf("ingested %s\n", path)
	}
	return nil
}

func answerCommand(c *cli.Context) error {
	pipeline, err := openPipeline(c, docflow.WithEvidenceLimit(c.Int("evidence-limit")))
	if err != nil {
		return err
	}
	defer pipeline.Close()

	filter, err := parseFilter(c.StringSlice("filter"))
	if err != nil {
		return err
	}

	payload, err := pipeline.Answer(c.Context, core.QueryRequest{
		Query:  c.String("query"),
		Prompt: c.String("prompt"),
		Filter: filter,
	})
	if err != nil {
		return err
	}

	fmt.Printf("transaction: %s\n", payload.TransactionID)
	fmt.Printf("evidence:    %d chunks\n\n", len(payload.Evidence))
	fmt.Println(payload.Answer)

	if c.Bool("score") {
		if _, err := pipeline.ScoreNext(c.Context); err != nil {
			return err
		}
		score, err := pipeline.GetScore(c.Context, payload.TransactionID)
		if err != nil {
			return err
		}
		fmt.Printf("\ngroundedness: %.0f/10 (%s)\n", score.Score, score.Rationale)
	}
	return nil
}

func scoreCommand(c *cli.Context) error {
	var extra []docflow.Option
	if dir := c.String("blob-dir"); dir != "" {
		extra = append(extra, docflow.WithBlobStore(blob.NewDirectory(dir)))
	}

	pipeline, err := openPipeline(c, extra...)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one scoring message file is required")
	}
	for _, path := range c.Args().Slice() {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := pipeline.Score(c.Context, raw); err != nil {
			return fmt.Errorf("scoring %s: %w", path, err)
		}
		fmt.Printf("scored %s\n", path)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	pipeline, err := openPipeline(c)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	entry, err := pipeline.Status(c.Context, c.String("document-id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fmt.Println("no processing record")
			return nil
		}
		return err
	}

	fmt.Printf("document: %s (%s)\n", entry.DocumentID, entry.DocumentName)
	fmt.Printf("outcome:  %s\n", entry.Outcome)
	if entry.Reason != "" {
		fmt.Printf("reason:   %s\n", entry.Reason)
	}
	fmt.Printf("updated:  %s\n", entry.LastUpdated.Format(time.RFC3339))
	return nil
}

// parseFilter turns repeated key=value flags into an ordered filter.
func parseFilter(clauses []string) (core.MetadataFilter, error) {
	filter := make(core.MetadataFilter, 0, len(clauses))
	for _, clause := range clauses {
		key, value, ok := strings.Cut(clause, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter clause %q: want key=value", clause)
		}
		filter = append(filter, core.FilterClause{Key: key, Value: value})
	}
	return filter, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
