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


// Package telemetry publishes per-transaction score events. The scoring
// stage emits exactly one event per stored score record; redeliveries
// that hit the dedupe guard emit nothing.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ScoreEvent is the payload published after a groundedness score is stored.
type ScoreEvent struct {
	TransactionID string
	Score         float64
	UserQuery     string
}

// Publisher emits score events to an observability backend.
type Publisher interface {
	PublishScore(ctx context.Context, event ScoreEvent) error
}

// OTel publishes score events as OpenTelemetry spans: one span per
// scored transaction, carrying the score and query as attributes plus a
// score event.
type OTel struct {
	tracer trace.Tracer
}

// NewOTel creates a publisher on the named tracer from the global
// tracer provider.
func NewOTel(serviceName string) *OTel {
	return &OTel{tracer: otel.Tracer(serviceName)}
}

// PublishScore records one span for the scored transaction.
func (p *OTel) PublishScore(ctx context.Context, event ScoreEvent) error {
	_, span := p.tracer.Start(ctx, "docflow.score",
		trace.WithAttributes(
			attribute.String("docflow.transaction_id", event.TransactionID),
			attribute.Float64("docflow.score", event.Score),
			attribute.String("docflow.user_query", event.UserQuery),
		))
	defer span.End()

	span.AddEvent("groundedness.scored", trace.WithAttributes(
		attribute.Float64("score", event.Score),
	))
	return nil
}

// Recorder captures events in memory for tests. Safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []ScoreEvent
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// PublishScore appends the event.
func (r *Recorder) PublishScore(ctx context.Context, event ScoreEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (r *Recorder) Events() []ScoreEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ScoreEvent, len(r.events))
	copy(out, r.events)
	return out
}

var (
	_ Publisher = (*OTel)(nil)
	_ Publisher = (*Recorder)(nil)
)
