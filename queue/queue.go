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


// Package queue defines the hand-off collaborator between pipeline
// stages. Delivery is at-least-once; consumers must tolerate duplicate
// and out-of-order messages. Binding to a real broker is the hosting
// runtime's concern; the in-memory implementation serves tests and the
// local runner.
package queue

import (
	"context"
	"errors"
	"sync"
)

// ErrEmpty is returned by Receive when no message is waiting.
var ErrEmpty = errors.New("queue: empty")

// Publisher enqueues raw messages for a downstream stage.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) error
}

// Consumer dequeues raw messages. Receive returns ErrEmpty when the
// queue has nothing to deliver.
type Consumer interface {
	Receive(ctx context.Context) ([]byte, error)
}

// Memory is a mutex-backed FIFO queue implementing both Publisher and
// Consumer. Safe for concurrent use.
type Memory struct {
	mu       sync.Mutex
	messages [][]byte
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *Memory {
	return &Memory{}
}

// Publish appends a copy of the payload to the queue.
func (q *Memory) Publish(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	buf := make([]byte, len(payload))
	copy(buf, payload)
	q.messages = append(q.messages, buf)
	return nil
}

// Receive pops the oldest message, or returns ErrEmpty.
func (q *Memory) Receive(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.messages) == 0 {
		return nil, ErrEmpty
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, nil
}

// Len reports the number of queued messages.
func (q *Memory) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages)
}

var (
	_ Publisher = (*Memory)(nil)
	_ Consumer  = (*Memory)(nil)
)
