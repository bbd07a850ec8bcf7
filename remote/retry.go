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


package remote

import (
	"context"
	"log/slog"
	"time"
)

// Default retry policy values. All are overridable via options.
const (
	DefaultMaxRetries      = 3
	DefaultBaseDelay       = 1 * time.Second
	DefaultMaxDelay        = 30 * time.Second
	DefaultResponseTimeout = 120 * time.Second
	DefaultConnectTimeout  = 10 * time.Second
	DefaultReadTimeout     = 60 * time.Second
)

// Policy is the uniform retry and timeout configuration applied to every
// outbound call a cached client makes. MaxRetries bounds retry attempts
// (a call is attempted at most MaxRetries+1 times); the backoff between
// attempts is exponential from BaseDelay up to the MaxDelay ceiling.
type Policy struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	ResponseTimeout time.Duration // Total per-call deadline
	ConnectTimeout  time.Duration // Dial deadline
	ReadTimeout     time.Duration // Response-header deadline
}

// PolicyOption overrides a Policy field.
type PolicyOption func(*Policy)

// WithMaxRetries bounds retry attempts.
func WithMaxRetries(n int) PolicyOption {
	return func(p *Policy) {
		if n >= 0 {
			p.MaxRetries = n
		}
	}
}

// WithBaseDelay sets the initial backoff delay.
func WithBaseDelay(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d > 0 {
			p.BaseDelay = d
		}
	}
}

// WithMaxDelay sets the backoff ceiling.
func WithMaxDelay(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d > 0 {
			p.MaxDelay = d
		}
	}
}

// WithResponseTimeout sets the total per-call deadline.
func WithResponseTimeout(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d > 0 {
			p.ResponseTimeout = d
		}
	}
}

// WithConnectTimeout sets the dial deadline.
func WithConnectTimeout(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d > 0 {
			p.ConnectTimeout = d
		}
	}
}

// WithReadTimeout sets the response-header deadline.
func WithReadTimeout(d time.Duration) PolicyOption {
	return func(p *Policy) {
		if d > 0 {
			p.ReadTimeout = d
		}
	}
}

// DefaultPolicy returns a Policy with the default values.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      DefaultMaxRetries,
		BaseDelay:       DefaultBaseDelay,
		MaxDelay:        DefaultMaxDelay,
		ResponseTimeout: DefaultResponseTimeout,
		ConnectTimeout:  DefaultConnectTimeout,
		ReadTimeout:     DefaultReadTimeout,
	}
}

// NewPolicy returns the default Policy with the given options applied.
func NewPolicy(opts ...PolicyOption) Policy {
	p := DefaultPolicy()
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Delay returns the backoff before retry number attempt (1-based):
// BaseDelay * 2^(attempt-1), capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

// RetryWithBackoff retries an operation with exponential backoff.
// maxAttempts: maximum number of attempts (must be > 0)
// baseDelay: base delay between retries (doubles on each retry)
// Returns the error from the last attempt if all attempts fail.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// Check context before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return nil
		}

		slog.Debug("operation failed, will retry", "attempt", attempt, "maxAttempts", maxAttempts, "error", lastErr)

		// Don't sleep after the last attempt
		if attempt == maxAttempts {
			break
		}

		// Exponential backoff: baseDelay * 2^(attempt-1)
		delay := baseDelay
		for i := 1; i < attempt; i++ {
			delay *= 2
		}

		// Sleep with context awareness
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return lastErr
}
