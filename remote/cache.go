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


// Package remote provides the shared client cache and the uniform
// retry/backoff policy applied to every outbound call the pipeline makes.
//
// The cache memoizes one *http.Client per distinct endpoint string. The
// first caller for an endpoint constructs the client; all later callers,
// concurrent or sequential, observe the identical instance. Population is
// first-writer-wins and reads of populated entries never take a lock.
package remote

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ClientCache memoizes one HTTP client per remote endpoint, each carrying
// the process-wide credential and the retry policy on its transport.
// The cache is the composition root's single piece of shared mutable
// state; it is injected into each stage rather than held as a global.
type ClientCache struct {
	policy     Policy
	credential string
	clients    sync.Map // endpoint string -> *http.Client
	group      singleflight.Group
	logger     *slog.Logger
}

// NewClientCache creates a cache that builds clients with the given
// credential and retry policy.
func NewClientCache(credential string, policy Policy) *ClientCache {
	return &ClientCache{
		policy:     policy,
		credential: credential,
		logger:     slog.Default().With("component", "client-cache"),
	}
}

// Policy returns the retry policy clients are built with.
func (c *ClientCache) Policy() Policy {
	return c.policy
}

// Get returns the client for the endpoint, constructing it on first use.
// Construction races for the same endpoint resolve to exactly one built
// client; distinct endpoints get distinct clients. An empty endpoint is
// an error.
func (c *ClientCache) Get(endpoint string) (*http.Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrInvalidEndpoint
	}

	// Fast path: populated entries are read lock-free.
	if cached, ok := c.clients.Load(endpoint); ok {
		return cached.(*http.Client), nil
	}

	// Collapse concurrent first-use construction to a single build, then
	// publish first-writer-wins.
	built, _, _ := c.group.Do(endpoint, func() (any, error) {
		if cached, ok := c.clients.Load(endpoint); ok {
			return cached, nil
		}
		c.logger.Debug("building client", "endpoint", endpoint)
		client, _ := c.clients.LoadOrStore(endpoint, c.build())
		return client, nil
	})
	return built.(*http.Client), nil
}

// build constructs a client with the policy's timeouts and the retrying
// transport.
func (c *ClientCache) build() *http.Client {
	dialer := &net.Dialer{Timeout: c.policy.ConnectTimeout}
	base := &http.Transport{
		DialContext:           dialer.DialContext,
		ResponseHeaderTimeout: c.policy.ReadTimeout,
	}
	return &http.Client{
		Timeout:   c.policy.ResponseTimeout,
		Transport: NewTransport(c.policy, c.credential, base),
	}
}
