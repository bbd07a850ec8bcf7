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


// Package ai provides abstractions for the remote capabilities the
// pipeline delegates to: document text extraction, answer generation,
// and groundedness scoring.
//
// The pipeline stages depend only on these interfaces. Implementation
// sub-packages supply the concrete clients:
//
//   - ai/openai: generation and scoring via OpenAI-compatible chat APIs
//   - ai/docintel: text extraction via an HTTP document-analysis service
//   - ai/mock: deterministic test doubles
//
// All implementations must be safe for concurrent use; retry and
// timeout behavior comes from the shared remote client cache their
// HTTP clients are built by, never from per-stage retry loops.
package ai
