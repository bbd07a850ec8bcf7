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


// Package ingest implements the front half of the pipeline: the upload
// validator that classifies inbound upload notifications and hands
// accepted documents off for chunking, and the chunking pipeline that
// extracts text, splits it into overlapping chunks with page
// provenance, and persists the chunk set.
//
// Both are safe under at-least-once delivery: the validator produces
// the same disposition for a duplicate notification, and the pipeline's
// chunk writes are full-document replacements keyed by content-based
// IDs, so re-processing a document converges on the same stored state.
package ingest
