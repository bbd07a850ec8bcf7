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


package core

import "errors"

// Domain error taxonomy. Validation errors are terminal and recorded as
// status; parsing errors propagate so the delivery mechanism can
// dead-letter; scoring service errors mean the remote judgment could not
// be used.
var (
	// ErrMissingDocumentID indicates upload metadata without a document_id field.
	ErrMissingDocumentID = errors.New("document_id missing from metadata")

	// ErrInvalidDocumentID indicates a document_id that is not a well-formed UUID.
	ErrInvalidDocumentID = errors.New("document_id is not a well-formed UUID")

	// ErrParsing indicates an inbound message that is not valid structured data.
	ErrParsing = errors.New("message parsing failed")

	// ErrDocumentProcessing indicates extraction or chunking failed for a document.
	ErrDocumentProcessing = errors.New("document processing failed")

	// ErrRetrieval indicates the remote generation call failed during answering.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrScoringService indicates the remote scorer returned an unusable response.
	ErrScoringService = errors.New("scoring service error")

	// ErrEmptyQuery indicates an answer or scoring payload without query text.
	ErrEmptyQuery = errors.New("user query cannot be empty")

	// ErrEmptyAnswer indicates a scoring payload without answer text.
	ErrEmptyAnswer = errors.New("answer text cannot be empty")
)
