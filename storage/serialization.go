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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/veracue/docflow/core"
)

// Stored values use the same JSON encoding as the wire messages, so a
// record read from storage and a record read from a queue decode the
// same way.

// MarshalChunkRecord serializes a ChunkRecord to bytes.
func MarshalChunkRecord(chunk *core.ChunkRecord) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalChunkRecord deserializes a ChunkRecord from bytes.
func UnmarshalChunkRecord(data []byte) (*core.ChunkRecord, error) {
	var chunk core.ChunkRecord
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalStatusEntry serializes a StatusEntry to bytes.
func MarshalStatusEntry(entry *core.StatusEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalStatusEntry deserializes a StatusEntry from bytes.
func UnmarshalStatusEntry(data []byte) (*core.StatusEntry, error) {
	var entry core.StatusEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &entry, nil
}

// MarshalModelScore serializes a ModelScore to bytes.
func MarshalModelScore(score *core.ModelScore) ([]byte, error) {
	data, err := json.Marshal(score)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalModelScore deserializes a ModelScore from bytes.
func UnmarshalModelScore(data []byte) (*core.ModelScore, error) {
	var score core.ModelScore
	if err := json.Unmarshal(data, &score); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &score, nil
}
