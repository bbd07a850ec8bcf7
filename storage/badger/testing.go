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


package badger

import "github.com/veracue/docflow/storage"

// NewMemoryRepositories creates in-memory chunk, status and score
// repositories for testing. Caller must close the repos and backend when
// done.
func NewMemoryRepositories() (storage.ChunkRepository, storage.StatusRepository, storage.ScoreRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	chunkRepo, err := NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	statusRepo := NewStatusRepository(backend)
	scoreRepo := NewScoreRepository(backend)

	return chunkRepo, statusRepo, scoreRepo, backend, nil
}
