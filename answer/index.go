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


// Package answer implements the retrieval and answer stage: it ranks
// stored chunks against a query, generates an answer grounded in the
// top evidence, and hands the result off for groundedness scoring.
package answer

import (
	"context"
	"sort"
	"strings"

	"github.com/veracue/docflow/core"
	"github.com/veracue/docflow/storage"
)

// Index ranks stored chunks for a query. Production deployments bind an
// external search service here; RepositoryIndex serves local use.
type Index interface {
	// Search returns the chunks most relevant to the query that satisfy
	// the metadata filter, best first, at most limit entries. Returned
	// chunks carry their relevance score.
	Search(ctx context.Context, query string, filter core.MetadataFilter, limit int) ([]*core.ChunkRecord, error)
}

// RepositoryIndex ranks chunks straight out of the chunk repository
// using lexical term overlap. It trades ranking quality for zero
// external dependencies.
type RepositoryIndex struct {
	repo storage.ChunkRepository
}

// NewRepositoryIndex creates an index over the chunk repository.
func NewRepositoryIndex(repo storage.ChunkRepository) *RepositoryIndex {
	return &RepositoryIndex{repo: repo}
}

// Search scores every candidate chunk by the fraction of query terms it
// contains and returns the top entries. Chunks scoring zero are dropped.
func (idx *RepositoryIndex) Search(ctx context.Context, query string, filter core.MetadataFilter, limit int) ([]*core.ChunkRecord, error) {
	candidates, err := idx.repo.Candidates(ctx, filter, 0)
	if err != nil {
		return nil, err
	}

	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}

	scored := make([]*core.ChunkRecord, 0, len(candidates))
	for _, chunk := range candidates {
		score := overlapScore(chunk.Text, terms)
		if score == 0 {
			continue
		}
		chunk.Score = &score
		scored = append(scored, chunk)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return *scored[i].Score > *scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// queryTerms lowercases and splits the query into distinct terms.
func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// overlapScore is the fraction of query terms present in the text.
func overlapScore(text string, terms []string) float64 {
	lower := strings.ToLower(text)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

var _ Index = (*RepositoryIndex)(nil)
