// Package memory provides an in-memory vector index with brute-force
// cosine similarity search. Suitable for tests and small corpora; the
// index is lost on process exit.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	doc       domain.LawDocument
	embedding []float32
}

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewIndex creates a new in-memory vector index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]entry),
	}
}

// Save stores or updates a document with its embedding.
func (idx *Index) Save(_ context.Context, doc domain.LawDocument, embedding []float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	idx.entries[doc.ID] = entry{doc: doc, embedding: vec}
	return nil
}

// Search returns up to topK documents ordered by descending cosine
// similarity to the query embedding. Ties break by document id so the
// ordering is deterministic.
func (idx *Index) Search(_ context.Context, embedding []float32, topK int) ([]domain.LawDocument, error) {
	if topK <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	type scored struct {
		doc   domain.LawDocument
		score float64
	}
	candidates := make([]scored, 0, len(idx.entries))
	for _, e := range idx.entries {
		candidates = append(candidates, scored{doc: e.doc, score: cosine(embedding, e.embedding)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].doc.ID < candidates[j].doc.ID
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]domain.LawDocument, topK)
	for i := 0; i < topK; i++ {
		results[i] = candidates[i].doc
	}
	return results, nil
}

// GetByID retrieves a document by id.
func (idx *Index) GetByID(_ context.Context, id string) (*domain.LawDocument, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	e, ok := idx.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := e.doc
	return &doc, nil
}

// Delete removes a document, reporting whether it was present.
func (idx *Index) Delete(_ context.Context, id string) (bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	_, ok := idx.entries[id]
	delete(idx.entries, id)
	return ok, nil
}

// ListIDs returns all document ids.
func (idx *Index) ListIDs(_ context.Context) ([]string, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	ids := make([]string, 0, len(idx.entries))
	for id := range idx.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Count returns the number of indexed documents.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries), nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// cosine computes cosine similarity between two vectors. Mismatched or
// zero-length vectors score zero.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
