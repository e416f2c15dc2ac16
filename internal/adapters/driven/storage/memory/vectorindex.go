package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Search is a brute-force cosine scan. Contents are lost on exit.
type VectorIndex struct {
	mu         sync.RWMutex
	dimensions int
	order      []string
	documents  map[string]domain.Document
	created    bool
}

// NewVectorIndex creates an empty index. A zero dimensions accepts any
// vector length.
func NewVectorIndex(dimensions int) *VectorIndex {
	return &VectorIndex{
		dimensions: dimensions,
		documents:  make(map[string]domain.Document),
	}
}

// EnsureIndex marks the index as created.
func (v *VectorIndex) EnsureIndex(_ context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.created = true
	return nil
}

// Created reports whether EnsureIndex has been called.
func (v *VectorIndex) Created() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.created
}

// Upsert stores documents, replacing any with the same ID in place.
func (v *VectorIndex) Upsert(_ context.Context, docs []domain.Document) error {
	if v.dimensions > 0 {
		if err := driven.CheckEmbeddings(docs, v.dimensions); err != nil {
			return err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range docs {
		doc := docs[i].WithEmbedding(docs[i].Embedding)
		if _, exists := v.documents[doc.ID]; !exists {
			v.order = append(v.order, doc.ID)
		}
		v.documents[doc.ID] = doc
	}
	return nil
}

// Search returns the topK most similar documents.
func (v *VectorIndex) Search(_ context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if v.dimensions > 0 && len(vector) != v.dimensions {
		return nil, domain.NewDimensionError("query", len(vector), v.dimensions)
	}

	v.mu.RLock()
	docs := make([]domain.Document, 0, len(v.order))
	for _, id := range v.order {
		docs = append(docs, v.documents[id])
	}
	v.mu.RUnlock()

	return domain.RankByCosine(vector, docs, topK), nil
}

// Count returns the number of stored documents.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.order)
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
