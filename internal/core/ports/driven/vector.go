package driven

import (
	"context"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// VectorIndex stores documents with their embeddings and answers
// nearest-neighbour queries. Ranking is delegated to the backend.
type VectorIndex interface {
	// EnsureIndex creates the index when it does not exist.
	// An existing index is never modified, so calling it twice is a no-op.
	EnsureIndex(ctx context.Context) error

	// Upsert writes the documents in one batch, replacing any with the same ID.
	// Every document must carry an embedding of the configured dimension,
	// otherwise domain.ErrDimensionMismatch is returned and nothing is written.
	Upsert(ctx context.Context, docs []domain.Document) error

	// Search returns at most topK hits ordered by descending similarity.
	Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error)

	// Close releases resources.
	Close() error
}

// CheckEmbeddings verifies every document carries a vector of length dims.
// Adapters call it before writing anything.
func CheckEmbeddings(docs []domain.Document, dims int) error {
	for i := range docs {
		if len(docs[i].Embedding) != dims {
			return domain.NewDimensionError(docs[i].ID, len(docs[i].Embedding), dims)
		}
	}
	return nil
}
