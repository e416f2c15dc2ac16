package driving

import (
	"context"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// RAGService answers questions from an indexed knowledge base.
type RAGService interface {
	// EnsureIndex creates the vector index if it is missing.
	EnsureIndex(ctx context.Context) error

	// Ingest embeds every document, then upserts them in one batch.
	// Returns the embedded copies in input order. Nothing is written if any
	// embedding fails.
	Ingest(ctx context.Context, docs []domain.Document) ([]domain.Document, error)

	// Query retrieves up to topK documents and generates a grounded answer.
	// A topK of zero or less uses the configured default.
	Query(ctx context.Context, question string, topK int) (*domain.Answer, error)

	// Search returns the raw nearest-neighbour hits for text.
	Search(ctx context.Context, text string, topK int) ([]domain.SearchHit, error)
}

// ChatService sends a single question to the completion service.
type ChatService interface {
	// Ask returns the model's answer, or the fallback when nothing was generated.
	Ask(ctx context.Context, question string) (string, error)
}
