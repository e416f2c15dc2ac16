package driven

import "github.com/custodia-labs/ailab/internal/core/domain"

// DatasetStore reads and writes tabular datasets.
type DatasetStore interface {
	// Load reads the dataset at path. The first record is the header.
	Load(path string) (*domain.Dataset, error)

	// Save writes the dataset to path, header first.
	Save(path string, ds *domain.Dataset) error
}

// DocumentLoader reads knowledge-base documents from a file.
type DocumentLoader interface {
	// Load returns the documents in file order.
	Load(path string) ([]domain.Document, error)
}

// TokenCounter estimates the token cost of a prompt.
type TokenCounter interface {
	// Count returns the number of tokens in text.
	Count(text string) int
}
