// Package chromem implements driven.VectorIndex on an embedded chromem-go
// database, persisted to disk when a path is given.
package chromem

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Metadata keys stored alongside each document.
const (
	metaTitle    = "title"
	metaCategory = "category"
	metaSource   = "source"
)

// errNoEmbedder is returned if chromem is ever asked to embed by itself.
var errNoEmbedder = errors.New("chromem: documents must be embedded before upsert")

// Config holds configuration for the chromem index.
type Config struct {
	// Path is the persistence directory. Empty keeps the database in memory.
	Path string

	// Collection is the collection name.
	Collection string

	// Dimensions is the expected embedding vector size.
	Dimensions int
}

// VectorIndex stores documents in a chromem collection.
type VectorIndex struct {
	mu         sync.Mutex
	db         *chromem.DB
	name       string
	dimensions int
	collection *chromem.Collection
}

// NewVectorIndex opens (or creates) the chromem database.
func NewVectorIndex(cfg Config) (*VectorIndex, error) {
	if cfg.Collection == "" {
		return nil, domain.NewConfigurationError("", "index.name")
	}
	if cfg.Dimensions <= 0 {
		return nil, domain.NewConfigurationError("dimensions must be positive", "embedding.dimensions")
	}

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	return &VectorIndex{db: db, name: cfg.Collection, dimensions: cfg.Dimensions}, nil
}

// noEmbedding stops chromem falling back to its default OpenAI embedder.
func noEmbedding(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

// EnsureIndex creates the collection only when it does not exist.
func (x *VectorIndex) EnsureIndex(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if c := x.db.GetCollection(x.name, noEmbedding); c != nil {
		x.collection = c
		logger.Debug("Collection %q exists (%d documents)", x.name, c.Count())
		return nil
	}

	c, err := x.db.CreateCollection(x.name, map[string]string{"hnsw:space": "cosine"}, noEmbedding)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	x.collection = c
	logger.Info("Created collection %q", x.name)
	return nil
}

// open returns the collection, looking it up if EnsureIndex was not called
// in this process.
func (x *VectorIndex) open() (*chromem.Collection, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.collection == nil {
		x.collection = x.db.GetCollection(x.name, noEmbedding)
	}
	if x.collection == nil {
		return nil, fmt.Errorf("%w: collection %q", domain.ErrNotFound, x.name)
	}
	return x.collection, nil
}

// Upsert adds the documents; chromem replaces documents with the same ID.
func (x *VectorIndex) Upsert(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := driven.CheckEmbeddings(docs, x.dimensions); err != nil {
		return err
	}
	c, err := x.open()
	if err != nil {
		return err
	}

	ids := make([]string, len(docs))
	vectors := make([][]float32, len(docs))
	metadatas := make([]map[string]string, len(docs))
	contents := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		// chromem normalises vectors in place.
		vectors[i] = append([]float32(nil), d.Embedding...)
		metadatas[i] = map[string]string{
			metaTitle:    d.Title,
			metaCategory: d.Category,
			metaSource:   d.Source,
		}
		contents[i] = d.Content
	}

	if err := c.Add(ctx, ids, vectors, metadatas, contents); err != nil {
		return fmt.Errorf("add documents: %w", err)
	}
	return nil
}

// Search queries the collection by embedding.
func (x *VectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if len(vector) != x.dimensions {
		return nil, domain.NewDimensionError("query", len(vector), x.dimensions)
	}
	c, err := x.open()
	if err != nil {
		return nil, err
	}

	// chromem rejects n greater than the collection size.
	n := min(topK, c.Count())
	if n <= 0 {
		return []domain.SearchHit{}, nil
	}

	results, err := c.QueryEmbedding(ctx, append([]float32(nil), vector...), n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	hits := make([]domain.SearchHit, len(results))
	for i, r := range results {
		hits[i] = domain.SearchHit{
			Document: domain.Document{
				ID:       r.ID,
				Title:    r.Metadata[metaTitle],
				Content:  r.Content,
				Category: r.Metadata[metaCategory],
				Source:   r.Metadata[metaSource],
			},
			Score: float64(r.Similarity),
		}
	}
	return hits, nil
}

// Count returns the number of stored documents, or 0 before EnsureIndex.
func (x *VectorIndex) Count() int {
	c, err := x.open()
	if err != nil {
		return 0
	}
	return c.Count()
}

// Close releases resources. Persistent databases write on every change.
func (x *VectorIndex) Close() error {
	return nil
}
