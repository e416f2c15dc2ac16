package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

func sampleDocs() []domain.Document {
	return []domain.Document{
		{ID: "a", Title: "Alpha", Content: "alpha text", Category: "x", Source: "s1", Embedding: []float32{1, 0, 0}},
		{ID: "b", Title: "Beta", Content: "beta text", Category: "y", Source: "s2", Embedding: []float32{0, 1, 0}},
		{ID: "c", Title: "Gamma", Content: "gamma text", Category: "z", Source: "s3", Embedding: []float32{0.7, 0.7, 0}},
	}
}

func newIndex(t *testing.T, path string) *VectorIndex {
	t.Helper()
	idx, err := NewVectorIndex(Config{Path: path, Collection: "docs", Dimensions: 3})
	require.NoError(t, err)
	return idx
}

func TestNewVectorIndex_Configuration(t *testing.T) {
	_, err := NewVectorIndex(Config{Dimensions: 3})
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = NewVectorIndex(Config{Collection: "docs"})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEnsureIndex_Idempotent(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")

	require.NoError(t, idx.EnsureIndex(ctx))
	require.NoError(t, idx.Upsert(ctx, sampleDocs()))
	require.NoError(t, idx.EnsureIndex(ctx))

	assert.Equal(t, 3, idx.Count())
}

func TestUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.EnsureIndex(ctx))
	require.NoError(t, idx.Upsert(ctx, sampleDocs()))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)

	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].Document.ID)
	assert.Equal(t, "Alpha", hits[0].Document.Title)
	assert.Equal(t, "x", hits[0].Document.Category)
	assert.Equal(t, "s1", hits[0].Document.Source)
	assert.Equal(t, "c", hits[1].Document.ID)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestSearch_TopKLargerThanCollection(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.EnsureIndex(ctx))
	require.NoError(t, idx.Upsert(ctx, sampleDocs()[:1]))

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 10)

	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearch_EmptyCollection(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.EnsureIndex(ctx))

	hits, err := idx.Search(ctx, []float32{0, 1, 0}, 3)

	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestUpsert_ReplacesByID(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.EnsureIndex(ctx))
	require.NoError(t, idx.Upsert(ctx, sampleDocs()))

	updated := sampleDocs()[0]
	updated.Title = "Alpha v2"
	require.NoError(t, idx.Upsert(ctx, []domain.Document{updated}))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Count())
	assert.Equal(t, "Alpha v2", hits[0].Document.Title)
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.EnsureIndex(ctx))

	err := idx.Upsert(ctx, []domain.Document{{ID: "a", Embedding: []float32{1}}})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Zero(t, idx.Count())
}

func TestUpsert_DoesNotNormaliseCallerVector(t *testing.T) {
	ctx := context.Background()
	idx := newIndex(t, "")
	require.NoError(t, idx.EnsureIndex(ctx))

	docs := []domain.Document{{ID: "a", Embedding: []float32{3, 4, 0}}}
	require.NoError(t, idx.Upsert(ctx, docs))

	assert.Equal(t, []float32{3, 4, 0}, docs[0].Embedding)
}

func TestUpsert_BeforeEnsureIndex(t *testing.T) {
	idx := newIndex(t, "")

	err := idx.Upsert(context.Background(), sampleDocs())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := newIndex(t, dir)
	require.NoError(t, first.EnsureIndex(ctx))
	require.NoError(t, first.Upsert(ctx, sampleDocs()))
	require.NoError(t, first.Close())

	second := newIndex(t, dir)
	require.NoError(t, second.EnsureIndex(ctx))
	hits, err := second.Search(ctx, []float32{0, 1, 0}, 1)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b", hits[0].Document.ID)
}
