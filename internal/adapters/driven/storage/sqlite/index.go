package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is one named index inside a Store.
type VectorIndex struct {
	db         *sql.DB
	name       string
	dimensions int
}

const upsertDocument = `
INSERT INTO documents (index_name, id, title, content, category, source, embedding)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(index_name, id) DO UPDATE SET
	title      = excluded.title,
	content    = excluded.content,
	category   = excluded.category,
	source     = excluded.source,
	embedding  = excluded.embedding,
	updated_at = CURRENT_TIMESTAMP`

// EnsureIndex registers the index once. A later call with different
// dimensions keeps the stored size and logs a warning.
func (x *VectorIndex) EnsureIndex(ctx context.Context) error {
	stored, err := x.storedDimensions(ctx)
	if err == nil {
		if stored != x.dimensions {
			logger.Warn("Index %q was created with %d dimensions, configured %d", x.name, stored, x.dimensions)
		}
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if _, err := x.db.ExecContext(ctx,
		"INSERT INTO indexes (name, dimensions) VALUES (?, ?)", x.name, x.dimensions); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	logger.Info("Created index %q (%d dimensions)", x.name, x.dimensions)
	return nil
}

// Upsert writes all documents or none. Every embedding must match both the
// configured and the stored dimensions.
func (x *VectorIndex) Upsert(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := driven.CheckEmbeddings(docs, x.dimensions); err != nil {
		return err
	}
	// The index keeps the size it was created with, whatever is configured now.
	stored, err := x.storedDimensions(ctx)
	if err != nil {
		return err
	}
	if err := driven.CheckEmbeddings(docs, stored); err != nil {
		return err
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertDocument)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, x.name, d.ID, d.Title, d.Content, d.Category, d.Source,
			encodeVector(d.Embedding)); err != nil {
			return fmt.Errorf("upserting document %q: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

// Search scores every document in the index against vector and returns
// the best topK, without their embeddings.
func (x *VectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if len(vector) != x.dimensions {
		return nil, domain.NewDimensionError("query", len(vector), x.dimensions)
	}
	stored, err := x.storedDimensions(ctx)
	if err != nil {
		return nil, err
	}
	if len(vector) != stored {
		return nil, domain.NewDimensionError("query", len(vector), stored)
	}

	docs, err := x.documents(ctx)
	if err != nil {
		return nil, err
	}

	hits := domain.RankByCosine(vector, docs, topK)
	for i := range hits {
		hits[i].Document.Embedding = nil
	}
	return hits, nil
}

func (x *VectorIndex) documents(ctx context.Context) ([]domain.Document, error) {
	rows, err := x.db.QueryContext(ctx, `SELECT id, title, content, category, source, embedding
		FROM documents WHERE index_name = ? ORDER BY id`, x.name)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var (
			d    domain.Document
			blob []byte
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.Category, &d.Source, &blob); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		d.Embedding = decodeVector(blob)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Count returns the number of documents stored under this index.
func (x *VectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := x.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE index_name = ?", x.name).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return n, nil
}

// Close does nothing; the Store owns the connection.
func (x *VectorIndex) Close() error { return nil }

// storedDimensions returns domain.ErrNotFound until EnsureIndex has run.
func (x *VectorIndex) storedDimensions(ctx context.Context) (int, error) {
	var dims int
	err := x.db.QueryRowContext(ctx, "SELECT dimensions FROM indexes WHERE name = ?", x.name).Scan(&dims)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("%w: index %q", domain.ErrNotFound, x.name)
	case err != nil:
		return 0, fmt.Errorf("querying index: %w", err)
	}
	return dims, nil
}

// encodeVector packs v as little-endian float32s.
func encodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := make([]byte, 0, 4*len(v))
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}
