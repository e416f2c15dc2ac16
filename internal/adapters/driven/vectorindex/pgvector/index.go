// Package pgvector implements driven.VectorIndex on PostgreSQL with the
// pgvector extension.
package pgvector

import (
	"context"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

const serviceName = "pgvector"

// tableNamePattern limits index names to plain identifiers.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]{0,62}$`)

// Config holds configuration for the pgvector index.
type Config struct {
	// DSN is the PostgreSQL connection string.
	DSN string

	// Table is the table holding the documents.
	Table string

	// Dimensions is the vector column size.
	Dimensions int
}

// VectorIndex stores documents in one table with a vector column.
type VectorIndex struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
}

// NewVectorIndex connects to PostgreSQL and verifies the connection.
func NewVectorIndex(ctx context.Context, cfg Config) (*VectorIndex, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, domain.NewConfigurationError(err.Error(), "index.dsn")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, domain.NewUpstreamError(serviceName, "connect", 0, err)
	}

	return &VectorIndex{
		pool:       pool,
		table:      pgx.Identifier{cfg.Table}.Sanitize(),
		dimensions: cfg.Dimensions,
	}, nil
}

func validate(cfg Config) error {
	var missing []string
	if cfg.DSN == "" {
		missing = append(missing, "index.dsn")
	}
	if !tableNamePattern.MatchString(cfg.Table) {
		missing = append(missing, "index.name")
	}
	if len(missing) > 0 {
		return domain.NewConfigurationError("pgvector", missing...)
	}
	if cfg.Dimensions <= 0 {
		return domain.NewConfigurationError("dimensions must be positive", "embedding.dimensions")
	}
	return nil
}

// EnsureIndex creates the extension, the table and its HNSW index when the
// table does not exist yet.
func (x *VectorIndex) EnsureIndex(ctx context.Context) error {
	var exists bool
	if err := x.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", x.table).Scan(&exists); err != nil {
		return domain.NewUpstreamError(serviceName, "get index", 0, err)
	}
	if exists {
		logger.Debug("Table %s exists", x.table)
		return nil
	}

	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS %[1]s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			embedding vector(%[2]d) NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS %[3]s ON %[1]s USING hnsw (embedding vector_cosine_ops);
	`, x.table, x.dimensions, pgx.Identifier{indexName(x.table)}.Sanitize())

	if _, err := x.pool.Exec(ctx, ddl); err != nil {
		return domain.NewUpstreamError(serviceName, "create index", 0, err)
	}
	logger.Info("Created table %s (%d dimensions)", x.table, x.dimensions)
	return nil
}

// Upsert writes all documents in one transaction.
func (x *VectorIndex) Upsert(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := driven.CheckEmbeddings(docs, x.dimensions); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, category, source, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			embedding = EXCLUDED.embedding,
			updated_at = now()
	`, x.table)

	batch := &pgx.Batch{}
	for _, d := range docs {
		batch.Queue(query, d.ID, d.Title, d.Content, d.Category, d.Source, pgvector.NewVector(d.Embedding))
	}

	err := pgx.BeginFunc(ctx, x.pool, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return domain.NewUpstreamError(serviceName, "upsert", 0, err)
	}
	return nil
}

// Search orders by cosine distance; the score is 1 - distance.
func (x *VectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if len(vector) != x.dimensions {
		return nil, domain.NewDimensionError("query", len(vector), x.dimensions)
	}
	if topK <= 0 {
		return []domain.SearchHit{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, title, content, category, source, 1 - (embedding <=> $1) AS score
		FROM %s
		ORDER BY embedding <=> $1
		LIMIT $2
	`, x.table)

	rows, err := x.pool.Query(ctx, query, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, domain.NewUpstreamError(serviceName, "search", 0, err)
	}
	defer rows.Close()

	hits := make([]domain.SearchHit, 0, topK)
	for rows.Next() {
		var h domain.SearchHit
		d := &h.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.Category, &d.Source, &h.Score); err != nil {
			return nil, domain.NewUpstreamError(serviceName, "search", 0, err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewUpstreamError(serviceName, "search", 0, err)
	}
	return hits, nil
}

// Close closes the connection pool.
func (x *VectorIndex) Close() error {
	if x.pool != nil {
		x.pool.Close()
	}
	return nil
}

// indexName derives the HNSW index name from a sanitised table name.
func indexName(table string) string {
	raw := table
	if len(raw) >= 2 && raw[0] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	return "idx_" + raw + "_embedding"
}
