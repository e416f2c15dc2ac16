// Package driven declares what the core needs from the outside world:
// model providers, vector indexes, configuration, prompts and datasets.
package driven

import "context"

// EmbeddingService turns text into vectors. Its Dimensions must equal the
// size the VectorIndex was created with, or upserts are rejected.
type EmbeddingService interface {
	// Embed makes exactly one outbound call. Text is not cached or checked.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text in input order. Providers may
	// split the request.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int

	// ModelName is the model or, for Azure, the deployment.
	ModelName() string

	Ping(ctx context.Context) error
	Close() error
}
