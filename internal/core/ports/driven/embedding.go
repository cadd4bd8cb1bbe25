package driven

import "context"

// EmbeddingService turns policy chunks and user queries into dense vectors.
// It is optional: without it retrieval runs on the lexical index alone.
type EmbeddingService interface {
	// Embed returns the vector for a single query.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length; the vector index is sized from it.
	Dimensions() int

	// ModelName identifies the model, e.g. "all-minilm".
	ModelName() string

	// Ping checks the provider answers.
	Ping(ctx context.Context) error

	Close() error
}
