package driven

import "context"

// VectorIndex is the dense side of hybrid retrieval, keyed by chunk ID.
type VectorIndex interface {
	// Add inserts or replaces the vector for chunkID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	Delete(ctx context.Context, chunkID string) error

	// Search returns up to k hits ordered by descending similarity.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	Count() int
	Close() error
}

// VectorHit is one dense retrieval candidate.
type VectorHit struct {
	ChunkID    string
	Similarity float64 // cosine similarity
}
