package driven

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// LexicalIndex provides keyword search over chunk text.
// Backed by an in-process BM25 index maintained alongside ingestion.
type LexicalIndex interface {
	// Index adds or replaces a chunk in the index.
	Index(ctx context.Context, chunk domain.Chunk) error

	// Delete removes a chunk from the index.
	Delete(ctx context.Context, chunkID string) error

	// Search returns up to limit hits ordered by descending score.
	// Returns domain.ErrSearchUnavailable if the index holds no chunks.
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Count returns the number of indexed chunks.
	Count() int

	// Close releases resources.
	Close() error
}

// SearchHit represents a keyword search result.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the normalised BM25 score in (0, 1].
	Score float64
}
