package driving

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// Retriever provides hybrid policy retrieval to agents and external actors.
type Retriever interface {
	// Retrieve returns at most topN chunks ordered by descending score.
	// topN <= 0 uses the configured default.
	Retrieve(ctx context.Context, query string, topN int) (*domain.RetrievalResult, error)
}
