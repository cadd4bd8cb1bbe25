package driven

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// PostProcessor is one stage of the chunking pipeline. The first stage
// receives nil chunks and creates them; later stages transform them.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns a normalised document into retrieval chunks.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
