package driven

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// ChunkStore persists policy documents and their chunks.
// Backed by SQLite; an in-memory implementation exists for tests.
type ChunkStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentBySource retrieves the document ingested from source.
	// Returns domain.ErrNotFound if the source was never ingested.
	GetDocumentBySource(ctx context.Context, source string) (*domain.Document, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// AllChunks returns every chunk in the corpus. Used to warm indexes.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns every ingested document.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// Reset removes all documents and chunks.
	Reset(ctx context.Context) error
}
