package domain

import "time"

// Document represents an ingested policy document.
// It is the canonical representation after normalisation.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Source identifies where the document came from (usually a file name).
	// Re-ingesting the same source replaces the previous document.
	Source string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// Pages holds the content split on form feeds. A document without
	// page breaks has a single page.
	Pages []string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last ingested.
	UpdatedAt time.Time
}

// PageCount returns the number of pages, treating unpaged content as one page.
func (d *Document) PageCount() int {
	if len(d.Pages) == 0 {
		if d.Content == "" {
			return 0
		}
		return 1
	}
	return len(d.Pages)
}

// Chunk is the unit of indexed policy text.
// Chunks are immutable once ingested.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the source document identifier, copied for citation.
	Source string

	// Page is the 1-based page number the chunk was cut from.
	Page int

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the dense vector representation.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// ScoredChunk pairs a chunk with a retrieval score.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
