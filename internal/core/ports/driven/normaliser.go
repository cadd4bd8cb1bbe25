package driven

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// Normaliser transforms raw policy files into documents.
// Each normaliser handles specific MIME types (e.g., text/markdown).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Specific normalisers should return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise transforms a raw document into a document with content and pages.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Content and Pages populated.
	Document domain.Document
}

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches on MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when no normaliser handles the MIME type.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string

	// Detect returns the MIME type to normalise a file as, judged from its
	// path and content, or "" if no registered normaliser handles it.
	Detect(path string, content []byte) string
}
