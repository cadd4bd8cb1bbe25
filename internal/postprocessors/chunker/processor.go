// Package chunker splits documents into overlapping, page-aware chunks.
//
// Splitting is recursive: text is cut on the coarsest separator that
// occurs in it (paragraphs, then lines, then words, then characters) and
// the pieces are merged back up to the chunk size, carrying a tail of the
// previous chunk forward as overlap. Chunks never span a page break.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 512

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 50

// DefaultSeparators are tried in order, coarsest first.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Processor splits document content into chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) > 0 {
			p.separators = separators
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits each page of the document into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	pages := doc.Pages
	if len(pages) == 0 && doc.Content != "" {
		pages = strings.Split(doc.Content, "\f")
	}

	var chunks []domain.Chunk
	position := 0
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, text := range p.Split(page) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Source:     doc.Source,
				Page:       i + 1,
				Content:    text,
				Position:   position,
				Metadata:   map[string]any{"page": i + 1},
			})
			position++
		}
	}

	return chunks, nil
}

// Split cuts text into pieces no longer than the chunk size where the
// separators allow it. Empty and whitespace-only pieces are dropped.
func (p *Processor) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	pieces := p.split(text, p.separators)
	out := pieces[:0]
	for _, piece := range pieces {
		if piece = strings.TrimSpace(piece); piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

func (p *Processor) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var out, pending []string
	for _, piece := range splitOn(text, sep) {
		if length(piece) < p.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			out = append(out, p.merge(pending, sep)...)
			pending = nil
		}
		if len(rest) == 0 {
			out = append(out, piece)
		} else {
			out = append(out, p.split(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		out = append(out, p.merge(pending, sep)...)
	}
	return out
}

// merge packs pieces into chunks up to the chunk size, starting each new
// chunk with as much of the previous one as fits in the overlap.
func (p *Processor) merge(pieces []string, sep string) []string {
	sepLen := length(sep)
	var (
		out     []string
		current []string
		total   int
	)

	joinedLen := func(n int) int {
		if len(current) > 0 {
			return total + n + sepLen
		}
		return total + n
	}

	for _, piece := range pieces {
		n := length(piece)
		if joinedLen(n) > p.chunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				out = append(out, chunk)
			}
			for total > p.overlap || (joinedLen(n) > p.chunkSize && total > 0) {
				total -= length(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}
		current = append(current, piece)
		total = joinedLenOf(current, sepLen)
	}

	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		out = append(out, chunk)
	}
	return out
}

func joinedLenOf(pieces []string, sepLen int) int {
	total := 0
	for i, piece := range pieces {
		if i > 0 {
			total += sepLen
		}
		total += length(piece)
	}
	return total
}

func splitOn(text, sep string) []string {
	if sep == "" {
		chars := make([]string, 0, len(text))
		for _, r := range text {
			chars = append(chars, string(r))
		}
		return chars
	}

	var pieces []string
	for _, piece := range strings.Split(text, sep) {
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}
