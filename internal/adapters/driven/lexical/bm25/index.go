// Package bm25 provides an in-memory Okapi BM25 lexical index, updated
// incrementally as chunks are ingested or removed.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.LexicalIndex = (*Index)(nil)

// BM25 parameters.
const (
	K1 = 1.5
	B  = 0.75
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "in": {}, "is": {}, "it": {}, "its": {}, "of": {},
	"on": {}, "or": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "what": {}, "how": {}, "do": {}, "does": {}, "i": {}, "my": {},
}

// Index is a BM25 index over chunk content.
type Index struct {
	mu       sync.RWMutex
	postings map[string]map[string]int // term -> chunk ID -> term frequency
	lengths  map[string]int            // chunk ID -> token count
	terms    map[string][]string       // chunk ID -> distinct terms
	totalLen int
}

// New creates an empty index.
func New() *Index {
	return &Index{
		postings: make(map[string]map[string]int),
		lengths:  make(map[string]int),
		terms:    make(map[string][]string),
	}
}

// Tokenize lowercases text, splits on non-alphanumeric runes and drops stop words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if _, stop := stopWords[f]; !stop {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Index adds a chunk, replacing any previous entry with the same ID.
func (idx *Index) Index(_ context.Context, chunk domain.Chunk) error {
	if chunk.ID == "" {
		return domain.ErrInvalidInput
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.remove(chunk.ID)

	tokens := Tokenize(chunk.Content)
	tf := make(map[string]int)
	for _, tok := range tokens {
		tf[tok]++
	}
	distinct := make([]string, 0, len(tf))
	for term, n := range tf {
		p, ok := idx.postings[term]
		if !ok {
			p = make(map[string]int)
			idx.postings[term] = p
		}
		p[chunk.ID] = n
		distinct = append(distinct, term)
	}
	idx.lengths[chunk.ID] = len(tokens)
	idx.terms[chunk.ID] = distinct
	idx.totalLen += len(tokens)
	return nil
}

// Delete removes a chunk. Unknown IDs are ignored.
func (idx *Index) Delete(_ context.Context, chunkID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.remove(chunkID)
	return nil
}

func (idx *Index) remove(chunkID string) {
	n, ok := idx.lengths[chunkID]
	if !ok {
		return
	}
	for _, term := range idx.terms[chunkID] {
		delete(idx.postings[term], chunkID)
		if len(idx.postings[term]) == 0 {
			delete(idx.postings, term)
		}
	}
	idx.totalLen -= n
	delete(idx.lengths, chunkID)
	delete(idx.terms, chunkID)
}

// Search returns up to limit chunks by descending BM25 score, scaled so the
// best hit scores 1. An empty index returns ErrSearchUnavailable; a query
// matching no terms returns no hits.
func (idx *Index) Search(_ context.Context, query string, limit int) ([]driven.SearchHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	n := len(idx.lengths)
	if n == 0 {
		return nil, domain.ErrSearchUnavailable
	}
	if limit <= 0 {
		return []driven.SearchHit{}, nil
	}

	avgLen := float64(idx.totalLen) / float64(n)
	if avgLen == 0 {
		avgLen = 1
	}

	scores := make(map[string]float64)
	seen := make(map[string]struct{})
	for _, term := range Tokenize(query) {
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		postings := idx.postings[term]
		if len(postings) == 0 {
			continue
		}
		df := float64(len(postings))
		idf := math.Log(1 + (float64(n)-df+0.5)/(df+0.5))
		for id, tf := range postings {
			f := float64(tf)
			norm := 1 - B + B*float64(idx.lengths[id])/avgLen
			scores[id] += idf * f * (K1 + 1) / (f + K1*norm)
		}
	}

	hits := make([]driven.SearchHit, 0, len(scores))
	for id, s := range scores {
		if s > 0 {
			hits = append(hits, driven.SearchHit{ChunkID: id, Score: s})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	if len(hits) > 0 {
		top := hits[0].Score
		for i := range hits {
			hits[i].Score /= top
		}
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.lengths)
}

// Close releases the index contents.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.postings = make(map[string]map[string]int)
	idx.lengths = make(map[string]int)
	idx.terms = make(map[string][]string)
	idx.totalLen = 0
	return nil
}
