package domain

import "strings"

// RetrievalStrategy records which retrieval stages produced a result.
type RetrievalStrategy string

// Retrieval strategies, from richest to most degraded.
const (
	// StrategyHybrid fused lexical and dense candidates.
	StrategyHybrid RetrievalStrategy = "hybrid"

	// StrategyDense used dense candidates only.
	StrategyDense RetrievalStrategy = "dense"

	// StrategyLexical used lexical candidates only.
	StrategyLexical RetrievalStrategy = "lexical"

	// StrategyNone means the corpus or query produced no candidates.
	StrategyNone RetrievalStrategy = "none"
)

// WithRerank marks the strategy as reranked.
func (s RetrievalStrategy) WithRerank() RetrievalStrategy {
	if s == StrategyNone || s.Reranked() {
		return s
	}
	return s + "+rerank"
}

// Reranked reports whether the rerank stage ran.
func (s RetrievalStrategy) Reranked() bool {
	return strings.HasSuffix(string(s), "+rerank")
}

// String returns the string representation.
func (s RetrievalStrategy) String() string {
	return string(s)
}

// RetrievalResult is the ranked list of chunks returned for one query.
// Chunks are ordered by descending final score.
type RetrievalResult struct {
	Query    string
	Chunks   []ScoredChunk
	Strategy RetrievalStrategy
}

// IsEmpty reports whether nothing was retrieved.
func (r *RetrievalResult) IsEmpty() bool {
	return len(r.Chunks) == 0
}
