package driven

import "context"

// Reranker scores (query, passage) pairs with a pairwise relevance model.
// This is an optional service - when nil, the retriever keeps fused order.
type Reranker interface {
	// Rerank returns one score per passage, aligned with the input.
	// Higher is more relevant.
	Rerank(ctx context.Context, query string, passages []string) ([]float64, error)

	// Name identifies the reranker in logs.
	Name() string
}
