package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates a file type no normaliser handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// Routing and agent errors.

	// ErrClassification indicates the router could not assign a category.
	// It is fatal for the turn and is never replaced by a guessed category.
	ErrClassification = errors.New("classification failed")

	// ErrPolicyViolation indicates a query was rejected before execution
	// because it could modify data.
	ErrPolicyViolation = errors.New("policy violation")

	// ErrUnknownTool indicates the model requested a tool the agent does not offer.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrToolBudgetExhausted indicates a tool was requested after its per-turn cap.
	ErrToolBudgetExhausted = errors.New("tool call budget exhausted")

	// Service availability errors.

	// ErrLLMUnavailable indicates the chat model is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Dense search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrSearchUnavailable indicates no retrieval stage could produce candidates.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrRerankerUnavailable indicates the reranker is not configured.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrRateLimited indicates the upstream API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
