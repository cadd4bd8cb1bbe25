package api

import "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"

// ChatRequest is the body of POST /v1/chat.
type ChatRequest struct {
	ThreadID string `json:"thread_id" validate:"omitempty,max=128"`
	Message  string `json:"message" validate:"required,max=8000"`
}

// ChatResponse is the body returned by POST /v1/chat.
type ChatResponse struct {
	ThreadID string `json:"thread_id"`
	Response string `json:"response"`
	Category string `json:"category"`
}

// RetrieveRequest is the body of POST /v1/retrieve.
type RetrieveRequest struct {
	Query string `json:"query" validate:"required"`
	TopN  int    `json:"top_n" validate:"gte=0,lte=50"`
}

// RetrieveResponse is the body returned by POST /v1/retrieve.
type RetrieveResponse struct {
	Strategy string        `json:"strategy"`
	Chunks   []ChunkResult `json:"chunks"`
}

// ChunkResult is one retrieved passage.
type ChunkResult struct {
	ID      string  `json:"id"`
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

func toRetrieveResponse(r *domain.RetrievalResult) RetrieveResponse {
	out := RetrieveResponse{
		Strategy: r.Strategy.String(),
		Chunks:   make([]ChunkResult, len(r.Chunks)),
	}
	for i, sc := range r.Chunks {
		out.Chunks[i] = ChunkResult{
			ID:      sc.Chunk.ID,
			Source:  sc.Chunk.Source,
			Page:    sc.Chunk.Page,
			Score:   sc.Score,
			Content: sc.Chunk.Content,
		}
	}
	return out
}
