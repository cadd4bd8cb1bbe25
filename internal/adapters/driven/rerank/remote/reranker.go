// Package remote calls a cross-encoder /rerank endpoint. Both the
// Text-Embeddings-Inference shape and the Jina/Cohere shape are accepted.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/httpclient"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// DefaultBaseURL is a local TEI server.
const DefaultBaseURL = "http://localhost:8080"

// Config holds remote reranker settings.
type Config struct {
	BaseURL   string
	Model     string
	APIKey    string
	Transport httpclient.Config
}

// Reranker scores passages with a remote cross-encoder.
type Reranker struct {
	client  *httpclient.Client
	baseURL string
	model   string
	apiKey  string
}

type rerankRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Texts     []string `json:"texts"`
	Documents []string `json:"documents"`
}

type rerankResult struct {
	Index          int      `json:"index"`
	Score          *float64 `json:"score"`
	RelevanceScore *float64 `json:"relevance_score"`
}

// New creates a remote reranker.
func New(cfg Config) *Reranker {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Reranker{
		client:  httpclient.New(cfg.Transport),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
}

// Name identifies the reranker in logs.
func (r *Reranker) Name() string {
	if r.model != "" {
		return "remote:" + r.model
	}
	return "remote:" + r.baseURL
}

// Rerank returns one score per passage, aligned with the input.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return []float64{}, nil
	}

	var headers map[string]string
	if r.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + r.apiKey}
	}

	var raw json.RawMessage
	req := rerankRequest{Model: r.model, Query: query, Texts: passages, Documents: passages}
	if err := r.client.PostJSON(ctx, r.baseURL+"/rerank", headers, req, &raw); err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	results, err := decodeResults(raw)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	scores := make([]float64, len(passages))
	seen := make([]bool, len(passages))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(passages) {
			return nil, fmt.Errorf("rerank: result index %d out of range", res.Index)
		}
		switch {
		case res.Score != nil:
			scores[res.Index] = *res.Score
		case res.RelevanceScore != nil:
			scores[res.Index] = *res.RelevanceScore
		}
		seen[res.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank: no score for passage %d", i)
		}
	}
	return scores, nil
}

// decodeResults accepts a bare array (TEI) or {"results": [...]} (Jina, Cohere).
func decodeResults(raw json.RawMessage) ([]rerankResult, error) {
	var results []rerankResult
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
		return results, nil
	}

	var wrapped struct {
		Results []rerankResult `json:"results"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return wrapped.Results, nil
}
