// Package llmjudge scores query/passage pairs by asking the chat model for
// a 0-10 relevance rating.
package llmjudge

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"sync"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// DefaultConcurrency bounds parallel scoring calls.
const DefaultConcurrency = 4

// defaultPrompt is used when Config.Prompt is empty. It takes the query
// and the passage as %s verbs.
const defaultPrompt = `Rate how relevant the passage is to the query on a scale from 0 (irrelevant) to 10 (directly answers it).
Respond with the number only.

Query: %s

Passage:
%s

Score:`

var scorePattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Config holds reranker settings.
type Config struct {
	// Prompt is a template with two %s verbs: query then passage.
	Prompt string

	// Concurrency bounds parallel model calls (default: 4).
	Concurrency int
}

// Reranker rates passages with an LLM judge.
type Reranker struct {
	llm         driven.LLMService
	prompt      string
	concurrency int
}

// New creates a reranker backed by llm.
func New(llm driven.LLMService, cfg Config) *Reranker {
	if cfg.Prompt == "" {
		cfg.Prompt = defaultPrompt
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Reranker{llm: llm, prompt: cfg.Prompt, concurrency: cfg.Concurrency}
}

// Name identifies the reranker in logs.
func (r *Reranker) Name() string {
	return "llm:" + r.llm.ModelName()
}

// Rerank returns one score in [0,1] per passage, aligned with the input.
// Any failed call fails the whole batch.
func (r *Reranker) Rerank(ctx context.Context, query string, passages []string) ([]float64, error) {
	scores := make([]float64, len(passages))
	errs := make([]error, len(passages))

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for i, passage := range passages {
		wg.Add(1)
		go func(i int, passage string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			scores[i], errs[i] = r.score(ctx, query, passage)
		}(i, passage)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("score passage %d: %w", i, err)
		}
	}
	return scores, nil
}

func (r *Reranker) score(ctx context.Context, query, passage string) (float64, error) {
	reply, err := r.llm.Generate(ctx, fmt.Sprintf(r.prompt, query, passage), driven.GenerateOptions{
		MaxTokens:   8,
		Temperature: 0,
	})
	if err != nil {
		return 0, err
	}
	return ParseScore(reply), nil
}

// ParseScore extracts the first number from a judge reply and maps 0-10
// onto [0,1]. Replies without a number score 0.
func ParseScore(reply string) float64 {
	m := scorePattern.FindString(reply)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return min(max(v, 0), 10) / 10
}
