// Package ai builds the model-facing adapters from settings.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/embedding/cached"
	ollamaembed "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/embedding/openai"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/httpclient"
	anthropicllm "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/llm/ollama"
	openaillm "github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/llm/openai"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/rerank/llmjudge"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/rerank/remote"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// embeddingTimeout bounds a single embedding request.
const embeddingTimeout = 60 * time.Second

// Services holds the model adapters for one process.
// Embedding and Reranker are nil when unavailable; retrieval degrades.
type Services struct {
	LLM       driven.LLMService
	Embedding driven.EmbeddingService
	Reranker  driven.Reranker
	Warnings  []string // Non-fatal issues that caused fallback.
}

// Close releases all resources held by the services.
func (s *Services) Close() {
	if s.Embedding != nil {
		_ = s.Embedding.Close()
	}
	if s.LLM != nil {
		_ = s.LLM.Close()
	}
}

// Build creates the chat model, the embedding service and the reranker.
// The chat model is required. An unreachable embedding service is dropped
// with a warning so lexical retrieval can still answer.
func Build(ctx context.Context, settings *domain.AppSettings, prompts driven.PromptStore) (*Services, error) {
	llm, err := NewLLMService(settings.LLM, settings.Transport)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	out := &Services{LLM: llm}

	embed, err := NewEmbeddingService(settings.Embedding, settings.Transport)
	switch {
	case err != nil:
		out.warn("embedding disabled: %v", err)
	case embed != nil:
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err = embed.Ping(pingCtx)
		cancel()
		if err != nil {
			_ = embed.Close()
			out.warn("embedding service unreachable, using keyword search only: %v", err)
		} else {
			out.Embedding = embed
		}
	default:
		out.warn("embedding not configured, using keyword search only")
	}

	rerankPrompt := ""
	if prompts != nil {
		if p, err := prompts.Load(driven.PromptRerank); err == nil {
			rerankPrompt = p
		}
	}
	out.Reranker = NewReranker(settings.Rerank, llm, rerankPrompt, settings.Transport)

	return out, nil
}

func (s *Services) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	logger.Warn("%s", msg)
	s.Warnings = append(s.Warnings, msg)
}

// NewLLMService creates the chat model adapter for the configured provider.
func NewLLMService(settings domain.LLMSettings, transport domain.TransportSettings) (driven.LLMService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: llm provider %q is not configured", domain.ErrInvalidInput, settings.Provider)
	}

	tc := httpclient.ConfigFromSettings(transport, settings.Timeout)

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			Transport: tc,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			Transport: tc,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			Transport: tc,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// NewEmbeddingService creates the embedding adapter wrapped in a TTL cache.
// Returns nil if the provider is not configured.
func NewEmbeddingService(settings domain.EmbeddingSettings, transport domain.TransportSettings) (driven.EmbeddingService, error) {
	if settings.Provider == domain.AIProviderAnthropic {
		return nil, fmt.Errorf("anthropic does not support embeddings, use ollama or openai")
	}
	if !settings.IsConfigured() {
		return nil, nil
	}

	dims := settings.Dimensions
	if dims == 0 {
		dims = domain.EmbeddingDimensions()[settings.Model]
	}
	tc := httpclient.ConfigFromSettings(transport, embeddingTimeout)

	var inner driven.EmbeddingService
	switch settings.Provider {
	case domain.AIProviderOllama:
		inner = ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
			Transport:  tc,
		})

	case domain.AIProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dims,
			Transport:  tc,
		})
		if err != nil {
			return nil, err
		}
		inner = svc

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}

	if settings.CacheTTL < 0 {
		return inner, nil
	}
	return cached.New(inner, settings.CacheTTL), nil
}

// NewReranker creates the pairwise reranker, or nil when reranking is off.
// The LLM judge needs a chat model; without one reranking is disabled.
func NewReranker(settings domain.RerankSettings, llm driven.LLMService, prompt string, transport domain.TransportSettings) driven.Reranker {
	switch settings.Provider {
	case domain.RerankProviderLLM:
		if llm == nil {
			return nil
		}
		return llmjudge.New(llm, llmjudge.Config{Prompt: prompt})

	case domain.RerankProviderRemote:
		return remote.New(remote.Config{
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			APIKey:    settings.APIKey,
			Transport: httpclient.ConfigFromSettings(transport, embeddingTimeout),
		})

	default:
		return nil
	}
}
