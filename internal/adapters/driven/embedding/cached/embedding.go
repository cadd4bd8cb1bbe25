// Package cached wraps an embedding service with an in-process TTL cache,
// so repeated queries and re-ingested chunks skip the provider round trip.
package cached

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultTTL is used when the configured TTL is not positive.
const DefaultTTL = 10 * time.Minute

// EmbeddingService caches vectors by model and text.
type EmbeddingService struct {
	inner driven.EmbeddingService
	cache *cache.Cache
}

// New wraps inner with a cache whose entries expire after ttl.
func New(inner driven.EmbeddingService, ttl time.Duration) *EmbeddingService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &EmbeddingService{
		inner: inner,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *EmbeddingService) key(text string) string {
	return s.inner.ModelName() + "\x00" + text
}

// Embed returns the cached vector for text or computes and stores it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if x, found := s.cache.Get(s.key(text)); found {
		return x.([]float32), nil
	}

	vec, err := s.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Set(s.key(text), vec, cache.DefaultExpiration)
	return vec, nil
}

// EmbedBatch embeds only the texts not already cached, in one inner call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if x, found := s.cache.Get(s.key(text)); found {
			out[i] = x.([]float32)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := s.inner.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, vec := range vecs {
		out[missingIdx[j]] = vec
		s.cache.Set(s.key(missing[j]), vec, cache.DefaultExpiration)
	}
	return out, nil
}

// Len returns the number of cached vectors, including expired ones not yet purged.
func (s *EmbeddingService) Len() int {
	return s.cache.ItemCount()
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.inner.Dimensions() }

// ModelName returns the wrapped model name.
func (s *EmbeddingService) ModelName() string { return s.inner.ModelName() }

// Ping checks the wrapped service.
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }

// Close flushes the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.cache.Flush()
	return s.inner.Close()
}
