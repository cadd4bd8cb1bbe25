package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.Retriever = (*RetrieverService)(nil)

// scoredChunk holds intermediate retrieval results before hydration.
type scoredChunk struct {
	chunkID string
	score   float64
}

// RetrieverService provides hybrid retrieval: dense and lexical candidates,
// weighted fusion, then pairwise reranking.
type RetrieverService struct {
	chunkStore       driven.ChunkStore
	lexicalIndex     driven.LexicalIndex
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	reranker         driven.Reranker
	cfg              domain.RetrievalSettings
}

// NewRetrieverService creates a new retriever.
// The vectorIndex, embeddingService and reranker parameters are optional (can be nil).
// Zero values in cfg are replaced by defaults.
func NewRetrieverService(
	chunkStore driven.ChunkStore,
	lexicalIndex driven.LexicalIndex,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	reranker driven.Reranker,
	cfg domain.RetrievalSettings,
) *RetrieverService {
	defaults := domain.DefaultAppSettings().Retrieval
	if cfg.DenseK <= 0 {
		cfg.DenseK = defaults.DenseK
	}
	if cfg.LexicalK <= 0 {
		cfg.LexicalK = defaults.LexicalK
	}
	if cfg.TopN <= 0 {
		cfg.TopN = defaults.TopN
	}
	if cfg.LexicalWeight == 0 && cfg.DenseWeight == 0 {
		cfg.LexicalWeight = defaults.LexicalWeight
		cfg.DenseWeight = defaults.DenseWeight
	}

	return &RetrieverService{
		chunkStore:       chunkStore,
		lexicalIndex:     lexicalIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		reranker:         reranker,
		cfg:              cfg,
	}
}

// Retrieve returns at most topN chunks for the query, ordered by descending score.
// Stage failures degrade to the next cheaper strategy and are logged as warnings.
// Only when neither dense nor lexical search can run is an error returned.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, topN int) (*domain.RetrievalResult, error) {
	logger.Section("Hybrid Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	result := &domain.RetrievalResult{Query: query, Strategy: domain.StrategyNone}
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return result, nil
	}
	if topN <= 0 {
		topN = s.cfg.TopN
	}
	if s.corpusEmpty() {
		logger.Debug("Corpus is empty, returning no results")
		return result, nil
	}

	candidates, strategy, err := s.candidates(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Debug("Candidates: %d (%s)", len(candidates), strategy)

	chunks, err := s.hydrate(ctx, candidates)
	if err != nil {
		return nil, fmt.Errorf("hydrate candidates: %w", err)
	}

	if reranked, ok := s.rerank(ctx, query, chunks); ok {
		chunks = reranked
		strategy = strategy.WithRerank()
	}

	if len(chunks) > topN {
		chunks = chunks[:topN]
	}
	result.Chunks = chunks
	result.Strategy = strategy
	if len(chunks) == 0 {
		result.Strategy = domain.StrategyNone
	}

	logger.Info("Retrieved %d chunks via %s", len(chunks), result.Strategy)
	return result, nil
}

// corpusEmpty reports whether neither index holds anything.
func (s *RetrieverService) corpusEmpty() bool {
	lexicalEmpty := s.lexicalIndex == nil || s.lexicalIndex.Count() == 0
	vectorEmpty := s.vectorIndex == nil || s.vectorIndex.Count() == 0
	return lexicalEmpty && vectorEmpty
}

// candidates runs dense and lexical search concurrently and combines them.
func (s *RetrieverService) candidates(ctx context.Context, query string) ([]scoredChunk, domain.RetrievalStrategy, error) {
	var lexicalResults, denseResults []scoredChunk
	var lexicalErr, denseErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		lexicalResults, lexicalErr = s.lexicalSearch(ctx, query, s.cfg.LexicalK)
	}()

	go func() {
		defer wg.Done()
		denseResults, denseErr = s.denseSearch(ctx, query, s.cfg.DenseK)
	}()

	wg.Wait()

	switch {
	case lexicalErr != nil && denseErr != nil:
		logger.Warn("Retrieval: both lexical and dense search failed")
		return nil, "", fmt.Errorf("%w: lexical: %w; dense: %w", domain.ErrSearchUnavailable, lexicalErr, denseErr)

	case lexicalErr != nil:
		logger.Warn("Retrieval: lexical search failed (%v), using dense results only", lexicalErr)
		return sortCandidates(denseResults), domain.StrategyDense, nil

	case denseErr != nil:
		logger.Warn("Retrieval: dense search failed (%v), using lexical results only", denseErr)
		return sortCandidates(lexicalResults), domain.StrategyLexical, nil
	}

	if len(lexicalResults) == 0 {
		logger.Debug("Retrieval: no lexical hits, fusing with zero lexical contribution")
	}
	merged := weightedFusion(lexicalResults, denseResults, s.cfg.LexicalWeight, s.cfg.DenseWeight)
	logger.Debug("Retrieval: fused %d lexical + %d dense into %d", len(lexicalResults), len(denseResults), len(merged))
	return merged, domain.StrategyHybrid, nil
}

// lexicalSearch performs BM25 keyword search.
func (s *RetrieverService) lexicalSearch(ctx context.Context, query string, limit int) ([]scoredChunk, error) {
	if s.lexicalIndex == nil {
		return nil, domain.ErrSearchUnavailable
	}

	hits, err := s.lexicalIndex.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Score}
	}
	return results, nil
}

// denseSearch embeds the query and searches the vector index.
func (s *RetrieverService) denseSearch(ctx context.Context, query string, limit int) ([]scoredChunk, error) {
	if s.vectorIndex == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	if s.embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectorIndex.Search(ctx, embedding, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Similarity}
	}
	return results, nil
}

// weightedFusion combines two scored lists: each chunk scores
// lexicalWeight*lexical + denseWeight*dense, with a missing side contributing 0.
func weightedFusion(lexical, dense []scoredChunk, lexicalWeight, denseWeight float64) []scoredChunk {
	order := make(map[string]int, len(lexical)+len(dense))
	merged := make([]scoredChunk, 0, len(lexical)+len(dense))

	add := func(list []scoredChunk, weight float64) {
		for _, c := range list {
			i, ok := order[c.chunkID]
			if !ok {
				i = len(merged)
				order[c.chunkID] = i
				merged = append(merged, scoredChunk{chunkID: c.chunkID})
			}
			merged[i].score += weight * c.score
		}
	}
	add(dense, denseWeight)
	add(lexical, lexicalWeight)

	return sortCandidates(merged)
}

// sortCandidates orders by descending score, breaking ties by chunk id.
func sortCandidates(list []scoredChunk) []scoredChunk {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].chunkID < list[j].chunkID
	})
	return list
}

// hydrate loads chunk content for candidates, skipping chunks that no longer exist.
func (s *RetrieverService) hydrate(ctx context.Context, candidates []scoredChunk) ([]domain.ScoredChunk, error) {
	if s.chunkStore == nil {
		return nil, errors.New("chunk store unavailable")
	}

	results := make([]domain.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		chunk, err := s.chunkStore.GetChunk(ctx, c.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get chunk %s: %w", c.chunkID, err)
		}
		results = append(results, domain.ScoredChunk{Chunk: *chunk, Score: c.score})
	}
	return results, nil
}

// rerank rescores every candidate with the pairwise model.
// It reports false when the reranker is absent or fails, leaving fused order in place.
func (s *RetrieverService) rerank(ctx context.Context, query string, chunks []domain.ScoredChunk) ([]domain.ScoredChunk, bool) {
	if s.reranker == nil || len(chunks) == 0 {
		return nil, false
	}

	passages := make([]string, len(chunks))
	for i := range chunks {
		passages[i] = chunks[i].Chunk.Content
	}

	scores, err := s.reranker.Rerank(ctx, query, passages)
	if err != nil {
		logger.Warn("Retrieval: reranker %s failed (%v), keeping fused order", s.reranker.Name(), err)
		return nil, false
	}
	if len(scores) != len(chunks) {
		logger.Warn("Retrieval: reranker %s returned %d scores for %d passages, keeping fused order",
			s.reranker.Name(), len(scores), len(chunks))
		return nil, false
	}

	reranked := make([]domain.ScoredChunk, len(chunks))
	for i := range chunks {
		reranked[i] = domain.ScoredChunk{Chunk: chunks[i].Chunk, Score: scores[i]}
	}
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Score > reranked[j].Score
	})
	return reranked, true
}
