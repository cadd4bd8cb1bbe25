package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/storage/memory"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// retrieverFixture wires a retriever over a memory chunk store holding chunks a..e.
type retrieverFixture struct {
	store    *memory.ChunkStore
	lexical  *mockLexicalIndex
	vector   *mockVectorIndex
	embedder *mockEmbeddingService
	reranker *mockReranker
}

func newRetrieverFixture(t *testing.T) *retrieverFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewChunkStore()
	require.NoError(t, store.SaveDocument(ctx, &domain.Document{ID: "doc", Source: "policy.pdf"}))

	var chunks []domain.Chunk
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		chunks = append(chunks, domain.Chunk{
			ID: id, DocumentID: "doc", Source: "policy.pdf", Page: i + 1, Position: i, Content: "passage " + id,
		})
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))

	lexical := newMockLexicalIndex()
	lexical.count = 5
	vector := newMockVectorIndex()
	vector.count = 5

	return &retrieverFixture{
		store:    store,
		lexical:  lexical,
		vector:   vector,
		embedder: &mockEmbeddingService{},
	}
}

func (f *retrieverFixture) service(cfg domain.RetrievalSettings) *RetrieverService {
	var reranker driven.Reranker
	if f.reranker != nil {
		reranker = f.reranker
	}
	return NewRetrieverService(f.store, f.lexical, f.vector, f.embedder, reranker, cfg)
}

func ids(chunks []domain.ScoredChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Chunk.ID
	}
	return out
}

func TestRetriever_WeightedFusion(t *testing.T) {
	f := newRetrieverFixture(t)
	f.lexical.hits = []driven.SearchHit{{ChunkID: "a", Score: 1.0}, {ChunkID: "b", Score: 0.5}}
	f.vector.hits = []driven.VectorHit{{ChunkID: "b", Similarity: 0.8}, {ChunkID: "c", Similarity: 0.6}}

	result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "refund", 5)

	require.NoError(t, err)
	assert.Equal(t, domain.StrategyHybrid, result.Strategy)
	require.Equal(t, []string{"b", "a", "c"}, ids(result.Chunks))
	// b = 0.4*0.5 + 0.6*0.8, a = 0.4*1.0, c = 0.6*0.6
	assert.InDelta(t, 0.68, result.Chunks[0].Score, 1e-9)
	assert.InDelta(t, 0.40, result.Chunks[1].Score, 1e-9)
	assert.InDelta(t, 0.36, result.Chunks[2].Score, 1e-9)
	assert.Equal(t, "policy.pdf", result.Chunks[0].Chunk.Source)
	assert.Equal(t, 2, result.Chunks[0].Chunk.Page)
}

func TestRetriever_CustomWeights(t *testing.T) {
	f := newRetrieverFixture(t)
	f.lexical.hits = []driven.SearchHit{{ChunkID: "a", Score: 1.0}}
	f.vector.hits = []driven.VectorHit{{ChunkID: "b", Similarity: 1.0}}

	result, err := f.service(domain.RetrievalSettings{LexicalWeight: 0.9, DenseWeight: 0.1}).
		Retrieve(context.Background(), "q", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(result.Chunks))
}

func TestRetriever_TieBreakByChunkID(t *testing.T) {
	f := newRetrieverFixture(t)
	f.vector.hits = []driven.VectorHit{{ChunkID: "d", Similarity: 0.5}, {ChunkID: "c", Similarity: 0.5}}

	result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 5)

	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d"}, ids(result.Chunks))
}

func TestRetriever_TopNBound(t *testing.T) {
	f := newRetrieverFixture(t)
	f.vector.hits = []driven.VectorHit{
		{ChunkID: "a", Similarity: 0.9}, {ChunkID: "b", Similarity: 0.8}, {ChunkID: "c", Similarity: 0.7},
		{ChunkID: "d", Similarity: 0.6}, {ChunkID: "e", Similarity: 0.5},
	}
	svc := f.service(domain.RetrievalSettings{TopN: 3, LexicalK: 7})

	result, err := svc.Retrieve(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(result.Chunks))

	result, err = svc.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Len(t, result.Chunks, 3)
	assert.Equal(t, []int{7, 7}, f.lexical.limits)

	for i := 1; i < len(result.Chunks); i++ {
		assert.GreaterOrEqual(t, result.Chunks[i-1].Score, result.Chunks[i].Score)
	}
}

func TestRetriever_Degradation(t *testing.T) {
	t.Run("lexical failure uses dense", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.lexical.err = errors.New("index corrupt")
		f.vector.hits = []driven.VectorHit{{ChunkID: "c", Similarity: 0.7}}

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 5)

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyDense, result.Strategy)
		assert.Equal(t, []string{"c"}, ids(result.Chunks))
		assert.InDelta(t, 0.7, result.Chunks[0].Score, 1e-9)
	})

	t.Run("embedding failure uses lexical", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.embedder.err = domain.ErrEmbeddingUnavailable
		f.lexical.hits = []driven.SearchHit{{ChunkID: "a", Score: 3.2}}

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 5)

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyLexical, result.Strategy)
		assert.Equal(t, []string{"a"}, ids(result.Chunks))
	})

	t.Run("no vector index uses lexical", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.lexical.hits = []driven.SearchHit{{ChunkID: "a", Score: 1}}
		svc := NewRetrieverService(f.store, f.lexical, nil, nil, nil, domain.RetrievalSettings{})

		result, err := svc.Retrieve(context.Background(), "q", 5)

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyLexical, result.Strategy)
	})

	t.Run("both fail", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.lexical.err = errors.New("lexical down")
		f.vector.err = errors.New("vector down")

		_, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 5)

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrSearchUnavailable)
		assert.Contains(t, err.Error(), "lexical down")
		assert.Contains(t, err.Error(), "vector down")
	})
}

func TestRetriever_Rerank(t *testing.T) {
	t.Run("reorders by reranker score", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.vector.hits = []driven.VectorHit{
			{ChunkID: "a", Similarity: 0.9}, {ChunkID: "b", Similarity: 0.8}, {ChunkID: "c", Similarity: 0.7},
		}
		f.reranker = &mockReranker{scores: []float64{0.1, 0.3, 0.9}}

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 2)

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyHybrid.WithRerank(), result.Strategy)
		assert.Equal(t, []string{"c", "b"}, ids(result.Chunks))
		assert.InDelta(t, 0.9, result.Chunks[0].Score, 1e-9)
	})

	t.Run("failure keeps fused order", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.vector.hits = []driven.VectorHit{{ChunkID: "a", Similarity: 0.9}, {ChunkID: "b", Similarity: 0.8}}
		f.reranker = &mockReranker{err: domain.ErrRerankerUnavailable}

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 5)

		require.NoError(t, err)
		assert.Equal(t, domain.StrategyHybrid, result.Strategy)
		assert.Equal(t, []string{"a", "b"}, ids(result.Chunks))
	})

	t.Run("wrong score count keeps fused order", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.vector.hits = []driven.VectorHit{{ChunkID: "a", Similarity: 0.9}, {ChunkID: "b", Similarity: 0.8}}
		f.reranker = &mockReranker{scores: []float64{1}}

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 5)

		require.NoError(t, err)
		assert.False(t, result.Strategy.Reranked())
	})
}

func TestRetriever_EmptyCases(t *testing.T) {
	t.Run("blank query", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.reranker = &mockReranker{}

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "   ", 5)

		require.NoError(t, err)
		assert.True(t, result.IsEmpty())
		assert.Equal(t, domain.StrategyNone, result.Strategy)
		assert.Zero(t, f.reranker.calls)
	})

	t.Run("empty corpus", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.lexical.count = 0
		f.vector.count = 0

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "refund", 5)

		require.NoError(t, err)
		assert.True(t, result.IsEmpty())
		assert.Empty(t, f.lexical.limits)
	})

	t.Run("stale hits are skipped", func(t *testing.T) {
		f := newRetrieverFixture(t)
		f.vector.hits = []driven.VectorHit{{ChunkID: "gone", Similarity: 0.9}}

		result, err := f.service(domain.RetrievalSettings{}).Retrieve(context.Background(), "q", 5)

		require.NoError(t, err)
		assert.True(t, result.IsEmpty())
		assert.Equal(t, domain.StrategyNone, result.Strategy)
	})
}
