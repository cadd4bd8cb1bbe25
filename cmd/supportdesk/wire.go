package main

import (
	"context"
	"fmt"
	"io"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/ai"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/config/file"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/lexical/bm25"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/storage/memory"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/storage/redis"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/storage/sqlite"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driving/cli"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/services"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/normalisers"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/postprocessors"
)

// application owns every resource opened by Bootstrap.
type application struct {
	settings driving.SettingsService
	closers  []io.Closer
	ai       *ai.Services
}

// Bootstrap opens the stores, connects the models and assembles the services.
func (a *application) Bootstrap(ctx context.Context) (*cli.Services, error) {
	settings, err := a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	chunkStore, err := sqlite.NewChunkStore(ctx, settings.Storage.KnowledgeDBPath)
	if err != nil {
		return nil, fmt.Errorf("open knowledge store: %w", err)
	}
	a.closers = append(a.closers, chunkStore)

	supportStore, err := sqlite.NewSupportStore(ctx, settings.Storage.SupportDBPath)
	if err != nil {
		return nil, fmt.Errorf("open support database: %w", err)
	}
	a.closers = append(a.closers, supportStore)

	threads, err := a.threadStore(ctx, settings.Storage)
	if err != nil {
		return nil, err
	}

	prompts, err := file.NewPromptStore("", services.DefaultPrompts())
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	models, err := ai.Build(ctx, settings, prompts)
	if err != nil {
		return nil, err
	}
	a.ai = models
	for _, w := range models.Warnings {
		logger.Debug("AI fallback: %s", w)
	}

	lexical := bm25.New()
	var vectors driven.VectorIndex
	if models.Embedding != nil {
		vectors = memory.NewVectorIndex(models.Embedding.Dimensions())
	}

	pipeline, err := postprocessors.DefaultPipeline(settings.Retrieval)
	if err != nil {
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}

	ingest := services.NewIngestService(
		chunkStore, normalisers.NewDefaultRegistry(), pipeline, lexical, vectors, models.Embedding,
	)
	if n, err := ingest.Warm(ctx); err != nil {
		return nil, fmt.Errorf("load policy index: %w", err)
	} else if n == 0 {
		logger.Warn("Policy corpus is empty; run 'supportdesk ingest' to add documents")
	}

	retriever := services.NewRetrieverService(
		chunkStore, lexical, vectors, models.Embedding, models.Reranker, settings.Retrieval,
	)
	query := services.NewQueryTool(supportStore)

	supervisor, err := services.NewSupervisor(
		services.NewRouter(models.LLM, prompts, settings.LLM),
		threads,
		services.NewSQLAgent(models.LLM, query, prompts, settings.LLM, settings.Agents),
		services.NewRAGAgent(models.LLM, retriever, prompts, settings.LLM, settings.Agents),
		services.NewGeneralAgent(models.LLM, prompts, settings.LLM),
	)
	if err != nil {
		return nil, err
	}

	return &cli.Services{
		Assistant: supervisor,
		Retriever: retriever,
		Ingest:    ingest,
		Support:   services.NewSupportService(supportStore),
		Query:     query,
	}, nil
}

func (a *application) threadStore(ctx context.Context, cfg domain.StorageSettings) (driven.ThreadStore, error) {
	if cfg.ThreadBackend != domain.ThreadBackendRedis {
		return memory.NewThreadStore(), nil
	}
	store, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("open thread store: %w", err)
	}
	a.closers = append(a.closers, store)
	return store, nil
}

// Close releases resources in reverse order of opening.
func (a *application) Close() {
	if a.ai != nil {
		a.ai.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}
}
