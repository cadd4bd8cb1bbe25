package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService loads policy files into the chunk store and both indexes.
type IngestService struct {
	chunkStore       driven.ChunkStore
	registry         driven.NormaliserRegistry
	pipeline         driven.PostProcessorPipeline
	lexicalIndex     driven.LexicalIndex
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService

	// mu serialises writes so a source is never half replaced.
	mu sync.Mutex
}

// NewIngestService creates a new ingestion service.
// The vectorIndex and embeddingService are optional - if nil, chunks are
// stored without embeddings and only lexical retrieval is available.
func NewIngestService(
	chunkStore driven.ChunkStore,
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	lexicalIndex driven.LexicalIndex,
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		chunkStore:       chunkStore,
		registry:         registry,
		pipeline:         pipeline,
		lexicalIndex:     lexicalIndex,
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
	}
}

// IngestFile ingests one policy file. The cleaned absolute path is the
// document source; re-ingesting the same path replaces its document and chunks.
func (s *IngestService) IngestFile(ctx context.Context, path string) (*driving.IngestResult, error) {
	return s.ingestFile(ctx, path, filepath.Base(path))
}

func (s *IngestService) ingestFile(ctx context.Context, path, name string) (*driving.IngestResult, error) {
	source, err := sourceKey(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	mimeType := s.registry.Detect(path, content)
	if mimeType == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, name)
	}

	raw := &domain.RawDocument{
		Source:   source,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{"path": path},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	result, err := s.ingest(ctx, raw)
	if err != nil {
		return nil, err
	}
	result.Source = name
	return result, nil
}

// sourceKey identifies a file independently of the working directory and
// of the root it was reached from.
func sourceKey(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return filepath.Clean(abs), nil
}

// IngestDir ingests every supported file under dir in lexical path order.
// Results name files relative to dir. Unsupported files are reported as
// skipped; failures are collected.
func (s *IngestService) IngestDir(ctx context.Context, dir string) ([]driving.IngestResult, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	results := make([]driving.IngestResult, 0, len(paths))
	var errs []error
	for _, path := range paths {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		name, err := filepath.Rel(dir, path)
		if err != nil {
			name = filepath.Base(path)
		}
		result, err := s.ingestFile(ctx, path, name)
		if errors.Is(err, domain.ErrUnsupportedType) {
			logger.Warn("Skipping unsupported file %s", path)
			results = append(results, driving.IngestResult{
				Source: name, Skipped: true, Reason: "unsupported file type",
			})
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("ingest %s: %w", path, err))
			continue
		}
		results = append(results, *result)
	}

	if len(errs) > 0 {
		return results, errors.Join(errs...)
	}
	return results, nil
}

// ingest runs normalise, chunk, embed, save and index for one document.
// Callers hold s.mu.
func (s *IngestService) ingest(ctx context.Context, raw *domain.RawDocument) (*driving.IngestResult, error) {
	logger.Section("Ingest " + raw.Source)

	// 1. NORMALISE (produces Document with Content and Pages)
	normalised, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}
	doc := normalised.Document
	doc.Source = raw.Source

	// 2. CHUNK
	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	logger.Debug("%s: %d pages, %d chunks", raw.Source, doc.PageCount(), len(chunks))

	// 3. EMBED (if service available)
	if err := s.embed(ctx, chunks); err != nil {
		return nil, err
	}

	// 4. REPLACE any previous version of the source
	var previous *domain.Document
	var previousChunks []domain.Chunk
	if existing, err := s.chunkStore.GetDocumentBySource(ctx, raw.Source); err == nil {
		previous = existing
		if previousChunks, err = s.chunkStore.GetChunks(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("get chunks: %w", err)
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("look up %s: %w", raw.Source, err)
	}
	if previous != nil {
		doc.CreatedAt = previous.CreatedAt
		if err := s.remove(ctx, previous, previousChunks); err != nil {
			return nil, fmt.Errorf("replace %s: %w", raw.Source, err)
		}
	}

	// 5. SAVE AND INDEX, restoring the previous version on failure
	if err := s.store(ctx, &doc, chunks); err != nil {
		s.discard(ctx, &doc, chunks)
		if previous != nil {
			if rerr := s.store(ctx, previous, previousChunks); rerr != nil {
				logger.Warn("Failed to restore previous version of %s: %v", raw.Source, rerr)
			}
		}
		return nil, err
	}

	logger.Info("Ingested %s: %d chunks", raw.Source, len(chunks))
	return &driving.IngestResult{
		Source:     raw.Source,
		DocumentID: doc.ID,
		Pages:      doc.PageCount(),
		Chunks:     len(chunks),
	}, nil
}

// embed fills chunk embeddings in one batch and checks their dimensionality.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) error {
	if s.embeddingService == nil || len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	embeddings, err := s.embeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	want := s.embeddingService.Dimensions()
	for i := range chunks {
		if want > 0 && len(embeddings[i]) != want {
			return fmt.Errorf("%w: embedding has %d dimensions, corpus uses %d",
				domain.ErrInvalidInput, len(embeddings[i]), want)
		}
		chunks[i].Embedding = embeddings[i]
	}
	return nil
}

// store saves a document with its chunks and indexes them.
func (s *IngestService) store(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if err := s.chunkStore.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	if err := s.chunkStore.SaveChunks(ctx, chunks); err != nil {
		return fmt.Errorf("save chunks: %w", err)
	}
	return s.index(ctx, chunks)
}

// discard undoes a partial store. Failures are logged only.
func (s *IngestService) discard(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) {
	s.unindex(ctx, chunks)
	if err := s.chunkStore.DeleteDocument(ctx, doc.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Debug("Failed to discard document %s: %v", doc.ID, err)
	}
}

// index adds chunks to the lexical and vector indexes.
func (s *IngestService) index(ctx context.Context, chunks []domain.Chunk) error {
	for _, chunk := range chunks {
		if s.lexicalIndex != nil {
			if err := s.lexicalIndex.Index(ctx, chunk); err != nil {
				return fmt.Errorf("index chunk: %w", err)
			}
		}
		if s.vectorIndex != nil && len(chunk.Embedding) > 0 {
			if err := s.vectorIndex.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
				return fmt.Errorf("add vector: %w", err)
			}
		}
	}
	return nil
}

// Remove deletes the document ingested from path, if any.
func (s *IngestService) Remove(ctx context.Context, path string) error {
	source, err := sourceKey(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.chunkStore.GetDocumentBySource(ctx, source)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up %s: %w", path, err)
	}
	chunks, err := s.chunkStore.GetChunks(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}
	return s.remove(ctx, doc, chunks)
}

// remove deletes a document from both indexes and the store. Callers hold s.mu.
func (s *IngestService) remove(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	s.unindex(ctx, chunks)

	if err := s.chunkStore.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Debug("Removed %s (%d chunks)", doc.Source, len(chunks))
	return nil
}

// unindex removes chunks from both indexes. Failures are logged only.
func (s *IngestService) unindex(ctx context.Context, chunks []domain.Chunk) {
	for _, chunk := range chunks {
		if s.lexicalIndex != nil {
			if err := s.lexicalIndex.Delete(ctx, chunk.ID); err != nil {
				logger.Debug("Failed to delete lexical entry %s: %v", chunk.ID, err)
			}
		}
		if s.vectorIndex != nil {
			if err := s.vectorIndex.Delete(ctx, chunk.ID); err != nil {
				logger.Debug("Failed to delete vector %s: %v", chunk.ID, err)
			}
		}
	}
}

// Reset removes the whole corpus from the store and both indexes.
func (s *IngestService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks, err := s.chunkStore.AllChunks(ctx)
	if err != nil {
		return fmt.Errorf("list chunks: %w", err)
	}
	s.unindex(ctx, chunks)

	if err := s.chunkStore.Reset(ctx); err != nil {
		return fmt.Errorf("reset chunk store: %w", err)
	}
	logger.Info("Corpus reset: %d chunks removed", len(chunks))
	return nil
}

// Warm loads every stored chunk into the lexical and vector indexes.
// It is called once at start-up and returns the number of chunks loaded.
// Chunks an index rejects, such as vectors from a previous embedding model,
// are skipped with a warning and retrieval degrades around them.
func (s *IngestService) Warm(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunks, err := s.chunkStore.AllChunks(ctx)
	if err != nil {
		return 0, fmt.Errorf("load chunks: %w", err)
	}

	var lexicalSkipped, vectorSkipped int
	var lastErr error
	for _, chunk := range chunks {
		if s.lexicalIndex != nil {
			if err := s.lexicalIndex.Index(ctx, chunk); err != nil {
				lexicalSkipped++
				lastErr = err
			}
		}
		if s.vectorIndex != nil && len(chunk.Embedding) > 0 {
			if err := s.vectorIndex.Add(ctx, chunk.ID, chunk.Embedding); err != nil {
				vectorSkipped++
				lastErr = err
			}
		}
	}
	if lexicalSkipped > 0 || vectorSkipped > 0 {
		logger.Warn("Skipped %d lexical and %d vector entries while loading the policy index "+
			"(last error: %v); re-run 'supportdesk ingest' to rebuild them", lexicalSkipped, vectorSkipped, lastErr)
	}
	logger.Debug("Warmed indexes with %d chunks", len(chunks))
	return len(chunks), nil
}

// Stats reports corpus and index sizes.
func (s *IngestService) Stats(ctx context.Context) (*driving.CorpusStats, error) {
	docs, err := s.chunkStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	count, err := s.chunkStore.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	stats := &driving.CorpusStats{Documents: len(docs), Chunks: count}
	if s.lexicalIndex != nil {
		stats.LexicalEntries = s.lexicalIndex.Count()
	}
	if s.vectorIndex != nil {
		stats.VectorEntries = s.vectorIndex.Count()
	}
	return stats, nil
}
