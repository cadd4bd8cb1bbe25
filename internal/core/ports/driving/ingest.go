package driving

import "context"

// IngestService loads policy files into the chunk store and indexes.
type IngestService interface {
	// IngestFile ingests a single file, replacing any previous version.
	IngestFile(ctx context.Context, path string) (*IngestResult, error)

	// IngestDir ingests every supported file under dir.
	// Unsupported files are skipped.
	IngestDir(ctx context.Context, dir string) ([]IngestResult, error)

	// Remove deletes a previously ingested source.
	Remove(ctx context.Context, path string) error

	// Reset removes the whole corpus.
	Reset(ctx context.Context) error

	// Stats reports corpus and index sizes.
	Stats(ctx context.Context) (*CorpusStats, error)
}

// IngestResult describes one ingested or skipped file.
type IngestResult struct {
	Source     string
	DocumentID string
	Pages      int
	Chunks     int
	Skipped    bool
	Reason     string
}

// CorpusStats reports the size of the knowledge base.
type CorpusStats struct {
	Documents      int
	Chunks         int
	LexicalEntries int
	VectorEntries  int
}
