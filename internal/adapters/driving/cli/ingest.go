package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
)

var (
	ingestWatch bool
	ingestReset bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Ingest policy documents",
	Long: `Normalises, chunks, embeds and indexes policy documents.

Each path may be a file or a directory. With no path the configured policy
directory (storage.policy_dir) is ingested. Supported formats are plain text,
Markdown and PDF. Re-ingesting a file replaces its earlier chunks.

Use --watch to keep running and re-ingest files as they change.`,
	RunE: runIngest,
}

var ingestStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and index sizes",
	Args:  cobra.NoArgs,
	RunE:  runIngestStats,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "watch the paths and re-ingest on change")
	ingestCmd.Flags().BoolVar(&ingestReset, "reset", false, "clear the corpus before ingesting")
	ingestCmd.AddCommand(ingestStatsCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ingest, err := ingestPort(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	paths := args
	if len(paths) == 0 {
		dir, err := defaultPolicyDir()
		if err != nil {
			return err
		}
		paths = []string{dir}
	}

	if ingestReset {
		if err := ingest.Reset(ctx); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		cmd.Println("Corpus cleared.")
	}

	var errs []error
	for _, path := range paths {
		results, err := ingestPath(cmd, ingest, path)
		printIngestResults(cmd, results)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := printStats(cmd, ingest); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("ingest failed: %w", errors.Join(errs...))
	}

	if !ingestWatch {
		return nil
	}

	watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	return watchPolicies(watchCtx, cmd, ingest, paths, 500*time.Millisecond)
}

func ingestPath(cmd *cobra.Command, ingest driving.IngestService, path string) ([]driving.IngestResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	ctx := commandContext(cmd)
	if info.IsDir() {
		return ingest.IngestDir(ctx, path)
	}
	result, err := ingest.IngestFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return []driving.IngestResult{*result}, nil
}

func printIngestResults(cmd *cobra.Command, results []driving.IngestResult) {
	for _, r := range results {
		if r.Skipped {
			cmd.Printf("  skipped  %s (%s)\n", r.Source, r.Reason)
			continue
		}
		cmd.Printf("  ingested %s: %d pages, %d chunks\n", r.Source, r.Pages, r.Chunks)
	}
}

func runIngestStats(cmd *cobra.Command, _ []string) error {
	ingest, err := ingestPort(cmd)
	if err != nil {
		return err
	}
	return printStats(cmd, ingest)
}

func printStats(cmd *cobra.Command, ingest driving.IngestService) error {
	stats, err := ingest.Stats(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}
	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Chunks: %d (lexical %d, vector %d)\n", stats.Chunks, stats.LexicalEntries, stats.VectorEntries)
	return nil
}

func defaultPolicyDir() (string, error) {
	if settingsService == nil {
		return "", errors.New("no path given and settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return "", fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Storage.PolicyDir == "" {
		return "", errors.New("no path given and storage.policy_dir is not set")
	}
	return settings.Storage.PolicyDir, nil
}
