package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// watchPolicies re-ingests files under paths as they change until ctx is done.
// Bursts of events for one file collapse into a single ingest after debounce.
func watchPolicies(
	ctx context.Context,
	cmd *cobra.Command,
	ingest driving.IngestService,
	paths []string,
	debounce time.Duration,
) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range paths {
		if err := addWatch(watcher, p); err != nil {
			return err
		}
	}

	// path -> removed; the latest event wins.
	pending := make(map[string]bool)
	due := make(map[string]time.Time)

	tick := debounce / 4
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if hidden(event.Name) {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				pending[event.Name] = true
			case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatch(watcher, event.Name); err != nil {
						logger.Warn("Cannot watch %s: %v", event.Name, err)
					}
					continue
				}
				pending[event.Name] = false
			default:
				continue
			}
			due[event.Name] = time.Now().Add(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case now := <-ticker.C:
			for path, at := range due {
				if now.Before(at) {
					continue
				}
				removed := pending[path]
				delete(due, path)
				delete(pending, path)
				applyChange(ctx, cmd, ingest, path, removed)
			}
		}
	}
}

func applyChange(ctx context.Context, cmd *cobra.Command, ingest driving.IngestService, path string, removed bool) {
	if removed {
		if err := ingest.Remove(ctx, path); err != nil {
			cmd.PrintErrf("remove %s: %v\n", path, err)
			return
		}
		cmd.Printf("  removed  %s\n", filepath.Base(path))
		return
	}

	result, err := ingest.IngestFile(ctx, path)
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
		logger.Debug("Ignoring unsupported file %s", path)
	case err != nil:
		cmd.PrintErrf("ingest %s: %v\n", path, err)
	default:
		printIngestResults(cmd, []driving.IngestResult{*result})
	}
}

// addWatch watches path, or every directory beneath it.
func addWatch(watcher *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		// Watch the parent so editors that replace the file are still seen.
		return watcher.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && hidden(p) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// hidden reports dot files and editor swap files.
func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
