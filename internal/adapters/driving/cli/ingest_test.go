package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestCmd_Directory(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	dir := t.TempDir()

	out, err := runCommand("", "ingest", dir)

	require.NoError(t, err)
	assert.Equal(t, []string{dir}, ts.ingest.dirs)
	assert.Contains(t, out, "ingested faq.md: 1 pages, 4 chunks")
	assert.Contains(t, out, "skipped  logo.png (unsupported file type)")
	assert.Contains(t, out, "Documents: 2")
}

func TestIngestCmd_File(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	path := filepath.Join(t.TempDir(), "refunds.md")
	require.NoError(t, os.WriteFile(path, []byte("# Refunds"), 0o600))

	_, err := runCommand("", "ingest", path)

	require.NoError(t, err)
	assert.Equal(t, []string{path}, ts.ingest.ingestedFiles())
}

func TestIngestCmd_ResetFirst(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("", "ingest", "--reset", t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 1, ts.ingest.resets)
	assert.Contains(t, out, "Corpus cleared.")
}

func TestIngestCmd_DefaultsToPolicyDir(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	dir := t.TempDir()
	require.NoError(t, ts.settings.Set("storage.policy_dir", dir))

	_, err := runCommand("", "ingest")

	require.NoError(t, err)
	assert.Equal(t, []string{dir}, ts.ingest.dirs)
}

func TestIngestCmd_MissingPath(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("", "ingest", filepath.Join(t.TempDir(), "nope"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}

func TestIngestStatsCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("", "ingest", "stats")

	require.NoError(t, err)
	assert.Contains(t, out, "Chunks: 7 (lexical 7, vector 7)")
}

func TestWatchPolicies_ReingestsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	ingest := &mockIngest{}
	cmd := &cobra.Command{}
	cmd.SetOut(new(lockedBuffer))
	cmd.SetErr(new(lockedBuffer))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- watchPolicies(ctx, cmd, ingest, []string{dir}, 20*time.Millisecond)
	}()

	path := filepath.Join(dir, "shipping.md")
	// Writes are retried until the watcher is registered.
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("# Shipping"), 0o600)
		return len(ingest.ingestedFiles()) > 0
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, path, ingest.ingestedFiles()[0])

	require.NoError(t, os.Remove(path))
	assert.Eventually(t, func() bool {
		return len(ingest.removedFiles()) > 0
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, path, ingest.removedFiles()[0])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchPolicies_IgnoresHiddenFiles(t *testing.T) {
	assert.True(t, hidden("/policies/.refund.md.swp"))
	assert.True(t, hidden("/policies/refund.md~"))
	assert.False(t, hidden("/policies/refund.md"))
}
