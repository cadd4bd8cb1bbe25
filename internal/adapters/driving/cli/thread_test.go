package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

func TestThreadShowCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	_, err := ts.assistant.Invoke(t.Context(), "t-1", "refund for order 7?")
	require.NoError(t, err)

	out, err := runCommand("", "thread", "show", "t-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Thread t-1 (last routed to rag_agent)")
	assert.Contains(t, out, "user: refund for order 7?")
	assert.Contains(t, out, "assistant: echo: refund for order 7?")
}

func TestThreadShowCmd_JSON(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	_, err := ts.assistant.Invoke(t.Context(), "t-2", "hello")
	require.NoError(t, err)

	out, err := runCommand("", "thread", "show", "--json", "t-2")
	require.NoError(t, err)

	var thread domain.Thread
	require.NoError(t, json.Unmarshal([]byte(out), &thread))
	assert.Equal(t, "t-2", thread.ID)
	assert.Len(t, thread.Messages, 2)
}

func TestThreadShowCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("", "thread", "show", "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "thread missing not found")
}

func TestThreadResetCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := runCommand("", "thread", "reset", "t-3")

	require.NoError(t, err)
	assert.Contains(t, out, "Thread t-3 cleared.")
	assert.Equal(t, []string{"t-3"}, ts.assistant.resets)
}
