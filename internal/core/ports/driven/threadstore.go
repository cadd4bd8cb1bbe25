package driven

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// ThreadStore holds conversation memory keyed by thread id.
// Messages are append-only within a thread.
type ThreadStore interface {
	// Get returns the thread, or domain.ErrNotFound if it was never written.
	Get(ctx context.Context, id string) (*domain.Thread, error)

	// Append adds messages to the thread, creating it on first use,
	// and records the routing category of the turn.
	Append(ctx context.Context, id string, category domain.Category, messages ...domain.Message) error

	// Delete removes the thread. Deleting an unknown thread is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all known threads.
	List(ctx context.Context) ([]string, error)
}
