package driving

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// Assistant answers one user turn at a time within a conversation thread.
type Assistant interface {
	// Invoke routes the message to a specialist and returns its answer.
	// A blank threadID starts a new thread whose id is returned in the answer.
	// Classification failures are returned as errors wrapping domain.ErrClassification.
	Invoke(ctx context.Context, threadID, message string) (*domain.Answer, error)

	// History returns the committed messages of a thread.
	History(ctx context.Context, threadID string) (*domain.Thread, error)

	// Reset clears a thread's memory.
	Reset(ctx context.Context, threadID string) error
}

// Agent is a specialist that runs a bounded tool loop over a message list.
type Agent interface {
	// Category returns the routing category this agent serves.
	Category() domain.Category

	// Run returns the final assistant message for the turn. A list with no
	// user message yields a zero Message and no model call.
	Run(ctx context.Context, messages []domain.Message) (domain.Message, error)
}

// Router assigns a routing category to the latest user turn.
type Router interface {
	Classify(ctx context.Context, messages []domain.Message) (domain.Category, error)
}
