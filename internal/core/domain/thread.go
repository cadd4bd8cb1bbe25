package domain

import "time"

// FallbackResponse is returned when a specialist produces no assistant message.
const FallbackResponse = "I was unable to process your request."

// Thread is a conversation keyed by an opaque thread id.
// Messages are append-only; Category holds the last routing decision.
type Thread struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	Category  Category  `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsEmpty reports whether the thread has no messages.
func (t *Thread) IsEmpty() bool {
	return len(t.Messages) == 0
}

// Answer is the result of one turn.
type Answer struct {
	ThreadID string   `json:"thread_id"`
	Response string   `json:"response"`
	Category Category `json:"category"`
}
