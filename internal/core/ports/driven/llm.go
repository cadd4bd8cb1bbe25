// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// LLMService provides chat model operations for routing, agents and reranking.
//
// Implementations include:
//   - OpenAI (and compatible endpoints)
//   - Anthropic (Claude)
//   - Ollama (local models)
type LLMService interface {
	// Generate produces a text completion from a single prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a multi-turn conversation. The returned assistant
	// message carries either text content, tool calls, or both.
	Chat(ctx context.Context, messages []domain.Message, opts ChatOptions) (domain.Message, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// ToolChoice constrains how the model may use the offered tools.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide.
	ToolChoiceAuto ToolChoice = ""

	// ToolChoiceNone forbids tool calls.
	ToolChoiceNone ToolChoice = "none"
)

// ForceTool returns a choice that requires the named tool.
func ForceTool(name string) ToolChoice {
	return ToolChoice("tool:" + name)
}

// ForcedTool returns the tool name if the choice forces one.
func (c ToolChoice) ForcedTool() (string, bool) {
	const prefix = "tool:"
	if len(c) > len(prefix) && string(c[:len(prefix)]) == prefix {
		return string(c[len(prefix):]), true
	}
	return "", false
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness. Zero is sent explicitly.
	Temperature float64

	// Tools are offered to the model for this call.
	Tools []domain.ToolSpec

	// ToolChoice constrains tool use. Ignored when Tools is empty.
	ToolChoice ToolChoice
}
