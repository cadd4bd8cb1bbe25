// Package anthropic provides an LLM service adapter using the Anthropic
// messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/httpclient"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-5-20250929"
	DefaultMaxTokens = 1024

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic LLM service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the chat model to use.
	Model string

	// Transport configures timeouts, retry and rate limiting.
	Transport httpclient.Config
}

// LLMService provides chat operations using Anthropic.
type LLMService struct {
	client  *httpclient.Client
	baseURL string
	apiKey  string
	model   string
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature *float64          `json:"temperature,omitempty"`
	StopSeqs    []string          `json:"stop_sequences,omitempty"`
	Tools       []tool            `json:"tools,omitempty"`
	ToolChoice  map[string]any    `json:"tool_choice,omitempty"`
}

type messagesMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

// contentBlock covers the text, tool_use and tool_result block types.
// Input is an interface so an empty tool_use input still serialises.
type contentBlock struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Input     any    `json:"input,omitempty"`
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

type tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// NewLLMService creates a new Anthropic LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &LLMService{
		client:  httpclient.New(cfg.Transport),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Generate produces a completion for a single prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := messagesRequest{
		Model:       s.model,
		Messages:    []messagesMessage{{Role: "user", Content: []contentBlock{{Type: "text", Text: prompt}}}},
		MaxTokens:   maxTokens(opts.MaxTokens),
		Temperature: &opts.Temperature,
		StopSeqs:    opts.StopWords,
	}
	msg, err := s.send(ctx, &req)
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// Chat conducts a multi-turn conversation, optionally offering tools.
// System messages are folded into the system parameter. Without tools the
// API rejects tool blocks, so earlier tool traffic is rendered as text.
func (s *LLMService) Chat(ctx context.Context, messages []domain.Message, opts driven.ChatOptions) (domain.Message, error) {
	withTools := len(opts.Tools) > 0
	system, msgs := toMessages(messages, withTools)

	req := messagesRequest{
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   maxTokens(opts.MaxTokens),
		System:      system,
		Temperature: &opts.Temperature,
	}
	if withTools {
		req.Tools = make([]tool, len(opts.Tools))
		for i, t := range opts.Tools {
			req.Tools[i] = tool{Name: t.Name, Description: t.Description, InputSchema: t.JSONSchema()}
		}
		req.ToolChoice = toolChoice(opts.ToolChoice)
	}

	return s.send(ctx, &req)
}

func (s *LLMService) send(ctx context.Context, req *messagesRequest) (domain.Message, error) {
	var resp messagesResponse
	if err := s.client.PostJSON(ctx, s.baseURL+"/v1/messages", s.headers(), req, &resp); err != nil {
		return domain.Message{}, fmt.Errorf("anthropic: %w", err)
	}
	if len(resp.Content) == 0 {
		return domain.Message{}, fmt.Errorf("anthropic: no response content returned")
	}

	msg := domain.Message{Role: domain.RoleAssistant}
	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args, _ := block.Input.(map[string]any)
			msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}
	msg.Content = text.String()
	return msg, nil
}

// toMessages splits out the system prompt and converts the rest to
// content blocks. Consecutive messages mapping to the same role are merged,
// since tool results travel as user turns.
func toMessages(messages []domain.Message, withTools bool) (string, []messagesMessage) {
	var system []string
	var out []messagesMessage

	appendBlocks := func(role string, blocks ...contentBlock) {
		if len(blocks) == 0 {
			return
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}
		out = append(out, messagesMessage{Role: role, Content: blocks})
	}

	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleUser:
			appendBlocks("user", textBlock(m.Content)...)
		case domain.RoleAssistant:
			blocks := textBlock(m.Content)
			for _, call := range m.ToolCalls {
				if withTools {
					input := call.Arguments
					if input == nil {
						input = map[string]any{}
					}
					blocks = append(blocks, contentBlock{Type: "tool_use", ID: call.ID, Name: call.Name, Input: input})
				} else {
					blocks = append(blocks, textBlock(describeCall(call))...)
				}
			}
			appendBlocks("assistant", blocks...)
		case domain.RoleTool:
			if withTools {
				appendBlocks("user", contentBlock{Type: "tool_result", ToolUseID: m.ToolCallID, Content: m.Content})
			} else {
				appendBlocks("user", textBlock(fmt.Sprintf("Result of %s:\n%s", m.Name, m.Content))...)
			}
		}
	}
	return strings.Join(system, "\n\n"), out
}

func textBlock(s string) []contentBlock {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []contentBlock{{Type: "text", Text: s}}
}

func describeCall(call domain.ToolCall) string {
	args, err := json.Marshal(call.Arguments)
	if err != nil || call.Arguments == nil {
		args = []byte("{}")
	}
	return fmt.Sprintf("Called %s with %s", call.Name, args)
}

func toolChoice(choice driven.ToolChoice) map[string]any {
	if name, ok := choice.ForcedTool(); ok {
		return map[string]any{"type": "tool", "name": name}
	}
	if choice == driven.ToolChoiceNone {
		return map[string]any{"type": "none"}
	}
	return map[string]any{"type": "auto"}
}

func maxTokens(n int) int {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return n
}

func (s *LLMService) headers() map[string]string {
	return map[string]string{
		"x-api-key":         s.apiKey,
		"anthropic-version": anthropicVersion,
	}
}

// ModelName returns the name of the chat model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Get(ctx, s.baseURL+"/v1/models", s.headers(), nil); err != nil {
		return fmt.Errorf("anthropic: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
