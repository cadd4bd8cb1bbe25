// Package ollama provides an LLM service adapter using a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/httpclient"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = "http://localhost:11434"
	DefaultLLMModel = "llama3.2"
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the chat model to use (default: llama3.2).
	Model string

	// Transport configures timeouts, retry and rate limiting.
	Transport httpclient.Config
}

// LLMService provides chat operations using Ollama.
type LLMService struct {
	client  *httpclient.Client
	baseURL string
	model   string
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Tools    []chatTool    `json:"tools,omitempty"`
	Options  *options      `json:"options,omitempty"`
}

type chatMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
}

type chatTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description,omitempty"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type chatToolCall struct {
	Function struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}

	return &LLMService{
		client:  httpclient.New(cfg.Transport),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

// Generate produces a completion for a single prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Options: &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.StopWords,
		},
	}

	var resp generateResponse
	if err := s.client.PostJSON(ctx, s.baseURL+"/api/generate", nil, req, &resp); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	return resp.Response, nil
}

// Chat conducts a multi-turn conversation, optionally offering tools.
// Ollama has no tool_choice: a forced tool is the only tool offered, with
// an instruction to call it, and ToolChoiceNone offers nothing.
func (s *LLMService) Chat(ctx context.Context, messages []domain.Message, opts driven.ChatOptions) (domain.Message, error) {
	req := chatRequest{
		Model:    s.model,
		Messages: toChatMessages(messages),
		Options:  &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature},
	}

	tools := opts.Tools
	if opts.ToolChoice == driven.ToolChoiceNone {
		tools = nil
	}
	if name, ok := opts.ToolChoice.ForcedTool(); ok {
		tools = filterTools(tools, name)
		req.Messages = append(req.Messages, chatMessage{
			Role:    "system",
			Content: fmt.Sprintf("Respond only by calling the %s tool.", name),
		})
	}
	for _, t := range tools {
		ct := chatTool{Type: "function"}
		ct.Function.Name = t.Name
		ct.Function.Description = t.Description
		ct.Function.Parameters = t.JSONSchema()
		req.Tools = append(req.Tools, ct)
	}

	var resp chatResponse
	if err := s.client.PostJSON(ctx, s.baseURL+"/api/chat", nil, req, &resp); err != nil {
		return domain.Message{}, fmt.Errorf("ollama: %w", err)
	}

	msg := domain.Message{Role: domain.RoleAssistant, Content: resp.Message.Content}
	for _, tc := range resp.Message.ToolCalls {
		// Ollama does not assign call IDs.
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        "call_" + uuid.NewString()[:8],
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg, nil
}

func toChatMessages(messages []domain.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		cm := chatMessage{Role: string(m.Role), Content: m.Content}
		if m.Role == domain.RoleTool {
			cm.ToolName = m.Name
		}
		for _, call := range m.ToolCalls {
			var tc chatToolCall
			tc.Function.Name = call.Name
			tc.Function.Arguments = call.Arguments
			cm.ToolCalls = append(cm.ToolCalls, tc)
		}
		out = append(out, cm)
	}
	return out
}

func filterTools(tools []domain.ToolSpec, name string) []domain.ToolSpec {
	for _, t := range tools {
		if t.Name == name {
			return []domain.ToolSpec{t}
		}
	}
	return nil
}

// ModelName returns the name of the chat model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks the Ollama server is reachable.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Get(ctx, s.baseURL+"/api/tags", nil, nil); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
