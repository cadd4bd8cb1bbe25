package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(LLMConfig{APIKey: "sk-test", BaseURL: server.URL, Model: "gpt-test"})
	require.NoError(t, err)
	return svc
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestNewLLMService_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	require.Error(t, err)
}

func TestNewLLMService_Defaults(t *testing.T) {
	svc, err := NewLLMService(LLMConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLLMModel, svc.ModelName())
	assert.Equal(t, DefaultBaseURL, svc.baseURL)
}

func TestGenerate(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body := decodeRequest(t, r)
		assert.Equal(t, "gpt-test", body["model"])
		assert.InDelta(t, 0.0, body["temperature"], 1e-9)
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 1)
		assert.Equal(t, "hello", msgs[0].(map[string]any)["content"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hi there"}}]}`))
	})

	out, err := svc.Generate(context.Background(), "hello", driven.GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestChat_ForcedToolCall(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)

		tools := body["tools"].([]any)
		require.Len(t, tools, 1)
		fn := tools[0].(map[string]any)["function"].(map[string]any)
		assert.Equal(t, "route", fn["name"])
		params := fn["parameters"].(map[string]any)
		assert.Equal(t, "object", params["type"])

		choice := body["tool_choice"].(map[string]any)
		assert.Equal(t, "route", choice["function"].(map[string]any)["name"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":null,"tool_calls":[
			{"id":"call_1","type":"function","function":{"name":"route","arguments":"{\"category\":\"sql\"}"}}
		]}}]}`))
	})

	msg, err := svc.Chat(context.Background(), []domain.Message{domain.NewUserMessage("how many tickets?")},
		driven.ChatOptions{
			Tools: []domain.ToolSpec{{
				Name:       "route",
				Parameters: []domain.ToolParameter{{Name: "category", Type: "string", Required: true, Enum: []string{"sql", "rag", "general"}}},
			}},
			ToolChoice: driven.ForceTool("route"),
		})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, msg.Role)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "sql", msg.ToolCalls[0].StringArg("category"))
}

func TestChat_SendsToolHistory(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeRequest(t, r)
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 4)

		assistant := msgs[2].(map[string]any)
		calls := assistant["tool_calls"].([]any)
		fn := calls[0].(map[string]any)["function"].(map[string]any)
		assert.JSONEq(t, `{"query":"refunds"}`, fn["arguments"].(string))

		tool := msgs[3].(map[string]any)
		assert.Equal(t, "tool", tool["role"])
		assert.Equal(t, "c1", tool["tool_call_id"])

		assert.NotContains(t, body, "tools")
		assert.NotContains(t, body, "tool_choice")

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Refunds take 5 days."}}]}`))
	})

	call := domain.ToolCall{ID: "c1", Name: "search_documents", Arguments: map[string]any{"query": "refunds"}}
	history := []domain.Message{
		domain.NewSystemMessage("be helpful"),
		domain.NewUserMessage("refund policy?"),
		{Role: domain.RoleAssistant, ToolCalls: []domain.ToolCall{call}},
		domain.NewToolResultMessage(call, "[1] refunds within 5 days"),
	}

	msg, err := svc.Chat(context.Background(), history, driven.ChatOptions{ToolChoice: driven.ToolChoiceNone})
	require.NoError(t, err)
	assert.Equal(t, "Refunds take 5 days.", msg.Content)
	assert.False(t, msg.HasToolCalls())
}

func TestToolChoice(t *testing.T) {
	assert.Equal(t, "auto", toolChoice(driven.ToolChoiceAuto))
	assert.Equal(t, "none", toolChoice(driven.ToolChoiceNone))
	assert.IsType(t, map[string]any{}, toolChoice(driven.ForceTool("x")))
}

func TestChat_MalformedArguments(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"tool_calls":[
			{"id":"c","type":"function","function":{"name":"run_query","arguments":"{oops"}}
		]}}]}`))
	})

	_, err := svc.Chat(context.Background(), []domain.Message{domain.NewUserMessage("q")}, driven.ChatOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_query")
}

func TestChat_NoChoices(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := svc.Chat(context.Background(), []domain.Message{domain.NewUserMessage("q")}, driven.ChatOptions{})
	require.Error(t, err)
}

func TestChat_RateLimited(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := svc.Chat(context.Background(), []domain.Message{domain.NewUserMessage("q")}, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestPing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	require.NoError(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close())
}
