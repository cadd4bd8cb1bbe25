package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

func routeReply(category string) domain.Message {
	return toolCallReply(domain.ToolCall{
		ID: "r1", Name: routeTool, Arguments: map[string]any{"category": category},
	})
}

func TestRouter_Classify_ToolCall(t *testing.T) {
	tests := []struct {
		label string
		want  domain.Category
	}{
		{"sql", domain.CategorySQL},
		{"rag", domain.CategoryRAG},
		{"general", domain.CategoryGeneral},
		{"  RAG ", domain.CategoryRAG},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			llm := newScriptedLLM(routeReply(tt.label))
			router := NewRouter(llm, nil, domain.LLMSettings{MaxTokens: 64})

			got, err := router.Classify(context.Background(), []domain.Message{
				domain.NewUserMessage("What is the refund policy?"),
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRouter_Classify_SendsForcedRouteTool(t *testing.T) {
	llm := newScriptedLLM(routeReply("sql"))
	router := NewRouter(llm, nil, domain.LLMSettings{MaxTokens: 64, Temperature: 0})

	history := []domain.Message{
		domain.NewUserMessage("hi"),
		domain.NewAssistantMessage("Hello!"),
		domain.NewUserMessage("How many tickets are open?"),
	}
	_, err := router.Classify(context.Background(), history)
	require.NoError(t, err)

	require.Equal(t, 1, llm.callCount())
	call := llm.call(0)

	require.Len(t, call.messages, 2)
	assert.Equal(t, domain.RoleSystem, call.messages[0].Role)
	assert.Equal(t, DefaultPrompts()[driven.PromptRouter], call.messages[0].Content)
	assert.Equal(t, "How many tickets are open?", call.messages[1].Content)

	forced, ok := call.opts.ToolChoice.ForcedTool()
	assert.True(t, ok)
	assert.Equal(t, routeTool, forced)
	require.Len(t, call.opts.Tools, 1)
	assert.Equal(t, []string{"sql", "rag", "general"}, call.opts.Tools[0].Parameters[0].Enum)
	assert.Equal(t, 64, call.opts.MaxTokens)
}

func TestRouter_Classify_TextFallback(t *testing.T) {
	llm := newScriptedLLM(domain.NewAssistantMessage("general"))
	router := NewRouter(llm, nil, domain.LLMSettings{})

	got, err := router.Classify(context.Background(), []domain.Message{domain.NewUserMessage("hello")})

	require.NoError(t, err)
	assert.Equal(t, domain.CategoryGeneral, got)
}

func TestRouter_Classify_NoUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		messages []domain.Message
	}{
		{"empty", nil},
		{"assistant only", []domain.Message{domain.NewAssistantMessage("hi")}},
		{"blank user", []domain.Message{domain.NewUserMessage("   ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := newScriptedLLM()
			router := NewRouter(llm, nil, domain.LLMSettings{})

			got, err := router.Classify(context.Background(), tt.messages)

			require.NoError(t, err)
			assert.Equal(t, domain.CategoryGeneral, got)
			assert.Zero(t, llm.callCount())
		})
	}
}

func TestRouter_Classify_Errors(t *testing.T) {
	t.Run("model error", func(t *testing.T) {
		llm := newScriptedLLM()
		llm.errs = []error{errors.New("connection refused")}
		router := NewRouter(llm, nil, domain.LLMSettings{})

		_, err := router.Classify(context.Background(), []domain.Message{domain.NewUserMessage("hi")})

		assert.ErrorIs(t, err, domain.ErrClassification)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("unknown label", func(t *testing.T) {
		llm := newScriptedLLM(routeReply("billing"))
		router := NewRouter(llm, nil, domain.LLMSettings{})

		_, err := router.Classify(context.Background(), []domain.Message{domain.NewUserMessage("hi")})

		assert.ErrorIs(t, err, domain.ErrClassification)
		assert.NotErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "billing")
	})

	t.Run("no model", func(t *testing.T) {
		router := NewRouter(nil, nil, domain.LLMSettings{})

		_, err := router.Classify(context.Background(), []domain.Message{domain.NewUserMessage("hi")})

		assert.ErrorIs(t, err, domain.ErrClassification)
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}
