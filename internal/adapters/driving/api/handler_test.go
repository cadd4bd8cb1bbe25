package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/storage/memory"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/services"
)

type fakeAssistant struct {
	answer  *domain.Answer
	thread  *domain.Thread
	err     error
	reset   string
	message string
}

func (f *fakeAssistant) Invoke(_ context.Context, threadID, message string) (*domain.Answer, error) {
	f.message = message
	if f.err != nil {
		return nil, f.err
	}
	a := *f.answer
	if threadID != "" {
		a.ThreadID = threadID
	}
	return &a, nil
}

func (f *fakeAssistant) History(_ context.Context, _ string) (*domain.Thread, error) {
	return f.thread, f.err
}

func (f *fakeAssistant) Reset(_ context.Context, threadID string) error {
	f.reset = threadID
	return f.err
}

type fakeRetriever struct {
	result *domain.RetrievalResult
	err    error
}

func (f *fakeRetriever) Retrieve(_ context.Context, _ string, _ int) (*domain.RetrievalResult, error) {
	return f.result, f.err
}

func newServer(t *testing.T, ports Ports) *httptest.Server {
	t.Helper()
	router, err := NewRouter(ports, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestNewRouter_RequiresAssistant(t *testing.T) {
	_, err := NewRouter(Ports{}, nil)
	assert.ErrorIs(t, err, ErrMissingAssistant)
}

func TestHealth(t *testing.T) {
	srv := newServer(t, Ports{Assistant: &fakeAssistant{}})

	resp, body := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestChat(t *testing.T) {
	assistant := &fakeAssistant{answer: &domain.Answer{ThreadID: "new-thread", Response: "Refunds take 5 days.", Category: domain.CategoryRAG}}
	srv := newServer(t, Ports{Assistant: assistant})

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/chat", `{"message":"How long do refunds take?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "new-thread", body["thread_id"])
	assert.Equal(t, "Refunds take 5 days.", body["response"])
	assert.Equal(t, "rag", body["category"])
	assert.Equal(t, "How long do refunds take?", assistant.message)

	_, body = do(t, http.MethodPost, srv.URL+"/v1/chat", `{"thread_id":"t-7","message":"and exchanges?"}`)
	assert.Equal(t, "t-7", body["thread_id"])
}

func TestChat_BadInput(t *testing.T) {
	srv := newServer(t, Ports{Assistant: &fakeAssistant{answer: &domain.Answer{}}})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"message":`},
		{"missing message", `{"thread_id":"t"}`},
		{"unknown field", `{"message":"hi","extra":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/v1/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestChat_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"classification", fmt.Errorf("classify: %w", domain.ErrClassification), http.StatusBadGateway},
		{"classification wrapping invalid input", fmt.Errorf("%w: %w", domain.ErrClassification, domain.ErrInvalidInput), http.StatusBadGateway},
		{"model wrapping rate limit", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, domain.ErrRateLimited), http.StatusTooManyRequests},
		{"retrieval unavailable", domain.ErrSearchUnavailable, http.StatusServiceUnavailable},
		{"not found", domain.ErrNotFound, http.StatusNotFound},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"unexpected", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, Ports{Assistant: &fakeAssistant{err: tt.err}})
			resp, body := do(t, http.MethodPost, srv.URL+"/v1/chat", `{"message":"hi"}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}

// labelLLM answers every chat call with a plain-text label.
type labelLLM struct{ label string }

func (l labelLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	return l.label, nil
}

func (l labelLLM) Chat(context.Context, []domain.Message, driven.ChatOptions) (domain.Message, error) {
	return domain.NewAssistantMessage(l.label), nil
}

func (l labelLLM) ModelName() string          { return "label" }
func (l labelLLM) Ping(context.Context) error { return nil }
func (l labelLLM) Close() error               { return nil }

type stubAgent struct{ category domain.Category }

func (a stubAgent) Category() domain.Category { return a.category }

func (a stubAgent) Run(context.Context, []domain.Message) (domain.Message, error) {
	return domain.NewAssistantMessage("handled by " + a.category.String()), nil
}

func newRoutedAssistant(t *testing.T, label string) *services.Supervisor {
	t.Helper()
	var agents []driving.Agent
	for _, c := range domain.AllCategories() {
		agents = append(agents, stubAgent{category: c})
	}
	router := services.NewRouter(labelLLM{label: label}, nil, domain.LLMSettings{})
	supervisor, err := services.NewSupervisor(router, memory.NewThreadStore(), agents...)
	require.NoError(t, err)
	return supervisor
}

func TestChat_UnparseableRouteIsBadGateway(t *testing.T) {
	srv := newServer(t, Ports{Assistant: newRoutedAssistant(t, "billing")})

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/chat", `{"message":"Where is my invoice?"}`)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body["error"], "billing")
}

func TestChat_RoutedAnswer(t *testing.T) {
	srv := newServer(t, Ports{Assistant: newRoutedAssistant(t, "sql")})

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/chat", `{"message":"How many tickets are open?"}`)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "sql", body["category"])
	assert.Equal(t, "handled by sql", body["response"])
}

func TestThreads(t *testing.T) {
	assistant := &fakeAssistant{thread: &domain.Thread{
		ID:       "t-1",
		Messages: []domain.Message{domain.NewUserMessage("hi"), domain.NewAssistantMessage("hello")},
		Category: domain.CategoryGeneral,
	}}
	srv := newServer(t, Ports{Assistant: assistant})

	resp, body := do(t, http.MethodGet, srv.URL+"/v1/threads/t-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "t-1", body["id"])
	assert.Len(t, body["messages"], 2)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/v1/threads/t-1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "t-1", assistant.reset)
}

func TestThreads_NotFound(t *testing.T) {
	srv := newServer(t, Ports{Assistant: &fakeAssistant{err: domain.ErrNotFound}})

	resp, _ := do(t, http.MethodGet, srv.URL+"/v1/threads/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRetrieve(t *testing.T) {
	retriever := &fakeRetriever{result: &domain.RetrievalResult{
		Strategy: domain.StrategyLexical,
		Chunks: []domain.ScoredChunk{
			{Chunk: domain.Chunk{ID: "c1", Source: "shipping.md", Page: 1, Content: "Ships in 2 days."}, Score: 1},
		},
	}}
	srv := newServer(t, Ports{Assistant: &fakeAssistant{}, Retriever: retriever})

	resp, body := do(t, http.MethodPost, srv.URL+"/v1/retrieve", `{"query":"shipping","top_n":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "lexical", body["strategy"])
	chunks := body["chunks"].([]any)
	require.Len(t, chunks, 1)
	assert.Equal(t, "shipping.md", chunks[0].(map[string]any)["source"])

	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/retrieve", `{"query":"shipping","top_n":500}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	retriever.err = domain.ErrSearchUnavailable
	resp, _ = do(t, http.MethodPost, srv.URL+"/v1/retrieve", `{"query":"shipping"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRetrieve_NotConfigured(t *testing.T) {
	srv := newServer(t, Ports{Assistant: &fakeAssistant{}})

	resp, _ := do(t, http.MethodPost, srv.URL+"/v1/retrieve", `{"query":"x"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
