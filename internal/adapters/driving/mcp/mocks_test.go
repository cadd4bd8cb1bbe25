package mcp

import (
	"context"
	"io"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
)

type mockAssistant struct {
	answer   *domain.Answer
	thread   *domain.Thread
	err      error
	lastID   string
	lastText string
}

func (m *mockAssistant) Invoke(_ context.Context, threadID, message string) (*domain.Answer, error) {
	m.lastID, m.lastText = threadID, message
	return m.answer, m.err
}

func (m *mockAssistant) History(_ context.Context, _ string) (*domain.Thread, error) {
	return m.thread, m.err
}

func (m *mockAssistant) Reset(_ context.Context, _ string) error { return m.err }

type mockRetriever struct {
	result *domain.RetrievalResult
	err    error
	topN   int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, topN int) (*domain.RetrievalResult, error) {
	m.topN = topN
	return m.result, m.err
}

type mockSupport struct {
	text  string
	err   error
	draft domain.TicketDraft
}

func (m *mockSupport) LookupCustomer(_ context.Context, _ string) (string, error) { return m.text, m.err }
func (m *mockSupport) TicketHistory(_ context.Context, _ int64) (string, error)   { return m.text, m.err }

func (m *mockSupport) CreateTicket(_ context.Context, draft domain.TicketDraft) (string, error) {
	m.draft = draft
	return m.text, m.err
}

func (m *mockSupport) ImportCSV(_ context.Context, _ io.Reader) (*driving.ImportReport, error) {
	return nil, m.err
}

func (m *mockSupport) InitSchema(_ context.Context) error { return m.err }

type mockQuery struct{ schema string }

func (m *mockQuery) Run(_ context.Context, _ string) (*domain.QueryResult, error) { return nil, nil }
func (m *mockQuery) Schema(_ context.Context) string                              { return m.schema }
