package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driven/storage/memory"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/services"
)

var errMockFailure = errors.New("mock failure")

type mockAssistant struct {
	mu       sync.Mutex
	messages []string
	resets   []string
	threads  map[string]*domain.Thread
	err      error
}

func newMockAssistant() *mockAssistant {
	return &mockAssistant{threads: make(map[string]*domain.Thread)}
}

func (m *mockAssistant) Invoke(_ context.Context, threadID, message string) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if threadID == "" {
		threadID = "generated-thread"
	}
	m.messages = append(m.messages, message)

	category := domain.CategoryGeneral
	if strings.Contains(strings.ToLower(message), "refund") {
		category = domain.CategoryRAG
	}
	response := "echo: " + message

	t, ok := m.threads[threadID]
	if !ok {
		t = &domain.Thread{ID: threadID}
		m.threads[threadID] = t
	}
	t.Messages = append(t.Messages, domain.NewUserMessage(message), domain.NewAssistantMessage(response))
	t.Category = category

	return &domain.Answer{ThreadID: threadID, Response: response, Category: category}, nil
}

func (m *mockAssistant) History(_ context.Context, threadID string) (*domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.threads[threadID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockAssistant) Reset(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, threadID)
	delete(m.threads, threadID)
	return nil
}

type mockRetriever struct {
	lastTopN int
	result   *domain.RetrievalResult
	err      error
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, topN int) (*domain.RetrievalResult, error) {
	m.lastTopN = topN
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RetrievalResult{
		Query:    query,
		Strategy: domain.StrategyHybrid.WithRerank(),
		Chunks: []domain.ScoredChunk{
			{Chunk: domain.Chunk{Source: "refund_policy.md", Page: 2, Content: "Refunds are issued within 30 days."}, Score: 0.912},
		},
	}, nil
}

type mockIngest struct {
	mu      sync.Mutex
	files   []string
	dirs    []string
	removed []string
	resets  int
	err     error
}

func (m *mockIngest) IngestFile(_ context.Context, path string) (*driving.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.files = append(m.files, path)
	return &driving.IngestResult{Source: path, DocumentID: "doc-1", Pages: 1, Chunks: 3}, nil
}

func (m *mockIngest) IngestDir(_ context.Context, dir string) ([]driving.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs = append(m.dirs, dir)
	return []driving.IngestResult{
		{Source: "faq.md", Pages: 1, Chunks: 4},
		{Source: "logo.png", Skipped: true, Reason: "unsupported file type"},
	}, m.err
}

func (m *mockIngest) Remove(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, path)
	return nil
}

func (m *mockIngest) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	return nil
}

func (m *mockIngest) Stats(_ context.Context) (*driving.CorpusStats, error) {
	return &driving.CorpusStats{Documents: 2, Chunks: 7, LexicalEntries: 7, VectorEntries: 7}, nil
}

func (m *mockIngest) ingestedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.files...)
}

func (m *mockIngest) removedFiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

type mockSupport struct {
	lastDraft domain.TicketDraft
	imported  []string
	initCalls int
}

func (m *mockSupport) LookupCustomer(_ context.Context, name string) (string, error) {
	return "Customer Name: " + name, nil
}

func (m *mockSupport) TicketHistory(_ context.Context, id int64) (string, error) {
	if id == 404 {
		return "No tickets found for customer ID 404", nil
	}
	return "Found 1 tickets:", nil
}

func (m *mockSupport) CreateTicket(_ context.Context, draft domain.TicketDraft) (string, error) {
	m.lastDraft = draft
	return "Ticket created successfully! Ticket ID: 11", nil
}

func (m *mockSupport) ImportCSV(_ context.Context, r io.Reader) (*driving.ImportReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	m.imported = append(m.imported, string(data))
	return &driving.ImportReport{Table: "products", Inserted: 2, CountBefore: 3, CountAfter: 5}, nil
}

func (m *mockSupport) InitSchema(_ context.Context) error {
	m.initCalls++
	return nil
}

type mockQuery struct {
	last string
}

func (m *mockQuery) Run(_ context.Context, query string) (*domain.QueryResult, error) {
	m.last = query
	if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(query)), "SELECT") {
		return nil, domain.ErrPolicyViolation
	}
	return &domain.QueryResult{Columns: []string{"n"}, Rows: [][]any{{int64(3)}}}, nil
}

func (m *mockQuery) Schema(_ context.Context) string {
	return "Table: customers"
}

// testServices bundles the mocks installed by setupTestServices.
type testServices struct {
	assistant *mockAssistant
	retriever *mockRetriever
	ingest    *mockIngest
	support   *mockSupport
	query     *mockQuery
	settings  *services.SettingsService
}

// setupTestServices installs mock ports and an in-memory settings service.
// The returned func restores the previous state.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		assistant: newMockAssistant(),
		retriever: &mockRetriever{},
		ingest:    &mockIngest{},
		support:   &mockSupport{},
		query:     &mockQuery{},
		settings:  services.NewSettingsService(memory.NewConfigStore(), nil, nil),
	}

	oldBootstrap, oldSettings := bootstrap, settingsService
	SetBootstrap(func(context.Context) (*Services, error) {
		return &Services{
			Assistant: ts.assistant,
			Retriever: ts.retriever,
			Ingest:    ts.ingest,
			Support:   ts.support,
			Query:     ts.query,
		}, nil
	})
	SetSettingsService(ts.settings)

	return ts, func() {
		SetBootstrap(oldBootstrap)
		SetSettingsService(oldSettings)
	}
}

// resetFlags restores every command flag variable to its default.
func resetFlags() {
	askThread, askJSON = "", false
	chatThread = ""
	searchLimit, searchJSON = 0, false
	ingestWatch, ingestReset = false, false
	ticketDescription = ""
	ticketPriority = domain.DefaultTicketPriority
	ticketCategory = domain.DefaultTicketCategory
	threadJSON = false
	serveAddr = ":8080"
	verbose = false
}

// runCommand executes the root command with args and returns combined output.
func runCommand(stdin string, args ...string) (string, error) {
	resetFlags()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// lockedBuffer is a bytes.Buffer safe for concurrent writers.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
