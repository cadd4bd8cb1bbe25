package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// chatCall records one Chat invocation.
type chatCall struct {
	messages []domain.Message
	opts     driven.ChatOptions
}

// scriptedLLM implements driven.LLMService. Each Chat call pops the next
// scripted reply; when the script runs out, respond is consulted.
type scriptedLLM struct {
	mu      sync.Mutex
	replies []domain.Message
	errs    []error
	respond func(messages []domain.Message, opts driven.ChatOptions) (domain.Message, error)
	calls   []chatCall
}

func newScriptedLLM(replies ...domain.Message) *scriptedLLM {
	return &scriptedLLM{replies: replies}
}

func (l *scriptedLLM) Chat(_ context.Context, messages []domain.Message, opts driven.ChatOptions) (domain.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, chatCall{
		messages: append([]domain.Message(nil), messages...),
		opts:     opts,
	})

	if len(l.errs) > 0 {
		err := l.errs[0]
		l.errs = l.errs[1:]
		if err != nil {
			return domain.Message{}, err
		}
	}
	if len(l.replies) > 0 {
		reply := l.replies[0]
		l.replies = l.replies[1:]
		return reply, nil
	}
	if l.respond != nil {
		return l.respond(messages, opts)
	}
	return domain.NewAssistantMessage("ok"), nil
}

func (l *scriptedLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reply, err := l.Chat(ctx, []domain.Message{domain.NewUserMessage(prompt)}, driven.ChatOptions{MaxTokens: opts.MaxTokens})
	return reply.Content, err
}

func (l *scriptedLLM) ModelName() string            { return "scripted" }
func (l *scriptedLLM) Ping(_ context.Context) error { return nil }
func (l *scriptedLLM) Close() error                 { return nil }

func (l *scriptedLLM) callCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.calls)
}

func (l *scriptedLLM) call(i int) chatCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[i]
}

// toolCallReply builds an assistant message requesting tool calls.
func toolCallReply(calls ...domain.ToolCall) domain.Message {
	return domain.Message{Role: domain.RoleAssistant, ToolCalls: calls}
}

func callTool(id, name, query string) domain.ToolCall {
	return domain.ToolCall{ID: id, Name: name, Arguments: map[string]any{"query": query}}
}

// mockLexicalIndex implements driven.LexicalIndex.
type mockLexicalIndex struct {
	mu      sync.Mutex
	hits    []driven.SearchHit
	err     error
	count   int
	indexed map[string]domain.Chunk
	limits  []int
	// failOn makes Index fail for chunks with this content.
	failOn string
}

func newMockLexicalIndex() *mockLexicalIndex {
	return &mockLexicalIndex{indexed: make(map[string]domain.Chunk)}
}

func (m *mockLexicalIndex) Index(_ context.Context, chunk domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && chunk.Content == m.failOn {
		return errors.New("index rejected chunk")
	}
	m.indexed[chunk.ID] = chunk
	return nil
}

func (m *mockLexicalIndex) Delete(_ context.Context, chunkID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexed, chunkID)
	return nil
}

func (m *mockLexicalIndex) Search(_ context.Context, _ string, limit int) ([]driven.SearchHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.limits = append(m.limits, limit)
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func (m *mockLexicalIndex) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count > 0 {
		return m.count
	}
	return len(m.indexed)
}

func (m *mockLexicalIndex) Close() error { return nil }

// mockVectorIndex implements driven.VectorIndex.
type mockVectorIndex struct {
	mu      sync.Mutex
	hits    []driven.VectorHit
	err     error
	count   int
	vectors map[string][]float32
}

func newMockVectorIndex() *mockVectorIndex {
	return &mockVectorIndex{vectors: make(map[string][]float32)}
}

func (m *mockVectorIndex) Add(_ context.Context, id string, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[id] = embedding
	return nil
}

func (m *mockVectorIndex) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vectors, id)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.count > 0 {
		return m.count
	}
	return len(m.vectors)
}

func (m *mockVectorIndex) Close() error { return nil }

// mockEmbeddingService implements driven.EmbeddingService.
type mockEmbeddingService struct {
	embedding []float32
	err       error
	dims      int
}

func (e *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	if e.embedding != nil {
		return e.embedding, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		emb, err := e.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = emb
	}
	return out, nil
}

func (e *mockEmbeddingService) Dimensions() int {
	if e.dims > 0 {
		return e.dims
	}
	return 3
}

func (e *mockEmbeddingService) ModelName() string            { return "mock" }
func (e *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (e *mockEmbeddingService) Close() error                 { return nil }

// mockReranker implements driven.Reranker.
type mockReranker struct {
	scores []float64
	err    error
	calls  int
}

func (r *mockReranker) Rerank(_ context.Context, _ string, passages []string) ([]float64, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if r.scores != nil {
		return r.scores, nil
	}
	return make([]float64, len(passages)), nil
}

func (r *mockReranker) Name() string { return "mock" }

// mockRetriever implements driving.Retriever.
type mockRetriever struct {
	mu      sync.Mutex
	result  *domain.RetrievalResult
	err     error
	queries []string
}

func (r *mockRetriever) Retrieve(_ context.Context, query string, _ int) (*domain.RetrievalResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, r.err
	}
	if r.result != nil {
		return r.result, nil
	}
	return &domain.RetrievalResult{Query: query, Strategy: domain.StrategyNone}, nil
}

// mockSupportStore implements driven.SupportStore over fixed data.
type mockSupportStore struct {
	mu        sync.Mutex
	customers []domain.Customer
	tickets   []domain.Ticket
	result    *domain.QueryResult
	queryErr  error
	queries   []string
	sample    *domain.QueryResult
	sampleErr error
	created   []domain.Ticket
	inserted  [][]any
	columns   []string
	counts    map[string]int
	insertErr error
}

func newMockSupportStore() *mockSupportStore {
	return &mockSupportStore{counts: make(map[string]int)}
}

func (s *mockSupportStore) Query(_ context.Context, q string) (*domain.QueryResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.result != nil {
		return s.result, nil
	}
	return &domain.QueryResult{Columns: []string{"n"}, Rows: [][]any{{int64(1)}}}, nil
}

func (s *mockSupportStore) SampleRows(_ context.Context, _ string, _ int) (*domain.QueryResult, error) {
	if s.sampleErr != nil {
		return nil, s.sampleErr
	}
	if s.sample != nil {
		return s.sample, nil
	}
	return &domain.QueryResult{}, nil
}

func (s *mockSupportStore) FindCustomers(_ context.Context, name string) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, c := range s.customers {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *mockSupportStore) GetCustomer(_ context.Context, id int64) (*domain.Customer, error) {
	for _, c := range s.customers {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *mockSupportStore) ListTickets(_ context.Context, customerID int64) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, t := range s.tickets {
		if t.CustomerID == customerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *mockSupportStore) CreateTicket(_ context.Context, t *domain.Ticket) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	t.ID = int64(100 + len(s.created))
	s.created = append(s.created, *t)
	return t.ID, nil
}

func (s *mockSupportStore) InsertRows(_ context.Context, table string, columns []string, rows [][]any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	s.columns = columns
	s.inserted = append(s.inserted, rows...)
	s.counts[table] += len(rows)
	return len(rows), nil
}

func (s *mockSupportStore) CountRows(_ context.Context, table string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[table], nil
}

func (s *mockSupportStore) InitSchema(_ context.Context) error { return nil }
func (s *mockSupportStore) Close() error                       { return nil }

// failingThreadStore wraps a thread store and fails every Append.
type failingThreadStore struct {
	driven.ThreadStore
}

func (f *failingThreadStore) Append(context.Context, string, domain.Category, ...domain.Message) error {
	return errors.New("disk full")
}

// staticRouter implements driving.Router with a fixed answer.
type staticRouter struct {
	mu       sync.Mutex
	category domain.Category
	err      error
	seen     [][]domain.Message
}

func (r *staticRouter) Classify(_ context.Context, messages []domain.Message) (domain.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, append([]domain.Message(nil), messages...))
	return r.category, r.err
}

// echoAgent implements driving.Agent and answers with a fixed reply.
type echoAgent struct {
	mu       sync.Mutex
	category domain.Category
	reply    string
	err      error
	runs     int
	hook     func()
}

func (a *echoAgent) Category() domain.Category { return a.category }

func (a *echoAgent) Run(_ context.Context, _ []domain.Message) (domain.Message, error) {
	if a.hook != nil {
		a.hook()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runs++
	if a.err != nil {
		return domain.Message{}, a.err
	}
	return domain.NewAssistantMessage(a.reply), nil
}
