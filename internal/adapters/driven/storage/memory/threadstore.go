package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// ThreadStore keeps conversation threads for the life of the process.
type ThreadStore struct {
	mu      sync.RWMutex
	threads map[string]*domain.Thread
	now     func() time.Time
}

// NewThreadStore creates an empty thread store.
func NewThreadStore() *ThreadStore {
	return &ThreadStore{
		threads: make(map[string]*domain.Thread),
		now:     time.Now,
	}
}

// Get returns a copy of the thread.
func (s *ThreadStore) Get(_ context.Context, id string) (*domain.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	cp.Messages = append([]domain.Message(nil), t.Messages...)
	return &cp, nil
}

// Append adds messages, creating the thread on first use.
func (s *ThreadStore) Append(_ context.Context, id string, category domain.Category, messages ...domain.Message) error {
	if id == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t, ok := s.threads[id]
	if !ok {
		t = &domain.Thread{ID: id, CreatedAt: now}
		s.threads[id] = t
	}
	t.Messages = append(t.Messages, messages...)
	if category != "" {
		t.Category = category
	}
	t.UpdatedAt = now
	return nil
}

// Delete forgets a thread. Missing IDs are ignored.
func (s *ThreadStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, id)
	return nil
}

// List returns thread IDs, most recently updated first.
func (s *ThreadStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]*domain.Thread, 0, len(s.threads))
	for _, t := range s.threads {
		threads = append(threads, t)
	}
	sort.Slice(threads, func(i, j int) bool {
		if !threads[i].UpdatedAt.Equal(threads[j].UpdatedAt) {
			return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
		}
		return threads[i].ID < threads[j].ID
	})

	ids := make([]string, len(threads))
	for i, t := range threads {
		ids[i] = t.ID
	}
	return ids, nil
}
