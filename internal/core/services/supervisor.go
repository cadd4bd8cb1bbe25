package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// Ensure Supervisor implements the interface.
var _ driving.Assistant = (*Supervisor)(nil)

// Supervisor runs the turn graph ROUTER -> {SQL | RAG | GENERAL} -> END
// with per-thread conversation memory.
type Supervisor struct {
	router  driving.Router
	agents  map[domain.Category]driving.Agent
	threads driven.ThreadStore

	mu    sync.Mutex
	locks map[string]*threadLock
}

// threadLock serialises turns on one thread.
type threadLock struct {
	mu   sync.Mutex
	refs int
}

// NewSupervisor creates the orchestration graph.
// Every category must have exactly one agent.
func NewSupervisor(router driving.Router, threads driven.ThreadStore, agents ...driving.Agent) (*Supervisor, error) {
	byCategory := make(map[domain.Category]driving.Agent, len(agents))
	for _, a := range agents {
		if _, dup := byCategory[a.Category()]; dup {
			return nil, fmt.Errorf("%w: duplicate agent for %s", domain.ErrInvalidInput, a.Category())
		}
		byCategory[a.Category()] = a
	}
	for _, c := range domain.AllCategories() {
		if _, ok := byCategory[c]; !ok {
			return nil, fmt.Errorf("%w: no agent for %s", domain.ErrInvalidInput, c)
		}
	}

	return &Supervisor{
		router:  router,
		agents:  byCategory,
		threads: threads,
		locks:   make(map[string]*threadLock),
	}, nil
}

// Invoke answers one user message within a thread.
// A blank message returns the fallback response under CategoryGeneral with
// no model call and no change to memory. Nothing is committed to memory
// when the turn fails.
func (s *Supervisor) Invoke(ctx context.Context, threadID, message string) (*domain.Answer, error) {
	threadID = strings.TrimSpace(threadID)
	if threadID == "" {
		threadID = uuid.NewString()
	}
	if strings.TrimSpace(message) == "" {
		return &domain.Answer{ThreadID: threadID, Response: domain.FallbackResponse, Category: domain.CategoryGeneral}, nil
	}

	unlock := s.lock(threadID)
	defer unlock()

	logger.Section("Turn " + threadID)

	history, err := s.history(ctx, threadID)
	if err != nil {
		return nil, err
	}
	user := domain.NewUserMessage(message)
	messages := append(history, user)

	category, err := s.router.Classify(ctx, messages)
	if err != nil {
		logger.Error("Routing failed for thread %s: %v", threadID, err)
		return nil, fmt.Errorf("classify: %w", err)
	}

	agent := s.agents[category]
	reply, err := agent.Run(ctx, messages)
	if err != nil {
		logger.Error("%s failed for thread %s: %v", category.AgentName(), threadID, err)
		return nil, fmt.Errorf("%s: %w", category.AgentName(), err)
	}

	response := strings.TrimSpace(reply.Content)
	if response == "" {
		logger.Warn("%s produced no answer, using fallback", category.AgentName())
		response = domain.FallbackResponse
	}

	if err := s.threads.Append(ctx, threadID, category, user, domain.NewAssistantMessage(response)); err != nil {
		return nil, fmt.Errorf("save thread %s: %w", threadID, err)
	}

	return &domain.Answer{ThreadID: threadID, Response: response, Category: category}, nil
}

// History returns the committed messages of a thread.
func (s *Supervisor) History(ctx context.Context, threadID string) (*domain.Thread, error) {
	return s.threads.Get(ctx, threadID)
}

// Reset clears a thread's memory.
func (s *Supervisor) Reset(ctx context.Context, threadID string) error {
	unlock := s.lock(threadID)
	defer unlock()
	return s.threads.Delete(ctx, threadID)
}

// history loads prior messages, treating an unknown thread as empty.
func (s *Supervisor) history(ctx context.Context, threadID string) ([]domain.Message, error) {
	thread, err := s.threads.Get(ctx, threadID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}
	return append([]domain.Message(nil), thread.Messages...), nil
}

// lock acquires the per-thread lock and returns its release function.
// Locks are dropped once no turn holds or waits on them.
func (s *Supervisor) lock(threadID string) func() {
	s.mu.Lock()
	l, ok := s.locks[threadID]
	if !ok {
		l = &threadLock{}
		s.locks[threadID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, threadID)
		}
		s.mu.Unlock()
	}
}
