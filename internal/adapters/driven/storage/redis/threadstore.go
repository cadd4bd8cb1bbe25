// Package redis provides a Redis-backed conversation thread store, so
// thread memory survives restarts and is shared between serve instances.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

// Ensure ThreadStore implements the interface.
var _ driven.ThreadStore = (*ThreadStore)(nil)

// DefaultPrefix namespaces every key.
const DefaultPrefix = "supportdesk"

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Prefix namespaces keys (default: supportdesk).
	Prefix string

	// TTL expires idle threads; 0 keeps them forever.
	TTL time.Duration
}

// ThreadStore keeps threads as a message list, a metadata hash and an
// entry in an index sorted by last update.
type ThreadStore struct {
	client *redisv9.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// Connect dials Redis, checks it answers and returns a store.
func Connect(ctx context.Context, cfg Config) (*ThreadStore, error) {
	client := redisv9.NewClient(&redisv9.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}

	return NewThreadStore(client, cfg.Prefix, cfg.TTL), nil
}

// NewThreadStore wraps an existing client.
func NewThreadStore(client *redisv9.Client, prefix string, ttl time.Duration) *ThreadStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &ThreadStore{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func (s *ThreadStore) messagesKey(id string) string { return s.prefix + ":thread:" + id + ":messages" }
func (s *ThreadStore) metaKey(id string) string     { return s.prefix + ":thread:" + id }
func (s *ThreadStore) indexKey() string             { return s.prefix + ":threads" }

// Get loads a thread.
func (s *ThreadStore) Get(ctx context.Context, id string) (*domain.Thread, error) {
	meta, err := s.client.HGetAll(ctx, s.metaKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get thread failed: %w", err)
	}
	if len(meta) == 0 {
		return nil, domain.ErrNotFound
	}

	raw, err := s.client.LRange(ctx, s.messagesKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get messages failed: %w", err)
	}

	t := &domain.Thread{
		ID:        id,
		Category:  domain.Category(meta["category"]),
		CreatedAt: parseUnixNano(meta["created_at"]),
		UpdatedAt: parseUnixNano(meta["updated_at"]),
		Messages:  make([]domain.Message, 0, len(raw)),
	}
	for i, item := range raw {
		var m domain.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("unmarshal message %d failed: %w", i, err)
		}
		t.Messages = append(t.Messages, m)
	}
	return t, nil
}

// Append adds messages atomically, creating the thread on first use.
func (s *ThreadStore) Append(ctx context.Context, id string, category domain.Category, messages ...domain.Message) error {
	if id == "" {
		return domain.ErrInvalidInput
	}

	payloads := make([]any, len(messages))
	for i, m := range messages {
		data, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message failed: %w", err)
		}
		payloads[i] = data
	}

	now := s.now().UnixNano()
	stamp := strconv.FormatInt(now, 10)
	_, err := s.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		if len(payloads) > 0 {
			pipe.RPush(ctx, s.messagesKey(id), payloads...)
		}
		pipe.HSetNX(ctx, s.metaKey(id), "created_at", stamp)
		pipe.HSet(ctx, s.metaKey(id), "updated_at", stamp)
		if category != "" {
			pipe.HSet(ctx, s.metaKey(id), "category", string(category))
		}
		pipe.ZAdd(ctx, s.indexKey(), redisv9.Z{Score: float64(now), Member: id})
		if s.ttl > 0 {
			pipe.Expire(ctx, s.messagesKey(id), s.ttl)
			pipe.Expire(ctx, s.metaKey(id), s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis append thread failed: %w", err)
	}
	return nil
}

// Delete forgets a thread. Missing IDs are ignored.
func (s *ThreadStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redisv9.Pipeliner) error {
		pipe.Del(ctx, s.messagesKey(id), s.metaKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete thread failed: %w", err)
	}
	return nil
}

// List returns thread IDs, most recently updated first. Index entries
// whose thread has expired are pruned.
func (s *ThreadStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list threads failed: %w", err)
	}
	if s.ttl <= 0 {
		return ids, nil
	}

	live := ids[:0]
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, s.metaKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis check thread failed: %w", err)
		}
		if exists > 0 {
			live = append(live, id)
			continue
		}
		if err := s.client.ZRem(ctx, s.indexKey(), id).Err(); err != nil && !errors.Is(err, redisv9.Nil) {
			return nil, fmt.Errorf("redis prune thread failed: %w", err)
		}
	}
	return live, nil
}

// Close closes the client.
func (s *ThreadStore) Close() error {
	return s.client.Close()
}

func parseUnixNano(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, n)
}
