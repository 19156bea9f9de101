package csrf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Store keeps one token per session.
type Store interface {
	// GetOrCreate stores candidate for sessionID unless a token already
	// exists, and returns the token that is stored.
	GetOrCreate(ctx context.Context, sessionID, candidate string) (string, error)
	// Get returns the stored token or "" when there is none.
	Get(ctx context.Context, sessionID string) (string, error)
}

// MemoryStore keeps tokens in process memory. Tokens are not shared
// between server processes.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, sessionID, candidate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[sessionID]; ok {
		return t, nil
	}
	s.tokens[sessionID] = candidate
	return candidate, nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[sessionID], nil
}

// RedisStore keeps tokens in Redis so every worker sees the same token.
// SETNX makes concurrent first requests agree on a single token.
type RedisStore struct {
	rdb    goredis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb goredis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "coursevault:csrf:"}
}

func (s *RedisStore) key(sessionID string) string { return s.prefix + sessionID }

func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID, candidate string) (string, error) {
	// The existing token may expire between SETNX and GET; one retry covers it.
	for range 2 {
		ok, err := s.rdb.SetNX(ctx, s.key(sessionID), candidate, s.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return candidate, nil
		}
		t, err := s.Get(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if t != "" {
			return t, nil
		}
	}
	return "", errors.New("csrf: token vanished during creation")
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (string, error) {
	t, err := s.rdb.Get(ctx, s.key(sessionID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return t, nil
}
