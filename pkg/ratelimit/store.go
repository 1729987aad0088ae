package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces rate limit state stored in Redis.
// The full key is RedisKeyPrefix + username.
const RedisKeyPrefix = "github:rate_limit:"

// Store persists the most recently observed rate limit.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the stored rate limit, or nil if nothing was stored yet.
	Load(ctx context.Context) (*RateLimit, error)

	// Save replaces the stored rate limit.
	Save(ctx context.Context, rl *RateLimit) error
}

// MemoryStore keeps the rate limit in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	state *RateLimit
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) (*RateLimit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil, nil
	}
	cp := *s.state
	return &cp, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, rl *RateLimit) error {
	if rl == nil {
		return fmt.Errorf("rate limit cannot be nil")
	}
	cp := *rl
	s.mu.Lock()
	s.state = &cp
	s.mu.Unlock()
	return nil
}

// RedisStore shares the rate limit between processes that use the same
// credentials. GitHub accounts the quota per user, so the key is per user.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// NewRedisStore creates a Redis-backed store for the given username.
func NewRedisStore(redisClient *redis.Client, username string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		key:   RedisKeyPrefix + username,
	}
}

// Key returns the Redis key this store writes to.
func (s *RedisStore) Key() string {
	return s.key
}

// Load implements Store.
func (s *RedisStore) Load(ctx context.Context) (*RateLimit, error) {
	fields, err := s.redis.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	parse := func(name string) (uint64, error) {
		v, err := strconv.ParseUint(fields[name], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", name, err)
		}
		return v, nil
	}

	limit, err := parse("limit")
	if err != nil {
		return nil, err
	}
	remaining, err := parse("remaining")
	if err != nil {
		return nil, err
	}
	reset, err := parse("reset")
	if err != nil {
		return nil, err
	}

	return &RateLimit{Limit: limit, Remaining: remaining, Reset: reset}, nil
}

// Save implements Store. The entry expires shortly after the window resets,
// since a stale quota says nothing about the next window.
func (s *RedisStore) Save(ctx context.Context, rl *RateLimit) error {
	if rl == nil {
		return fmt.Errorf("rate limit cannot be nil")
	}

	pipe := s.redis.TxPipeline()
	pipe.HSet(ctx, s.key,
		"limit", rl.Limit,
		"remaining", rl.Remaining,
		"reset", rl.Reset,
	)
	pipe.ExpireAt(ctx, s.key, rl.ResetAt().Add(time.Minute))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}
	return nil
}
