package dedup

import (
	"context"
	"errors"
	"time"

	"github.com/maypok86/otter"
	"github.com/redis/go-redis/v9"
)

// Store records keys with an expiry.
type Store interface {
	// SetIfAbsent stores key for ttl and reports whether it was absent.
	// Check and set happen atomically.
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryStore is a process-local Store backed by a bounded otter cache.
type MemoryStore struct {
	cache otter.CacheWithVariableTTL[string, struct{}]
}

// NewMemoryStore creates a store holding at most capacity live keys.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = 100_000
	}
	cache, err := otter.MustBuilder[string, struct{}](capacity).
		WithVariableTTL().
		Build()
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &MemoryStore{cache: cache}, nil
}

func (s *MemoryStore) SetIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return s.cache.SetIfAbsent(key, struct{}{}, ttl), nil
}

// Close stops the cache's background maintenance.
func (s *MemoryStore) Close() {
	s.cache.Close()
}

// SetNXer is the part of a go-redis client the RedisStore needs.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
}

// RedisStore shares the dedup window between instances through Redis.
type RedisStore struct {
	client SetNXer
}

func NewRedisStore(client SetNXer) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return ok, nil
}

// NewStore builds the store named by cfg.Driver. client is required for the
// redis driver and ignored otherwise.
func NewStore(cfg Config, client SetNXer) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(cfg.Capacity)
	case "redis":
		if client == nil {
			return nil, errors.Join(ErrStoreUnavailable, errors.New("redis client is nil"))
		}
		return NewRedisStore(client), nil
	default:
		return nil, ErrUnknownDriver
	}
}
