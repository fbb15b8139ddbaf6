package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers processed message IDs so redelivered messages
// are handled once
type IdempotencyStore interface {
	// MarkProcessed records id for ttl and reports whether it was new
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// MemoryIdempotencyStore is a process-local IdempotencyStore. Expired IDs
// are pruned whenever the map doubles past its last pruned size.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	pruneAt int
	now     func() time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		seen:    make(map[string]time.Time),
		pruneAt: 1024,
		now:     time.Now,
	}
}

func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.seen[id]; ok && now.Before(exp) {
		return false, nil
	}
	s.seen[id] = now.Add(ttl)
	if len(s.seen) >= s.pruneAt {
		for k, exp := range s.seen {
			if !now.Before(exp) {
				delete(s.seen, k)
			}
		}
		s.pruneAt = max(1024, 2*len(s.seen))
	}
	return true, nil
}

// RedisIdempotencyStore shares processed IDs across consumers with SETNX
type RedisIdempotencyStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisIdempotencyStore(client redis.UniversalClient, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "bizhub:processed:"
	}
	return &RedisIdempotencyStore{client: client, prefix: keyPrefix}
}

func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+id, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

var (
	_ IdempotencyStore = (*MemoryIdempotencyStore)(nil)
	_ IdempotencyStore = (*RedisIdempotencyStore)(nil)
)
