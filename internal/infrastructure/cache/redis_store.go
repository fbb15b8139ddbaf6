package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "bizhub:cache:"
	orderKeySuffix     = "__order"
	scanBatch          = 200
)

// RedisStore keeps entries as plain keys with SET EX and tracks insertion
// order in a Redis list so capacity eviction stays FIFO across processes
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	capacity int
}

// NewRedisStore wraps an existing client. keyPrefix namespaces every key.
func NewRedisStore(client redis.UniversalClient, keyPrefix string, capacity int) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultRedisPrefix
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RedisStore{client: client, prefix: keyPrefix, capacity: capacity}
}

func (s *RedisStore) orderKey() string {
	return s.prefix + orderKeySuffix
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	full := s.prefix + key
	err := s.client.SetArgs(ctx, full, value, redis.SetArgs{TTL: ClampTTL(ttl), Get: true}).Err()
	switch {
	case errors.Is(err, redis.Nil):
		// new key, or one that had expired: (re)append to the order list
		if _, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.LRem(ctx, s.orderKey(), 0, full)
			p.RPush(ctx, s.orderKey(), full)
			return nil
		}); err != nil {
			return fmt.Errorf("redis track order: %w", err)
		}
	case err != nil:
		return fmt.Errorf("redis set: %w", err)
	default:
		// overwrite keeps its position
		return nil
	}
	return s.evict(ctx)
}

func (s *RedisStore) evict(ctx context.Context) error {
	n, err := s.client.LLen(ctx, s.orderKey()).Result()
	if err != nil {
		return fmt.Errorf("redis llen: %w", err)
	}
	for ; n > int64(s.capacity); n-- {
		oldest, err := s.client.LPop(ctx, s.orderKey()).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis lpop: %w", err)
		}
		if err := s.client.Del(ctx, oldest).Err(); err != nil {
			return fmt.Errorf("redis evict: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Invalidate(ctx context.Context, prefix string) (int, error) {
	match := escapeGlob(s.prefix+prefix) + "*"
	orderKey := s.orderKey()
	removed := 0

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return removed, fmt.Errorf("redis scan: %w", err)
		}
		keys = dropKey(keys, orderKey)
		if len(keys) > 0 {
			cmds, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Del(ctx, keys...)
				for _, k := range keys {
					p.LRem(ctx, orderKey, 0, k)
				}
				return nil
			})
			if err != nil {
				return removed, fmt.Errorf("redis invalidate: %w", err)
			}
			removed += int(cmds[0].(*redis.IntCmd).Val())
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

func dropKey(keys []string, drop string) []string {
	out := keys[:0]
	for _, k := range keys {
		if k != drop {
			out = append(out, k)
		}
	}
	return out
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ Store = (*RedisStore)(nil)
