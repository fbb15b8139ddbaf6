package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 3 * time.Second

// NewRedisClient connects to Redis and verifies the connection with PING
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("redis host not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// NewStore builds the configured response store. The redis backend falls
// back to memory when Redis is unreachable; the returned client is nil in
// that case and must otherwise be closed by the caller.
func NewStore(ctx context.Context, cfg config.CacheConfig, redisCfg config.RedisConfig, logger *zap.Logger) (Store, *redis.Client) {
	if cfg.Backend == "redis" {
		client, err := NewRedisClient(ctx, redisCfg)
		if err == nil {
			logger.Info("Using Redis response cache", zap.String("addr", redisCfg.Addr()))
			return NewRedisStore(client, cfg.KeyPrefix, cfg.Capacity), client
		}
		logger.Warn("Redis unavailable, falling back to in-memory response cache", zap.Error(err))
	}
	return NewMemoryStore(cfg.Capacity), nil
}
