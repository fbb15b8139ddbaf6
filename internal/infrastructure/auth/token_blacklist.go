package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes JWTs before they expire. Logout revokes one token
// by JTI; deactivation revokes every token issued to a user up to now.
// Entries only need to live as long as the tokens they cover, so every
// write carries a TTL.
type TokenBlacklist interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	RevokeUser(ctx context.Context, userID string, ttl time.Duration) error
	// IsUserRevoked reports whether a token issued at issuedAt predates the
	// user's last revocation. JWT iat has second precision, so the
	// comparison is in whole seconds.
	IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

func issuedBefore(issuedAt, revokedAt time.Time) bool {
	return issuedAt.Unix() <= revokedAt.Unix()
}

const blacklistPrefix = "bizhub:auth:blacklist:"

// RedisTokenBlacklist keeps revocations in Redis so every API instance
// sees them
type RedisTokenBlacklist struct {
	client redis.UniversalClient
	now    func() time.Time
}

func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client, now: time.Now}
}

func tokenKey(jti string) string   { return blacklistPrefix + "jti:" + jti }
func userKey(userID string) string { return blacklistPrefix + "user:" + userID }

func (b *RedisTokenBlacklist) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, tokenKey(jti), 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, tokenKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}

func (b *RedisTokenBlacklist) RevokeUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userKey(userID), b.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revoke user %s: %w", userID, err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsUserRevoked(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, userKey(userID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check revoked user %s: %w", userID, err)
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse revocation time %q: %w", raw, err)
	}
	return issuedBefore(issuedAt, time.Unix(sec, 0)), nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist is the single-instance fallback when Redis is not
// configured. Revocations do not survive a restart.
type InMemoryTokenBlacklist struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[string]time.Time // jti -> entry expiry
	users  map[string]userRevocation
}

type userRevocation struct {
	at      time.Time
	expires time.Time
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		now:    time.Now,
		tokens: make(map[string]time.Time),
		users:  make(map[string]userRevocation),
	}
}

func (b *InMemoryTokenBlacklist) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = b.now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expires, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if !b.now().Before(expires) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) RevokeUser(_ context.Context, userID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.users[userID] = userRevocation{at: now, expires: now.Add(ttl)}
	return nil
}

func (b *InMemoryTokenBlacklist) IsUserRevoked(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.users[userID]
	if !ok {
		return false, nil
	}
	if !b.now().Before(r.expires) {
		delete(b.users, userID)
		return false, nil
	}
	return issuedBefore(issuedAt, r.at), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
