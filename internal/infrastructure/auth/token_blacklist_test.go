package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/auth"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newBlacklist() (*auth.InMemoryTokenBlacklist, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	b := auth.NewInMemoryTokenBlacklist()
	b.SetClock(clock.now)
	return b, clock
}

func TestInMemoryTokenBlacklist_RevokeToken(t *testing.T) {
	b, clock := newBlacklist()
	ctx := context.Background()

	require.NoError(t, b.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := b.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsTokenRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	clock.advance(time.Hour)
	revoked, err = b.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry lapses with the token it covers")
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	b, clock := newBlacklist()
	ctx := context.Background()
	before := clock.now().Add(-time.Hour)

	revoked, err := b.IsUserRevoked(ctx, "user-1", before)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.RevokeUser(ctx, "user-1", 2*time.Hour))

	t.Run("tokens issued up to the revocation second are revoked", func(t *testing.T) {
		revoked, err := b.IsUserRevoked(ctx, "user-1", before)
		require.NoError(t, err)
		assert.True(t, revoked)

		sameSecond := clock.now().Add(400 * time.Millisecond)
		revoked, err = b.IsUserRevoked(ctx, "user-1", sameSecond)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("tokens issued later stay valid", func(t *testing.T) {
		revoked, err := b.IsUserRevoked(ctx, "user-1", clock.now().Add(time.Second))
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("other users are unaffected", func(t *testing.T) {
		revoked, err := b.IsUserRevoked(ctx, "user-2", before)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("revocation lapses after its ttl", func(t *testing.T) {
		clock.advance(2 * time.Hour)
		revoked, err := b.IsUserRevoked(ctx, "user-1", before)
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}

func TestRedisTokenBlacklist_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close()
	b := auth.NewRedisTokenBlacklist(client)
	ctx := context.Background()

	// an unreachable server surfaces as an error, never as "not revoked"
	_, err := b.IsTokenRevoked(ctx, "jti")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check revoked token")

	_, err = b.IsUserRevoked(ctx, "user-1", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check revoked user user-1")
}
