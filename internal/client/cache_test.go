package client

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestResponseCache_ExpiresAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	rc := NewResponseCache(cache.NewMemoryStore(10, cache.WithClock(clock.Now)), nil)
	ctx := context.Background()

	rc.Set(ctx, "customers:list?", []byte("v"), 2*time.Minute)

	clock.Advance(2*time.Minute - time.Second)
	v, ok := rc.Get(ctx, "customers:list?")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	clock.Advance(2 * time.Second)
	_, ok = rc.Get(ctx, "customers:list?")
	assert.False(t, ok)
}

func TestResponseCache_DefaultTTLFromKeyClass(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	rc := NewResponseCache(cache.NewMemoryStore(10, cache.WithClock(clock.Now)), nil)
	ctx := context.Background()

	rc.Set(ctx, keyUsage, []byte("usage"), 0)
	rc.Set(ctx, keyProfile, []byte("me"), 0)

	clock.Advance(61 * time.Second)
	_, ok := rc.Get(ctx, keyUsage)
	assert.False(t, ok, "usage lives one minute")
	_, ok = rc.Get(ctx, keyProfile)
	assert.True(t, ok, "profile lives thirty minutes")
}

func TestResponseCache_FetchSharesInFlightLoad(t *testing.T) {
	rc := NewResponseCache(cache.NewMemoryStore(10), nil)
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("summary"), nil
	}

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := rc.Fetch(context.Background(), keyDashboard, 0, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, []byte("summary"), v)
	}

	v, err := rc.Fetch(context.Background(), keyDashboard, 0, load)
	require.NoError(t, err)
	assert.Equal(t, []byte("summary"), v)
	assert.Equal(t, int32(1), calls.Load(), "cached after the first load")
}

func TestResponseCache_FetchDoesNotCacheErrors(t *testing.T) {
	rc := NewResponseCache(cache.NewMemoryStore(10), nil)
	boom := errors.New("boom")

	_, err := rc.Fetch(context.Background(), "k", 0, func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	v, err := rc.Fetch(context.Background(), "k", 0, func(context.Context) ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), v)
}

type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errStoreDown }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (brokenStore) Invalidate(context.Context, string) (int, error) { return 0, errStoreDown }

func TestResponseCache_DegradesWhenStoreFails(t *testing.T) {
	rc := NewResponseCache(brokenStore{}, nil)
	ctx := context.Background()
	var calls int

	for i := 0; i < 2; i++ {
		v, err := rc.Fetch(ctx, "k", 0, func(context.Context) ([]byte, error) {
			calls++
			return []byte("live"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("live"), v)
	}
	assert.Equal(t, 2, calls)
	assert.NotPanics(t, func() { rc.Invalidate(ctx, "k") })
}

func TestResponseCache_InvalidatePrefixes(t *testing.T) {
	rc := NewResponseCache(cache.NewMemoryStore(10), nil)
	ctx := context.Background()
	for _, k := range []string{"customers:1", "customers:list?", "products:1", "usage:report"} {
		rc.Set(ctx, k, []byte(k), time.Minute)
	}

	rc.Invalidate(ctx, cache.ClassCustomers, cache.ClassUsage)

	for k, want := range map[string]bool{"customers:1": false, "customers:list?": false, "products:1": true, "usage:report": false} {
		_, ok := rc.Get(ctx, k)
		assert.Equal(t, want, ok, k)
	}
}
