package cache

import (
	"context"
	"strings"
	"time"
)

// TTL bounds applied by every store
const (
	MinTTL = time.Minute
	MaxTTL = 60 * time.Minute
)

// DefaultCapacity bounds a store built without an explicit capacity
const DefaultCapacity = 500

// Store is a bounded key/value store with per-entry expiry. When full, the
// entry inserted first is evicted; reads never refresh an entry's position
// and overwriting a key keeps its original position.
type Store interface {
	// Get returns the value and true when key is present and unexpired
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ClampTTL(ttl)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes every key starting with prefix and returns how many
	Invalidate(ctx context.Context, prefix string) (int, error)
}

// ClampTTL forces ttl into [MinTTL, MaxTTL]
func ClampTTL(ttl time.Duration) time.Duration {
	switch {
	case ttl < MinTTL:
		return MinTTL
	case ttl > MaxTTL:
		return MaxTTL
	default:
		return ttl
	}
}

// Key class prefixes
const (
	ClassCustomers   = "customers:"
	ClassProducts    = "products:"
	ClassUsage       = "usage:"
	ClassDashboard   = "dashboard:"
	ClassProfile     = "profile:"
	ClassPreferences = "preferences:"
)

var classTTLs = []struct {
	prefix string
	ttl    time.Duration
}{
	{ClassCustomers, 5 * time.Minute},
	{ClassProducts, 5 * time.Minute},
	{ClassUsage, time.Minute},
	{ClassDashboard, time.Minute},
	{ClassProfile, 30 * time.Minute},
	{ClassPreferences, 60 * time.Minute},
}

// DefaultClassTTL applies to keys outside every known class
const DefaultClassTTL = 5 * time.Minute

// TTLForKey returns the default TTL of the key's class
func TTLForKey(key string) time.Duration {
	for _, c := range classTTLs {
		if strings.HasPrefix(key, c.prefix) {
			return c.ttl
		}
	}
	return DefaultClassTTL
}
