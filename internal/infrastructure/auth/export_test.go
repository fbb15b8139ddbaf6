package auth

import "time"

// SetClock pins the blacklist's notion of now.
func (b *InMemoryTokenBlacklist) SetClock(now func() time.Time) { b.now = now }
