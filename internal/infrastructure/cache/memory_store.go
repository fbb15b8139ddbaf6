package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded FIFO store. Expired entries are dropped
// lazily on read and ahead of eviction on write.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	order    []string // insertion order, oldest first
	capacity int
	now      func() time.Time
}

// MemoryOption configures a MemoryStore
type MemoryOption func(*MemoryStore)

// WithClock replaces time.Now
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates a store holding at most capacity entries
func NewMemoryStore(capacity int, opts ...MemoryOption) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &MemoryStore{
		entries:  make(map[string]memoryEntry),
		capacity: capacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(e.expiresAt) {
		s.remove(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ClampTTL(ttl))}

	if len(s.entries) > s.capacity {
		s.purgeExpired(now)
	}
	for len(s.entries) > s.capacity {
		s.remove(s.order[0])
	}
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	removed := 0
	for _, k := range s.order {
		if strings.HasPrefix(k, prefix) {
			delete(s.entries, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	s.order = kept
	return removed, nil
}

// Len counts stored entries, expired or not
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Keys returns stored keys oldest first
func (s *MemoryStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func (s *MemoryStore) purgeExpired(now time.Time) {
	kept := s.order[:0]
	for _, k := range s.order {
		if !now.Before(s.entries[k].expiresAt) {
			delete(s.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	s.order = kept
}

func (s *MemoryStore) remove(key string) {
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

var _ Store = (*MemoryStore)(nil)
