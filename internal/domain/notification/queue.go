package notification

import (
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	DefaultMaxVisible  = 4
	MinMaxVisible      = 1
	MaxMaxVisible      = 10
	DefaultDedupWindow = 5 * time.Second
	DefaultMaxQueued   = 50
	MaxMaxQueued       = 1000
)

// QueueConfig tunes a toast queue
type QueueConfig struct {
	MaxVisible int
	// MaxQueued bounds the backlog behind the visible toasts. Overflow
	// evicts the oldest queued toast.
	MaxQueued   int
	DedupWindow time.Duration
	Durations   map[ToastType]time.Duration
}

// DefaultQueueConfig returns the default queue settings
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		MaxVisible:  DefaultMaxVisible,
		MaxQueued:   DefaultMaxQueued,
		DedupWindow: DefaultDedupWindow,
		Durations:   DefaultDurations,
	}
}

// Validate checks the config is usable
func (c QueueConfig) Validate() error {
	if c.MaxVisible < MinMaxVisible || c.MaxVisible > MaxMaxVisible {
		return shared.NewDomainError("INVALID_QUEUE_CONFIG", "max visible toasts must be between 1 and 10")
	}
	if c.MaxQueued < 1 || c.MaxQueued > MaxMaxQueued {
		return shared.NewDomainError("INVALID_QUEUE_CONFIG", "max queued toasts must be between 1 and 1000")
	}
	if c.DedupWindow < 0 {
		return shared.NewDomainError("INVALID_QUEUE_CONFIG", "dedup window cannot be negative")
	}
	return nil
}

// Queue holds one user's toasts. At most MaxVisible are visible at once;
// at most MaxQueued wait behind them in FIFO order. Time only moves when the clock says so,
// so Advance must be called before reading. Queue is not safe for
// concurrent use.
type Queue struct {
	cfg     QueueConfig
	clock   Clock
	visible []*Toast
	queued  []*Toast
	// pending indexes visible and queued toasts by dedup key
	pending map[string]*Toast
}

// NewQueue creates an empty queue. A zero config field falls back to its default.
func NewQueue(cfg QueueConfig, clock Clock) (*Queue, error) {
	def := DefaultQueueConfig()
	if cfg.MaxVisible == 0 {
		cfg.MaxVisible = def.MaxVisible
	}
	if cfg.MaxQueued == 0 {
		cfg.MaxQueued = def.MaxQueued
	}
	if cfg.DedupWindow == 0 {
		cfg.DedupWindow = def.DedupWindow
	}
	if cfg.Durations == nil {
		cfg.Durations = def.Durations
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Queue{cfg: cfg, clock: clock, pending: make(map[string]*Toast)}, nil
}

// Push enqueues a toast. It returns false when an identical toast (same
// type and message) created within the dedup window is still pending.
func (q *Queue) Push(in ToastInput) (*Toast, bool, error) {
	now := q.clock.Now()
	q.advance(now)

	if in.Type == "" {
		in.Type = ToastInfo
	}
	if !in.Type.IsValid() {
		return nil, false, shared.NewDomainError("INVALID_TOAST_TYPE", "Invalid toast type: "+string(in.Type))
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return nil, false, shared.NewDomainError("INVALID_TOAST", "Toast message is required")
	}
	duration := in.Duration
	if duration <= 0 {
		duration = q.cfg.Durations[in.Type]
	}
	if duration <= 0 {
		duration = DefaultDurations[in.Type]
	}

	t := &Toast{
		ID:        uuid.New(),
		Type:      in.Type,
		Category:  in.Category,
		Title:     in.Title,
		Message:   msg,
		Status:    ToastQueued,
		Duration:  duration,
		CreatedAt: now,
	}
	if q.isDuplicate(t, now) {
		return nil, false, nil
	}
	q.queued = append(q.queued, t)
	q.pending[t.dedupKey()] = t
	q.promote(now)
	q.evict(now)
	return t, true, nil
}

// isDuplicate looks up the newest pending toast with the same key. Keys are
// overwritten on push, so the index always holds the most recent one.
func (q *Queue) isDuplicate(t *Toast, now time.Time) bool {
	existing, ok := q.pending[t.dedupKey()]
	return ok && now.Sub(existing.CreatedAt) < q.cfg.DedupWindow
}

// evict drops the oldest queued toasts beyond MaxQueued
func (q *Queue) evict(now time.Time) {
	for len(q.queued) > q.cfg.MaxQueued {
		t := q.queued[0]
		q.queued[0] = nil
		q.queued = q.queued[1:]
		t.dismiss(now)
		q.forget(t)
	}
}

// forget removes t from the dedup index unless a newer toast owns the key
func (q *Queue) forget(t *Toast) {
	if q.pending[t.dedupKey()] == t {
		delete(q.pending, t.dedupKey())
	}
}

// Dismiss removes a visible or queued toast. A freed slot is filled
// immediately from the queue.
func (q *Queue) Dismiss(id uuid.UUID) (*Toast, bool) {
	now := q.clock.Now()
	q.advance(now)

	for i, t := range q.visible {
		if t.ID == id {
			q.visible = append(q.visible[:i], q.visible[i+1:]...)
			t.dismiss(now)
			q.forget(t)
			q.promote(now)
			return t, true
		}
	}
	for i, t := range q.queued {
		if t.ID == id {
			q.queued = append(q.queued[:i], q.queued[i+1:]...)
			t.dismiss(now)
			q.forget(t)
			return t, true
		}
	}
	return nil, false
}

// Advance expires visible toasts whose timers have run out and promotes
// queued ones into the freed slots. It returns the toasts dismissed.
func (q *Queue) Advance() []*Toast {
	return q.advance(q.clock.Now())
}

// advance processes expiries in time order so that a promoted toast's timer
// starts at the moment its slot was freed.
func (q *Queue) advance(now time.Time) []*Toast {
	var expired []*Toast
	for {
		idx := -1
		for i, t := range q.visible {
			if t.ExpiresAt != nil && !t.ExpiresAt.After(now) {
				if idx < 0 || t.ExpiresAt.Before(*q.visible[idx].ExpiresAt) {
					idx = i
				}
			}
		}
		if idx < 0 {
			return expired
		}
		t := q.visible[idx]
		at := *t.ExpiresAt
		q.visible = append(q.visible[:idx], q.visible[idx+1:]...)
		t.dismiss(at)
		q.forget(t)
		expired = append(expired, t)
		q.promote(at)
	}
}

func (q *Queue) promote(at time.Time) {
	for len(q.visible) < q.cfg.MaxVisible && len(q.queued) > 0 {
		t := q.queued[0]
		q.queued = q.queued[1:]
		t.show(at)
		q.visible = append(q.visible, t)
	}
}

// Visible returns the visible toasts in the order they were shown
func (q *Queue) Visible() []*Toast {
	return append([]*Toast(nil), q.visible...)
}

// Queued returns the waiting toasts in FIFO order
func (q *Queue) Queued() []*Toast {
	return append([]*Toast(nil), q.queued...)
}

// Len is the number of toasts not yet dismissed
func (q *Queue) Len() int {
	return len(q.visible) + len(q.queued)
}

// Clear drops every toast
func (q *Queue) Clear() {
	q.visible = nil
	q.queued = nil
	clear(q.pending)
}

// MaxVisible is the configured visible bound
func (q *Queue) MaxVisible() int {
	return q.cfg.MaxVisible
}

// MaxQueued is the configured backlog bound
func (q *Queue) MaxQueued() int {
	return q.cfg.MaxQueued
}
