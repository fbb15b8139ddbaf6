package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrToastNotFound is returned when dismissing a toast the user does not have
var ErrToastNotFound = shared.NewDomainError("NOT_FOUND", "Toast not found")

// CenterConfig tunes the notification center
type CenterConfig struct {
	Queue notification.QueueConfig
	// IdleTTL drops sessions not touched for this long on Sweep
	IdleTTL time.Duration
	// Language formats numbers in generated messages
	Language language.Tag
}

// DefaultCenterConfig returns the default center settings
func DefaultCenterConfig() CenterConfig {
	return CenterConfig{
		Queue:    notification.DefaultQueueConfig(),
		IdleTTL:  2 * time.Hour,
		Language: language.English,
	}
}

type session struct {
	queue    *notification.Queue
	lastSeen time.Time
}

// Center owns the toast queue of every signed-in user. Init on login and
// Reset on logout bracket a user's session; nothing is kept in package
// state. Center is safe for concurrent use.
type Center struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*session

	prefs   notification.PreferenceRepository
	cfg     CenterConfig
	clock   notification.Clock
	printer *message.Printer
	logger  *zap.Logger
}

// CenterOption configures a Center
type CenterOption func(*Center)

// WithClock replaces the wall clock, mainly for tests
func WithClock(clock notification.Clock) CenterOption {
	return func(c *Center) {
		c.clock = clock
	}
}

// NewCenter creates a Center. The queue config is validated up front so a
// bad max-visible setting fails at startup rather than on first login.
func NewCenter(prefs notification.PreferenceRepository, cfg CenterConfig, logger *zap.Logger, opts ...CenterOption) (*Center, error) {
	if _, err := notification.NewQueue(cfg.Queue, nil); err != nil {
		return nil, err
	}
	if cfg.Language == language.Und {
		cfg.Language = language.English
	}
	c := &Center{
		sessions: make(map[uuid.UUID]*session),
		prefs:    prefs,
		cfg:      cfg,
		clock:    notification.SystemClock{},
		printer:  message.NewPrinter(cfg.Language),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Init opens a session for the user. Calling it for an open session keeps
// the existing toasts.
func (c *Center) Init(userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.sessionLocked(userID)
	return err
}

// Reset closes the user's session and drops every toast
func (c *Center) Reset(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, userID)
}

// Active reports whether the user has an open session
func (c *Center) Active(userID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[userID]
	return ok
}

// sessionLocked returns the user's session, creating it if needed.
// c.mu must be held.
func (c *Center) sessionLocked(userID uuid.UUID) (*session, error) {
	now := c.clock.Now()
	if s, ok := c.sessions[userID]; ok {
		s.lastSeen = now
		return s, nil
	}
	q, err := notification.NewQueue(c.cfg.Queue, c.clock)
	if err != nil {
		return nil, err
	}
	s := &session{queue: q, lastSeen: now}
	c.sessions[userID] = s
	return s, nil
}

// Push enqueues a toast for the user, opening a session if needed. The
// boolean is false when the toast was suppressed as a duplicate.
func (c *Center) Push(userID uuid.UUID, in notification.ToastInput) (*notification.Toast, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionLocked(userID)
	if err != nil {
		return nil, false, err
	}
	return s.queue.Push(in)
}

// Notify delivers a system toast if the user has an open session and their
// preferences allow it. It returns whether a toast was enqueued.
func (c *Center) Notify(ctx context.Context, userID uuid.UUID, in notification.ToastInput) (bool, error) {
	if !c.Active(userID) {
		return false, nil
	}
	pref, err := c.preference(ctx, userID)
	if err != nil {
		return false, err
	}
	if !pref.Allows(in.Type, in.Category, c.clock.Now()) {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[userID]
	if !ok {
		// logged out while preferences were loading
		return false, nil
	}
	s.lastSeen = c.clock.Now()
	_, pushed, err := s.queue.Push(in)
	return pushed, err
}

// List advances the user's timers and returns the visible and queued toasts
func (c *Center) List(userID uuid.UUID) (*ToastsResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.sessionLocked(userID)
	if err != nil {
		return nil, err
	}
	s.queue.Advance()
	return toToastsResponse(s.queue), nil
}

// Dismiss dismisses one toast
func (c *Center) Dismiss(userID, toastID uuid.UUID) (*ToastResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[userID]
	if !ok {
		return nil, ErrToastNotFound
	}
	s.lastSeen = c.clock.Now()
	t, ok := s.queue.Dismiss(toastID)
	if !ok {
		return nil, ErrToastNotFound
	}
	resp := toToastResponse(t)
	return &resp, nil
}

// Clear drops the user's toasts but keeps the session open
func (c *Center) Clear(userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.sessions[userID]; ok {
		s.queue.Clear()
		s.lastSeen = c.clock.Now()
	}
}

// Sweep advances every queue and closes sessions idle longer than the
// configured TTL. It returns the number of sessions closed.
func (c *Center) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	closed := 0
	for id, s := range c.sessions {
		if c.cfg.IdleTTL > 0 && now.Sub(s.lastSeen) > c.cfg.IdleTTL {
			delete(c.sessions, id)
			closed++
			continue
		}
		s.queue.Advance()
	}
	return closed
}

// Preferences returns the user's notification settings, defaults if never saved
func (c *Center) Preferences(ctx context.Context, userID uuid.UUID) (*PreferenceResponse, error) {
	pref, err := c.preference(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toPreferenceResponse(pref)
	return &resp, nil
}

// UpdatePreferences changes the user's settings. Omitted fields keep their value.
func (c *Center) UpdatePreferences(ctx context.Context, userID uuid.UUID, req UpdatePreferenceRequest) (*PreferenceResponse, error) {
	pref, err := c.preference(ctx, userID)
	if err != nil {
		return nil, err
	}
	req.apply(pref)
	if req.QuietHoursStart != nil || req.QuietHoursEnd != nil {
		start, end := pref.QuietHoursStart, pref.QuietHoursEnd
		if req.QuietHoursStart != nil {
			start = *req.QuietHoursStart
		}
		if req.QuietHoursEnd != nil {
			end = *req.QuietHoursEnd
		}
		if err := pref.SetQuietHours(start, end); err != nil {
			return nil, err
		}
	}
	pref.UpdatedAt = c.clock.Now()
	if err := c.prefs.Save(ctx, pref); err != nil {
		return nil, err
	}
	resp := toPreferenceResponse(pref)
	return &resp, nil
}

func (c *Center) preference(ctx context.Context, userID uuid.UUID) (*notification.Preference, error) {
	pref, err := c.prefs.FindByUser(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return notification.DefaultPreference(userID), nil
	}
	return pref, err
}
