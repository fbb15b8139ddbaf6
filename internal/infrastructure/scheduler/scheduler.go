package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	// ErrUnknownJob is returned by RunNow for an unregistered name
	ErrUnknownJob = errors.New("unknown job")
	// ErrDuplicateJob is returned when a name is registered twice
	ErrDuplicateJob = errors.New("job already registered")
)

// JobFunc is one run of a background job
type JobFunc func(ctx context.Context) error

type job struct {
	name string
	spec string
	fn   JobFunc
}

// Scheduler runs named jobs on cron schedules. A run that is still going
// when its next tick arrives skips that tick; each run gets its own timeout.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]job
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.Mutex
	running bool
	base    context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler whose runs are bounded by timeout
func New(timeout time.Duration, logger *zap.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		), cron.WithLogger(cl)),
		jobs:    make(map[string]job),
		timeout: timeout,
		logger:  logger,
		base:    context.Background(),
	}
}

// Register schedules fn under name using a standard five-field cron spec
// or a descriptor such as "@every 1m"
func (s *Scheduler) Register(name, spec string, fn JobFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}
	j := job{name: name, spec: spec, fn: fn}
	if _, err := s.cron.AddFunc(spec, func() { s.run(j) }); err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.jobs[name] = j
	return nil
}

// RunNow runs a registered job synchronously, outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	return s.execute(ctx, j)
}

// Jobs lists registered job names
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.base, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.running = true
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop stops scheduling and cancels running jobs, waiting for them until
// ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	done := s.cron.Stop()
	cancel()
	select {
	case <-done.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(j job) {
	s.mu.Lock()
	base := s.base
	s.mu.Unlock()
	_ = s.execute(base, j)
}

func (s *Scheduler) execute(ctx context.Context, j job) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := j.fn(ctx)
	fields := []zap.Field{zap.String("job", j.name), zap.Duration("elapsed", time.Since(start))}
	if err != nil {
		s.logger.Error("Scheduled job failed", append(fields, zap.Error(err))...)
		return err
	}
	s.logger.Debug("Scheduled job finished", fields...)
	return nil
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
