package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Register(t *testing.T) {
	s := New(time.Second, zap.NewNop())
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register("a", "*/5 * * * *", noop))
	require.NoError(t, s.Register("b", "@every 30s", noop))
	assert.ErrorIs(t, s.Register("a", "@hourly", noop), ErrDuplicateJob)
	assert.ErrorContains(t, s.Register("c", "not a spec", noop), `invalid schedule "not a spec"`)
	assert.ElementsMatch(t, []string{"a", "b"}, s.Jobs())
}

func TestScheduler_RunNowAppliesTimeout(t *testing.T) {
	s := New(20*time.Millisecond, zap.NewNop())
	require.NoError(t, s.Register("slow", "@hourly", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	err := s.RunNow(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrUnknownJob)
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(time.Second, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

type fakeServices struct {
	trials, overdue int
	purged          int64
	retention       time.Duration
	swept           int
	err             error
}

func (f *fakeServices) ExpireTrials(context.Context) (int, error) { return f.trials, f.err }
func (f *fakeServices) MarkOverdue(context.Context) (int, error)  { return f.overdue, nil }
func (f *fakeServices) PurgeVerificationTokens(_ context.Context, retention time.Duration) (int64, error) {
	f.retention = retention
	return f.purged, nil
}
func (f *fakeServices) Sweep() int {
	f.swept++
	return 1
}

func TestRegisterMaintenance(t *testing.T) {
	s := New(time.Second, zap.NewNop())
	svc := &fakeServices{trials: 2, overdue: 1, purged: 5, err: errors.New("db down")}
	cfg := config.SchedulerConfig{
		TrialExpirySpec:    "@every 15m",
		OverdueInvoiceSpec: "0 1 * * *",
		TokenPurgeSpec:     "@hourly",
		ToastSweepSpec:     "@every 5m",
	}
	require.NoError(t, RegisterMaintenance(s, cfg, MaintenanceDeps{
		Trials: svc, Invoices: svc, Tokens: svc, Toasts: svc,
	}, zap.NewNop()))

	ctx := context.Background()
	assert.EqualError(t, s.RunNow(ctx, JobExpireTrials), "db down")
	assert.NoError(t, s.RunNow(ctx, JobMarkOverdue))
	assert.NoError(t, s.RunNow(ctx, JobPurgeTokens))
	assert.Equal(t, TokenRetention, svc.retention)
	assert.NoError(t, s.RunNow(ctx, JobSweepToasts))
	assert.Equal(t, 1, svc.swept)
}

func TestRegisterMaintenance_BadSpec(t *testing.T) {
	s := New(time.Second, zap.NewNop())
	svc := &fakeServices{}
	err := RegisterMaintenance(s, config.SchedulerConfig{TrialExpirySpec: "every day"}, MaintenanceDeps{
		Trials: svc, Invoices: svc, Tokens: svc, Toasts: svc,
	}, zap.NewNop())
	assert.Error(t, err)
}
