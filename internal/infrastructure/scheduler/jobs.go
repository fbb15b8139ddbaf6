package scheduler

import (
	"context"
	"time"

	"github.com/bizhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Job names
const (
	JobExpireTrials = "expire-trials"
	JobMarkOverdue  = "mark-overdue-invoices"
	JobPurgeTokens  = "purge-verification-tokens"
	JobSweepToasts  = "sweep-toast-queues"
)

// TokenRetention is how long used or expired verification tokens are kept
const TokenRetention = 7 * 24 * time.Hour

type TrialExpirer interface {
	ExpireTrials(ctx context.Context) (int, error)
}

type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (int, error)
}

type TokenPurger interface {
	PurgeVerificationTokens(ctx context.Context, retention time.Duration) (int64, error)
}

type ToastSweeper interface {
	Sweep() int
}

// MaintenanceDeps are the services the maintenance jobs drive
type MaintenanceDeps struct {
	Trials   TrialExpirer
	Invoices OverdueMarker
	Tokens   TokenPurger
	Toasts   ToastSweeper
}

// RegisterMaintenance registers the periodic maintenance jobs on s
func RegisterMaintenance(s *Scheduler, cfg config.SchedulerConfig, deps MaintenanceDeps, logger *zap.Logger) error {
	jobs := []struct {
		name string
		spec string
		fn   JobFunc
	}{
		{JobExpireTrials, cfg.TrialExpirySpec, func(ctx context.Context) error {
			n, err := deps.Trials.ExpireTrials(ctx)
			if n > 0 {
				logger.Info("Expired lapsed trials", zap.Int("count", n))
			}
			return err
		}},
		{JobMarkOverdue, cfg.OverdueInvoiceSpec, func(ctx context.Context) error {
			n, err := deps.Invoices.MarkOverdue(ctx)
			if n > 0 {
				logger.Info("Marked invoices overdue", zap.Int("count", n))
			}
			return err
		}},
		{JobPurgeTokens, cfg.TokenPurgeSpec, func(ctx context.Context) error {
			n, err := deps.Tokens.PurgeVerificationTokens(ctx, TokenRetention)
			if n > 0 {
				logger.Info("Purged verification tokens", zap.Int64("count", n))
			}
			return err
		}},
		{JobSweepToasts, cfg.ToastSweepSpec, func(context.Context) error {
			if n := deps.Toasts.Sweep(); n > 0 {
				logger.Debug("Swept idle toast queues", zap.Int("count", n))
			}
			return nil
		}},
	}
	for _, j := range jobs {
		if err := s.Register(j.name, j.spec, j.fn); err != nil {
			return err
		}
	}
	return nil
}
