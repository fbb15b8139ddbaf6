package main

import (
	"fmt"
	"sort"

	financeapp "github.com/bizhub/backend/internal/application/finance"
	identityapp "github.com/bizhub/backend/internal/application/identity"
	notificationapp "github.com/bizhub/backend/internal/application/notification"
	"github.com/bizhub/backend/internal/infrastructure/auth"
	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/bizhub/backend/internal/infrastructure/event"
	"github.com/bizhub/backend/internal/infrastructure/logger"
	"github.com/bizhub/backend/internal/infrastructure/persistence"
	"github.com/bizhub/backend/internal/infrastructure/scheduler"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Run maintenance jobs outside their schedule",
	}
	run := &cobra.Command{
		Use:   "run <job>",
		Short: "Run one maintenance job against the configured database",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
	cobraflags.RegisterMap(run, rootFlags)

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List maintenance jobs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				for _, name := range []string{
					scheduler.JobExpireTrials,
					scheduler.JobMarkOverdue,
					scheduler.JobPurgeTokens,
					scheduler.JobSweepToasts,
				} {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			},
		},
		run,
	)
	return cmd
}

func runJob(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: rootFlags[logLevelFlag].GetString(), Format: "console", Output: "stderr"})
	defer func() {
		_ = log.Sync()
	}()

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		return err
	}
	defer db.Close()

	// Events raised by a one-off run have no subscribers in this process
	bus := event.NewBus(log)
	userRepo := persistence.NewGormUserRepository(db.DB)
	blacklist := auth.NewInMemoryTokenBlacklist()
	center, err := notificationapp.NewCenter(persistence.NewGormPreferenceRepository(db.DB), notificationapp.DefaultCenterConfig(), log)
	if err != nil {
		return err
	}

	jobs := scheduler.New(cfg.Scheduler.JobTimeout, log)
	err = scheduler.RegisterMaintenance(jobs, cfg.Scheduler, scheduler.MaintenanceDeps{
		Trials:   identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, center, bus, log),
		Invoices: financeapp.NewInvoiceService(persistence.NewGormInvoiceRepository(db.DB), persistence.NewGormCustomerRepository(db.DB), bus, log),
		Tokens: identityapp.NewAuthService(identityapp.AuthServiceDeps{
			UserRepo:       userRepo,
			TokenRepo:      persistence.NewGormVerificationTokenRepository(db.DB),
			Registration:   persistence.NewGormRegistrationStore(db.DB),
			JWTService:     auth.NewJWTService(cfg.JWT),
			Blacklist:      blacklist,
			EventPublisher: bus,
		}, log),
		Toasts: center,
	}, log)
	if err != nil {
		return err
	}

	name := args[0]
	known := jobs.Jobs()
	sort.Strings(known)
	log.Info("Running job", zap.String("job", name))
	if err := jobs.RunNow(cmd.Context(), name); err != nil {
		return fmt.Errorf("%w (jobs: %v)", err, known)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s finished\n", name)
	return nil
}
