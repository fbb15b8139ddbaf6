package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/bizhub/backend/internal/application/billing"
	catalogapp "github.com/bizhub/backend/internal/application/catalog"
	financeapp "github.com/bizhub/backend/internal/application/finance"
	identityapp "github.com/bizhub/backend/internal/application/identity"
	notificationapp "github.com/bizhub/backend/internal/application/notification"
	partnerapp "github.com/bizhub/backend/internal/application/partner"
	reportapp "github.com/bizhub/backend/internal/application/report"
	tradeapp "github.com/bizhub/backend/internal/application/trade"
	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/infrastructure/auth"
	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/bizhub/backend/internal/infrastructure/event"
	"github.com/bizhub/backend/internal/infrastructure/logger"
	"github.com/bizhub/backend/internal/infrastructure/messaging"
	"github.com/bizhub/backend/internal/infrastructure/persistence"
	"github.com/bizhub/backend/internal/infrastructure/scheduler"
	"github.com/bizhub/backend/internal/infrastructure/telemetry"
	"github.com/bizhub/backend/internal/interfaces/http/handler"
	"github.com/bizhub/backend/internal/interfaces/http/middleware"
	"github.com/bizhub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting BizHub backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry first so the database plugin and gin middleware see the
	// installed providers
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
		persistence.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the token blacklist; without it revocations live in memory
	var redisClient *redis.Client
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory token blacklist", zap.Error(err))
		} else {
			blacklist = auth.NewRedisTokenBlacklist(redisClient)
			defer redisClient.Close()
		}
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	tokenRepo := persistence.NewGormVerificationTokenRepository(db.DB)
	registrationStore := persistence.NewGormRegistrationStore(db.DB, persistence.WithTokenTTL(cfg.Registration.TokenTTL))
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRepository(db.DB)
	preferenceRepo := persistence.NewGormPreferenceRepository(db.DB)

	// Event bus: every delivery is counted on /metrics
	httpMetrics := telemetry.NewHTTPMetrics()
	bus := event.NewBus(log, event.WithDeliveryObserver(httpMetrics.ObserveEvent))

	centerCfg := notificationapp.DefaultCenterConfig()
	centerCfg.Queue.MaxVisible = cfg.Notification.MaxVisible
	centerCfg.Queue.MaxQueued = cfg.Notification.MaxQueued
	centerCfg.Queue.DedupWindow = cfg.Notification.DedupWindow
	centerCfg.IdleTTL = cfg.Notification.IdleTTL
	center, err := notificationapp.NewCenter(preferenceRepo, centerCfg, log)
	if err != nil {
		log.Fatal("Invalid notification settings", zap.Error(err))
	}
	bus.Subscribe(center, center.EventTypes()...)

	businessMetrics, err := telemetry.NewBusinessMetrics(providers.Meter("bizhub"))
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	bus.Subscribe(businessMetrics, businessMetrics.EventTypes()...)

	if cfg.Kafka.Enabled() {
		publisher := messaging.NewVerifyEmailPublisher(
			messaging.NewWriter(cfg.Kafka, cfg.Kafka.VerifyEmailTopic), cfg.Kafka.WriteTimeout, log)
		bus.Subscribe(publisher, publisher.EventTypes()...)
		defer func() {
			if err := publisher.Close(); err != nil {
				log.Error("Error closing Kafka writer", zap.Error(err))
			}
		}()
		log.Info("Verification mail publishing enabled", zap.String("topic", cfg.Kafka.VerifyEmailTopic))
	} else {
		log.Warn("Kafka not configured, verification tokens are not mailed")
	}

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(identityapp.AuthServiceDeps{
		UserRepo:       userRepo,
		TokenRepo:      tokenRepo,
		Registration:   registrationStore,
		JWTService:     jwtService,
		Blacklist:      blacklist,
		Sessions:       center,
		EventPublisher: bus,
	}, log)
	userService := identityapp.NewUserService(userRepo, blacklist, cfg.JWT.RefreshTokenExpiration, center, bus, log)
	usageService := billingapp.NewUsageService(userRepo, billingapp.Counters{
		billing.ResourceInvoices: invoiceRepo,
		billing.ResourceExpenses: expenseRepo,
		billing.ResourceProducts: productRepo,
		billing.ResourceSales:    saleRepo,
	}, bus, log)
	customerService := partnerapp.NewCustomerService(customerRepo)
	productService := catalogapp.NewProductService(productRepo, bus, log)
	saleService := tradeapp.NewSaleService(saleRepo, customerRepo, persistence.NewGormTransactionScope(db.DB), bus, log)
	invoiceService := financeapp.NewInvoiceService(invoiceRepo, customerRepo, bus, log)
	expenseService := financeapp.NewExpenseService(expenseRepo)
	dashboardService := reportapp.NewDashboardService(saleRepo, expenseRepo, invoiceRepo, productRepo, usageService, nil, log)

	if err := bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Background jobs
	var jobs *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobs = scheduler.New(cfg.Scheduler.JobTimeout, log)
		if err := scheduler.RegisterMaintenance(jobs, cfg.Scheduler, scheduler.MaintenanceDeps{
			Trials:   userService,
			Invoices: invoiceService,
			Tokens:   authService,
			Toasts:   center,
		}, log); err != nil {
			log.Fatal("Failed to register jobs", zap.Error(err))
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
	}

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	tracingService := ""
	if providers.Enabled() {
		tracingService = cfg.Telemetry.ServiceName
	}
	engine := router.New(router.Config{
		HTTP:   cfg.HTTP,
		Logger: log,
		JWT: middleware.JWTConfig{
			JWTService: jwtService,
			Blacklist:  blacklist,
			Logger:     log,
		},
		Usage:          usageService,
		Metrics:        httpMetrics,
		TracingService: tracingService,
	}, router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService, !cfg.IsProduction()),
		User:         handler.NewUserHandler(userService),
		Customer:     handler.NewCustomerHandler(customerService),
		Product:      handler.NewProductHandler(productService),
		Sale:         handler.NewSaleHandler(saleService),
		Invoice:      handler.NewInvoiceHandler(invoiceService),
		Expense:      handler.NewExpenseHandler(expenseService),
		Usage:        handler.NewUsageHandler(usageService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Notification: handler.NewNotificationHandler(center),
		System:       handler.NewSystemHandler(version, checks),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if jobs != nil {
		if err := jobs.Stop(shutdownCtx); err != nil {
			log.Error("Scheduler stop failed", zap.Error(err))
		}
	}
	_ = bus.Stop(shutdownCtx)
	_ = providers.Shutdown(shutdownCtx)

	log.Info("Server exited gracefully")
}
