package router

import (
	"net/http"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/bizhub/backend/internal/infrastructure/logger"
	"github.com/bizhub/backend/internal/interfaces/http/dto"
	"github.com/bizhub/backend/internal/interfaces/http/handler"
	"github.com/bizhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the endpoint groups mounted by New
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Customer     *handler.CustomerHandler
	Product      *handler.ProductHandler
	Sale         *handler.SaleHandler
	Invoice      *handler.InvoiceHandler
	Expense      *handler.ExpenseHandler
	Usage        *handler.UsageHandler
	Dashboard    *handler.DashboardHandler
	Notification *handler.NotificationHandler
	System       *handler.SystemHandler
}

// MetricsCollector records HTTP metrics and serves them for scraping.
// telemetry.HTTPMetrics implements it.
type MetricsCollector interface {
	middleware.RequestRecorder
	middleware.RejectionObserver
	Handler() http.Handler
}

// Config wires the cross-cutting middleware
type Config struct {
	HTTP   config.HTTPConfig
	Logger *zap.Logger
	JWT    middleware.JWTConfig
	Usage  middleware.UsageGate
	// Metrics is optional; without it /metrics is not mounted
	Metrics MetricsCollector
	// TracingService names the otelgin tracer; empty disables tracing
	TracingService string
}

// New builds the gin engine with the middleware chain and every route
func New(cfg Config, h Handlers) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORS(corsConfig(cfg.HTTP)),
	)
	if cfg.TracingService != "" {
		engine.Use(middleware.Tracing(cfg.TracingService), middleware.SpanAttributes())
	}
	if cfg.Metrics != nil {
		engine.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
	}

	engine.NoRoute(func(c *gin.Context) {
		(&handler.BaseHandler{}).Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Route not found")
	})

	if h.System != nil {
		engine.GET("/health", h.System.Health)
	}
	if cfg.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r := NewRouter(engine)
	for _, g := range groups(cfg, h, log) {
		r.Register(g)
	}
	r.Setup()
	return engine
}

func groups(cfg Config, h Handlers, log *zap.Logger) []*DomainGroup {
	authn := middleware.JWTAuth(cfg.JWT)
	var rejected middleware.RejectionObserver
	if cfg.Metrics != nil {
		rejected = cfg.Metrics
	}
	limit := func(resource billing.ResourceType) gin.HandlerFunc {
		if cfg.Usage == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.UsageLimit(cfg.Usage, resource, rejected, log)
	}

	authGroup := NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authGroup.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)))
	}
	authGroup.
		POST("/register", h.Auth.Register).
		POST("/verify-email", h.Auth.VerifyEmail).
		POST("/resend-verification", h.Auth.ResendVerification).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", authn, h.Auth.Logout).
		GET("/me", authn, h.Auth.Me)

	users := NewDomainGroup("users", "/users").Use(authn).
		PUT("/me", h.User.UpdateProfile).
		PUT("/me/plan", h.User.ChangePlan).
		POST("/me/deactivate", h.User.Deactivate)

	customers := NewDomainGroup("customers", "/customers").Use(authn).
		GET("", h.Customer.List).
		POST("", h.Customer.Create).
		GET("/:id", h.Customer.GetByID).
		PUT("/:id", h.Customer.Update).
		DELETE("/:id", h.Customer.Delete)

	products := NewDomainGroup("products", "/products").Use(authn).
		GET("", h.Product.List).
		POST("", limit(billing.ResourceProducts), h.Product.Create).
		GET("/low-stock", h.Product.LowStock).
		GET("/:id", h.Product.GetByID).
		PUT("/:id", h.Product.Update).
		DELETE("/:id", h.Product.Delete)

	sales := NewDomainGroup("sales", "/sales").Use(authn).
		GET("", h.Sale.List).
		POST("", limit(billing.ResourceSales), h.Sale.Create).
		GET("/:id", h.Sale.GetByID).
		PUT("/:id", h.Sale.Update).
		DELETE("/:id", h.Sale.Delete)

	invoices := NewDomainGroup("invoices", "/invoices").Use(authn).
		GET("", h.Invoice.List).
		POST("", limit(billing.ResourceInvoices), h.Invoice.Create).
		GET("/:id", h.Invoice.GetByID).
		PUT("/:id", h.Invoice.Update).
		POST("/:id/status", h.Invoice.ChangeStatus).
		DELETE("/:id", h.Invoice.Delete)

	expenses := NewDomainGroup("expenses", "/expenses").Use(authn).
		GET("", h.Expense.List).
		POST("", limit(billing.ResourceExpenses), h.Expense.Create).
		GET("/:id", h.Expense.GetByID).
		PUT("/:id", h.Expense.Update).
		DELETE("/:id", h.Expense.Delete)

	usage := NewDomainGroup("usage", "/usage").Use(authn).
		GET("", h.Usage.Report).
		GET("/:resource/check", h.Usage.Check)

	dashboard := NewDomainGroup("dashboard", "/dashboard").Use(authn).
		GET("/summary", h.Dashboard.Summary)

	notifications := NewDomainGroup("notifications", "/notifications").Use(authn)
	notifications.Group("toasts", "/toasts").
		GET("", h.Notification.ListToasts).
		POST("", h.Notification.PushToast).
		DELETE("", h.Notification.ClearToasts).
		POST("/:id/dismiss", h.Notification.DismissToast)
	notifications.
		GET("/preferences", h.Notification.GetPreferences).
		PUT("/preferences", h.Notification.UpdatePreferences)

	return []*DomainGroup{authGroup, users, customers, products, sales, invoices, expenses, usage, dashboard, notifications}
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	c := middleware.DefaultCORSConfig()
	c.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		c.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		c.AllowHeaders = cfg.CORSAllowHeaders
	}
	return c
}
