package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/interfaces/http/handler"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers are the HTTP endpoints of the ledger
type Handlers struct {
	Sales          *handler.SaleHandler
	Accounts       *handler.CustomerAccountHandler
	Alerts         *handler.AlertHandler
	Reconciliation *handler.ReconciliationHandler
	System         *handler.SystemHandler
}

// EngineConfig configures the middleware stack of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64
	TrustedProxies []string
	// Metrics and MetricsHandler are optional; /metrics is only mounted with a handler
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
}

// NewEngine builds the gin engine with the middleware stack in order:
// tracing, request id, recovery, access log, metrics, body limit.
// Ledger routes live under /api/v1 behind the tenant middleware.
func NewEngine(cfg EngineConfig, h Handlers) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			cfg.Logger.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.ServiceName,
		Enabled:     cfg.TracingEnabled,
	}))
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(logger.GinMiddleware(cfg.Logger))
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.Middleware())
	}
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	engine.GET("/health", h.System.Health)
	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	RegisterLedgerRoutes(r, h)
	r.Setup()

	return engine
}

// RegisterLedgerRoutes adds the ledger domain groups to r
func RegisterLedgerRoutes(r *Router, h Handlers) {
	r.Use(middleware.TenantContext())

	systemRoutes := NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", h.System.GetSystemInfo)

	salesRoutes := NewDomainGroup("sales", "/sales")
	salesRoutes.POST("", h.Sales.ProcessSale)
	salesRoutes.GET("/:id", h.Sales.GetSale)

	customerRoutes := NewDomainGroup("customers", "/customers")
	customerRoutes.POST("/:id/payments", h.Accounts.RecordPayment)
	customerRoutes.GET("/:id/ledger", h.Accounts.GetLedger)

	alertRoutes := NewDomainGroup("alerts", "/alerts")
	alertRoutes.GET("", h.Alerts.ListAlerts)

	adminRoutes := NewDomainGroup("admin", "/admin")
	adminRoutes.POST("/debt-reconciliation", h.Reconciliation.Reconcile)

	r.Register(systemRoutes).
		Register(salesRoutes).
		Register(customerRoutes).
		Register(alertRoutes).
		Register(adminRoutes)
}
