package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	financeapp "github.com/posledger/backend/internal/application/finance"
	tradeapp "github.com/posledger/backend/internal/application/trade"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/infrastructure/cache"
	"github.com/posledger/backend/internal/infrastructure/config"
	"github.com/posledger/backend/internal/infrastructure/event"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/infrastructure/messaging"
	"github.com/posledger/backend/internal/infrastructure/persistence"
	"github.com/posledger/backend/internal/infrastructure/scheduler"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/posledger/backend/internal/interfaces/http/handler"
	"github.com/posledger/backend/internal/interfaces/http/middleware"
	"github.com/posledger/backend/internal/interfaces/http/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// a missing .env is fine; real deployments use POS_ variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	log.Info("Starting POS ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meterProvider.Meter("pos-ledger"))
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Database.SlowThreshold,
		DBSystem:        "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Repositories
	txManager := persistence.NewGormTransactionManager(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	paymentRepo := persistence.NewGormCustomerPaymentRepository(db.DB)
	folioSequencer := persistence.NewGormFolioSequencer(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	serializer := event.NewLedgerEventSerializer()
	outboxPublisher := event.NewOutboxPublisher(outboxRepo, serializer, cfg.Event.MaxRetries)

	// Application services
	saleService := tradeapp.NewSaleService(
		txManager, productRepo, customerRepo, saleRepo, folioSequencer, outboxPublisher,
		tradeapp.SaleServiceConfig{
			TaxRate:     cfg.Ledger.TaxRate,
			CreditDays:  cfg.Ledger.CreditDays,
			FolioPrefix: cfg.Ledger.FolioPrefix,
		},
		log,
	)
	saleService.SetMetrics(ledgerMetrics)

	paymentService := financeapp.NewPaymentService(txManager, customerRepo, saleRepo, paymentRepo, outboxPublisher, log)
	paymentService.SetMetrics(ledgerMetrics)

	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.App.IsProduction()),
		).Create(cfg.Idempotency.Backend)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
		paymentService.SetIdempotencyStore(store, cfg.Idempotency.TTL)
	}

	ledgerService := financeapp.NewLedgerService(txManager, customerRepo, saleRepo, paymentRepo, cfg.Ledger.RecentPaymentsLimit)
	alertService := financeapp.NewAlertService(txManager, saleRepo, customerRepo, productRepo,
		finance.NewAlertDeriver(cfg.Ledger.DueSoonDays, cfg.Ledger.LowStockLimit))

	reconciliationService := financeapp.NewDebtReconciliationService(customerRepo, paymentRepo, log)
	reconciliationService.SetMetrics(ledgerMetrics)

	// Outbox relay
	if cfg.Event.ProcessorEnabled {
		relay := newOutboxRelay(cfg, log)
		if closer, ok := relay.(io.Closer); ok {
			defer func() {
				if err := closer.Close(); err != nil {
					log.Error("Error closing outbox relay", zap.Error(err))
				}
			}()
		}

		outboxProcessor := event.NewOutboxProcessor(outboxRepo, relay, event.OutboxProcessorConfig{
			BatchSize:        cfg.Event.BatchSize,
			PollInterval:     cfg.Event.PollInterval,
			CleanupEnabled:   cfg.Event.CleanupEnabled,
			CleanupRetention: cfg.Event.CleanupRetention,
			CleanupInterval:  cfg.Event.CleanupInterval,
		}, log)
		if err := outboxProcessor.Start(ctx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", cfg.Event.BatchSize),
			zap.Duration("poll_interval", cfg.Event.PollInterval),
			zap.Bool("kafka", cfg.Kafka.Enabled),
		)
	}

	// Nightly debt reconciliation
	if cfg.Scheduler.Enabled {
		reconciliationScheduler := scheduler.NewDebtReconciliationScheduler(reconciliationService, log,
			scheduler.DebtReconciliationSchedulerConfig{
				Enabled:    cfg.Scheduler.Enabled,
				RunHour:    cfg.Scheduler.RunHour,
				JobTimeout: cfg.Scheduler.JobTimeout,
			})
		if err := reconciliationScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
		}
		defer func() {
			if err := reconciliationScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping reconciliation scheduler", zap.Error(err))
			}
		}()
		log.Info("Debt reconciliation scheduler started",
			zap.Int("run_hour_utc", cfg.Scheduler.RunHour),
			zap.Duration("job_timeout", cfg.Scheduler.JobTimeout),
		)
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engineCfg := router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}
	if cfg.HTTP.MetricsEnabled {
		httpMetrics, err := middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)
		if err != nil {
			log.Fatal("Failed to register HTTP metrics", zap.Error(err))
		}
		engineCfg.Metrics = httpMetrics
		engineCfg.MetricsHandler = promhttp.Handler()
	}

	engine := router.NewEngine(engineCfg, router.Handlers{
		Sales:          handler.NewSaleHandler(saleService),
		Accounts:       handler.NewCustomerAccountHandler(paymentService, ledgerService),
		Alerts:         handler.NewAlertHandler(alertService),
		Reconciliation: handler.NewReconciliationHandler(reconciliationService),
		System:         handler.NewSystemHandler(db, cfg.App.Name),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newOutboxRelay publishes to Kafka when configured and otherwise logs each
// event, which keeps single-node deployments free of a broker
func newOutboxRelay(cfg *config.Config, log *zap.Logger) shared.OutboxRelay {
	if !cfg.Kafka.Enabled {
		return event.NewLogRelay(log)
	}
	return messaging.NewKafkaRelay(messaging.KafkaRelayConfig{
		Brokers:      cfg.Kafka.Brokers,
		Topic:        cfg.Kafka.Topic,
		WriteTimeout: cfg.Kafka.WriteTimeout,
	}, log)
}
