package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	bankingapp "github.com/vastra-erp/backend/internal/application/banking"
	inventoryapp "github.com/vastra-erp/backend/internal/application/inventory"
	ledgerapp "github.com/vastra-erp/backend/internal/application/ledger"
	partnerapp "github.com/vastra-erp/backend/internal/application/partner"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/infrastructure/cache"
	"github.com/vastra-erp/backend/internal/infrastructure/config"
	"github.com/vastra-erp/backend/internal/infrastructure/event"
	"github.com/vastra-erp/backend/internal/infrastructure/logger"
	"github.com/vastra-erp/backend/internal/infrastructure/persistence"
	"github.com/vastra-erp/backend/internal/infrastructure/telemetry"
	"github.com/vastra-erp/backend/internal/interfaces/http/handler"
	"github.com/vastra-erp/backend/internal/interfaces/http/middleware"
	"github.com/vastra-erp/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Vastra Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry providers. Each one degrades to a no-op when disabled.
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Continuous profiling (Pyroscope)
	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		ProfileCPU:        true,
		ProfileInuseSpace: true,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing (otelgorm)
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
		log.Info("Database tracing enabled",
			zap.Duration("slow_query_threshold", cfg.Telemetry.DBSlowQueryThresh))
	}

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	challanRepo := persistence.NewGormChallanRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	sequenceRepo := persistence.NewGormSequenceRepository(db.DB)
	transferRepo := persistence.NewGormTransferRepository(db.DB)
	partyRepo := persistence.NewGormPartyRepository(db.DB)
	bankAccountRepo := persistence.NewGormBankAccountRepository(db.DB)
	bankTxRepo := persistence.NewGormBankTransactionRepository(db.DB)

	// Idempotency store for payment creation. Redis when configured,
	// in-memory otherwise.
	var idemStore shared.IdempotencyStore
	if cfg.Idempotency.Backend == "redis" {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
		idemStore, err = factory.CreateStore()
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
	} else {
		idemStore = cache.NewInMemoryIdempotencyStore()
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// In-process event bus. Ledger lifecycle events (document created,
	// settled, payment recorded/deleted, transfer reversed) fan out to
	// subscribers; the audit logger below is the default one.
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(newAuditEventLogger(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Initialize application services
	reconService := ledgerapp.NewReconciliationService(paymentRepo, invoiceRepo, challanRepo)
	documentService := ledgerapp.NewDocumentService(invoiceRepo, challanRepo, sequenceRepo, reconService, log,
		ledgerapp.WithDocumentEventPublisher(eventBus))
	paymentService := ledgerapp.NewPaymentService(
		paymentRepo, invoiceRepo, challanRepo, sequenceRepo,
		bankAccountRepo, bankTxRepo, reconService, log,
		ledgerapp.WithIdempotencyStore(idemStore, shared.IdempotencyConfig{
			Enabled: cfg.Idempotency.Enabled,
			TTL:     cfg.Idempotency.TTL,
		}),
		ledgerapp.WithPaymentEventPublisher(eventBus),
	)
	transferService := inventoryapp.NewTransferService(transferRepo, challanRepo, paymentRepo, sequenceRepo, log,
		inventoryapp.WithTransferEventPublisher(eventBus))
	partyService := partnerapp.NewPartyService(partyRepo, log)
	bankingService := bankingapp.NewBankingService(bankAccountRepo, bankTxRepo, log)

	// Business metrics over the payment ledger
	if cfg.Telemetry.Enabled {
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meterProvider.Meter("vastra.ledger"),
			Logger:         log,
			LedgerProvider: telemetry.NewGormLedgerMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Business metrics unavailable", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(ctx, telemetry.NewGormCompanyProvider(db.DB), 5*time.Minute)
			defer businessMetrics.Stop()
		}
	}

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(documentService)
	challanHandler := handler.NewChallanHandler(documentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	transferHandler := handler.NewTransferHandler(transferService)
	partyHandler := handler.NewPartyHandler(partyService, documentService)
	bankHandler := handler.NewBankHandler(bankingService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - OpenTelemetry spans per request
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.HTTPMetricsWithMeter(meterProvider.Meter("vastra.http"), cfg.Telemetry.Enabled))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning and scope requirements)
	engine.GET("/healthz", healthHandler(db, log))
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Every ledger route runs under a (company, financial year) scope
	// extracted from request headers.
	scopeConfig := middleware.DefaultScopeConfig()
	scopeConfig.DefaultFinancialYear = cfg.Ledger.DefaultFinancialYear
	scopeConfig.Logger = log
	r.Use(middleware.ScopeMiddlewareWithConfig(scopeConfig))

	// Ledger domain (invoices, challans, payments)
	ledgerRoutes := router.NewDomainGroup("ledger", "")
	ledgerRoutes.POST("/invoices", invoiceHandler.Create)
	ledgerRoutes.GET("/invoices", invoiceHandler.List)
	ledgerRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	ledgerRoutes.DELETE("/invoices/:id", invoiceHandler.Delete)

	ledgerRoutes.POST("/challans", challanHandler.Create)
	ledgerRoutes.GET("/challans", challanHandler.List)
	ledgerRoutes.GET("/challans/:id", challanHandler.GetByID)
	ledgerRoutes.DELETE("/challans/:id", challanHandler.Delete)

	ledgerRoutes.POST("/payments/receipts", paymentHandler.RecordReceipt)
	ledgerRoutes.POST("/payments/disbursements", paymentHandler.RecordDisbursement)
	ledgerRoutes.GET("/payments", paymentHandler.List)
	ledgerRoutes.GET("/payments/:id", paymentHandler.GetByID)
	ledgerRoutes.DELETE("/payments/:id", paymentHandler.Delete)

	// Inventory domain (stock transfers between parties)
	inventoryRoutes := router.NewDomainGroup("inventory", "")
	inventoryRoutes.POST("/transfers", transferHandler.Create)
	inventoryRoutes.GET("/transfers", transferHandler.List)
	inventoryRoutes.GET("/transfers/:id", transferHandler.GetByID)
	inventoryRoutes.POST("/transfers/:id/reverse", transferHandler.Reverse)

	// Partner domain (customers, suppliers, outstanding views)
	partnerRoutes := router.NewDomainGroup("partner", "")
	partnerRoutes.POST("/parties", partyHandler.Create)
	partnerRoutes.GET("/parties", partyHandler.List)
	partnerRoutes.GET("/parties/:id", partyHandler.GetByID)
	partnerRoutes.PUT("/parties/:id", partyHandler.Update)
	partnerRoutes.POST("/parties/:id/activate", partyHandler.Activate)
	partnerRoutes.POST("/parties/:id/deactivate", partyHandler.Deactivate)
	partnerRoutes.GET("/parties/:id/outstanding-invoices", partyHandler.OutstandingInvoices)
	partnerRoutes.GET("/parties/:id/outstanding-challans", partyHandler.OutstandingChallans)

	// Banking domain (accounts and passbook)
	bankingRoutes := router.NewDomainGroup("banking", "")
	bankingRoutes.POST("/bank-accounts", bankHandler.CreateAccount)
	bankingRoutes.GET("/bank-accounts", bankHandler.ListAccounts)
	bankingRoutes.GET("/bank-accounts/:id", bankHandler.GetAccount)
	bankingRoutes.POST("/bank-accounts/:id/entries", bankHandler.RecordManualEntry)
	bankingRoutes.GET("/bank-accounts/:id/passbook", bankHandler.ListPassbook)

	// Register all domain groups
	r.Register(ledgerRoutes).
		Register(inventoryRoutes).
		Register(partnerRoutes).
		Register(bankingRoutes)

	// Setup routes
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// auditEventLogger writes a structured log line for every domain event.
type auditEventLogger struct {
	logger *zap.Logger
}

func newAuditEventLogger(logger *zap.Logger) *auditEventLogger {
	return &auditEventLogger{logger: logger.Named("audit")}
}

func (h *auditEventLogger) Handle(_ context.Context, e shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", e.EventType()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.String("company_id", e.CompanyID().String()),
	)
	return nil
}

// EventTypes returns nil so the audit logger receives every event.
func (h *auditEventLogger) EventTypes() []string {
	return nil
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
