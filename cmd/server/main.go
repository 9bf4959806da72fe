package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/murdhanno/backend/internal/application/catalog"
	"github.com/murdhanno/backend/internal/application/identity"
	printapp "github.com/murdhanno/backend/internal/application/printing"
	shippingapp "github.com/murdhanno/backend/internal/application/shipping"
	tradeapp "github.com/murdhanno/backend/internal/application/trade"
	"github.com/murdhanno/backend/internal/domain/printing"
	"github.com/murdhanno/backend/internal/infrastructure/auth"
	"github.com/murdhanno/backend/internal/infrastructure/cache"
	"github.com/murdhanno/backend/internal/infrastructure/config"
	"github.com/murdhanno/backend/internal/infrastructure/courier"
	"github.com/murdhanno/backend/internal/infrastructure/event"
	"github.com/murdhanno/backend/internal/infrastructure/logger"
	"github.com/murdhanno/backend/internal/infrastructure/persistence"
	infra "github.com/murdhanno/backend/internal/infrastructure/printing"
	"github.com/murdhanno/backend/internal/infrastructure/storage"
	"github.com/murdhanno/backend/internal/infrastructure/telemetry"
	"github.com/murdhanno/backend/internal/interfaces/http/handler"
	"github.com/murdhanno/backend/internal/interfaces/http/middleware"
	"github.com/murdhanno/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/murdhanno/backend/docs"
)

const retentionSweepInterval = time.Hour

//	@title			Murdhanno Backend API
//	@version		1.0
//	@description	Orders, catalog, courier booking and invoice printing for the Murdhanno shop
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	https://github.com/murdhanno/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	baseLog, err := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		TimeFormat:  "2006-01-02T15:04:05.000Z07:00",
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(baseLog)

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	// Telemetry: traces, metrics, log export and continuous profiling
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer shutdownWithTimeout(baseLog, "tracer provider", tracerProvider.Shutdown)

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer shutdownWithTimeout(baseLog, "meter provider", meterProvider.Shutdown)

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer shutdownWithTimeout(baseLog, "logger provider", loggerProvider.Shutdown)

	log := telemetry.BridgeLogger(baseLog, loggerProvider)
	zap.ReplaceGlobals(log)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		log.Warn("Continuous profiling disabled", zap.Error(err))
	} else {
		defer func() {
			if err := profiler.Stop(); err != nil {
				log.Error("Error stopping profiler", zap.Error(err))
			}
		}()
		if profiler.IsEnabled() && tracerProvider.IsEnabled() {
			if err := tracerProvider.EnableSpanProfiles(); err != nil {
				log.Warn("Failed to link spans to profiles", zap.Error(err))
			}
		}
	}

	invoiceMetrics, err := telemetry.NewInvoiceMetrics(meterProvider.Meter("invoice"))
	if err != nil {
		log.Warn("Invoice metrics disabled", zap.Error(err))
		invoiceMetrics = nil
	}

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("tracing", tracerProvider.IsEnabled()),
		zap.Bool("metrics", meterProvider.IsEnabled()),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithIgnoreRecordNotFoundError(true),
	)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// Postgres schemas are owned by cmd/migrate; sqlite runs are self-contained
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
	if cfg.Telemetry.DBSlowQueryThresh > 0 {
		dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
	}
	if cfg.Database.Driver != "" {
		dbTracing.DBSystem = cfg.Database.Driver
	}
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
		log.Warn("Failed to register database tracing", zap.Error(err))
	}

	dbMetrics, err := telemetry.RegisterDBMetrics(ctx, db.DB, meterProvider, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		log.Warn("Failed to register database metrics", zap.Error(err))
	} else if dbMetrics != nil {
		defer dbMetrics.Stop()
	}

	// Redis is optional; without it revocations and rendered invoices stay
	// in process memory
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory fallbacks", zap.Error(err))
		} else {
			redisClient = client
			defer func() {
				if err := client.Close(); err != nil {
					log.Error("Error closing Redis client", zap.Error(err))
				}
			}()
			log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	var blacklist auth.TokenBlacklist
	if redisClient != nil {
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	invoiceCache, err := cache.NewInvoiceCacheFactory(redisClient,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	).CreateCache()
	if err != nil {
		log.Fatal("Failed to create invoice cache", zap.Error(err))
	}

	pdfStorage, err := storage.NewPDFStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF storage", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	loginAttemptRepo := persistence.NewGormLoginAttemptRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	printJobRepo := persistence.NewGormPrintJobRepository(db.DB)
	productTypeRepo := persistence.NewGormProductTypeRepository(db.DB)
	sizeGroupRepo := persistence.NewGormSizeGroupRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)

	deliveryCourier, err := courier.New(&cfg.Courier, log)
	if err != nil {
		log.Fatal("Failed to initialize courier", zap.String("provider", cfg.Courier.Provider), zap.Error(err))
	}

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identity.NewAuthService(userRepo, loginAttemptRepo, jwtService, blacklist, log,
		identity.WithLockout(cfg.HTTP.LoginLockoutFailures, cfg.HTTP.LoginLockoutWindow))
	userService := identity.NewUserService(userRepo, log)
	catalogService := catalogapp.NewCatalogService(productTypeRepo, sizeGroupRepo, productRepo, log)
	orderService := tradeapp.NewOrderService(orderRepo, persistence.NewGormTransactionScope(db.DB))
	orderService.SetMetrics(invoiceMetrics)

	defaultPaper, err := printing.ParsePaperSize(cfg.Invoice.DefaultPaperSize, printing.PaperSizeLabel4x6)
	if err != nil {
		log.Fatal("Invalid default paper size", zap.String("paper_size", cfg.Invoice.DefaultPaperSize), zap.Error(err))
	}
	renderer := infra.NewInvoiceRenderer(
		infra.WithDefaultTexts(cfg.Invoice.Title, cfg.Invoice.Footer),
		infra.WithRendererMetrics(invoiceMetrics),
		infra.WithRendererLogger(log),
	)
	printService := printapp.NewInvoicePrintService(orderService, printJobRepo, renderer, pdfStorage, printapp.Config{
		DefaultPaperSize: defaultPaper,
		CacheTTL:         cfg.Invoice.CacheTTL,
		JobRetention:     cfg.Invoice.JobRetention,
	})
	printService.SetCache(invoiceCache)
	printService.SetMetrics(invoiceMetrics)
	shippingService := shippingapp.NewShippingService(deliveryCourier, locationRepo, shipmentRepo, orderRepo,
		persistence.NewGormShippingTransactionScope(db.DB), shippingapp.Config{
			DefaultStoreID: cfg.Courier.DefaultStore,
			DefaultWeight:  decimal.NewFromFloat(cfg.Courier.DefaultWeight),
			LocationTTL:    cfg.Courier.LocationTTL,
		})

	seeded, err := authService.SeedAdmin(ctx, cfg.Admin)
	if err != nil {
		log.Fatal("Failed to seed administrator", zap.Error(err))
	}
	if seeded {
		log.Info("Seeded administrator account", zap.String("username", cfg.Admin.Username))
	}

	// Domain events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	orderService.SetEventPublisher(eventBus)
	catalogService.SetEventPublisher(eventBus)
	userService.SetEventPublisher(eventBus)
	printService.SetEventPublisher(eventBus)
	shippingService.SetEventPublisher(eventBus)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go runRetentionSweep(sweepCtx, printService, log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Recover from panics with the request logger
	// 3. Logger - Log requests with request ID
	// 4. Secure - Security headers
	// 5. CORS - Whitelisted origins only
	// 6. BodyLimit - Reject oversized bodies
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	secCfg := middleware.DefaultSecurityConfig()
	secCfg.HSTSEnabled = cfg.App.IsProduction()
	engine.Use(middleware.SecureWithConfig(secCfg))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	if cfg.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		engine.Use(middleware.RateLimit(limiter))
	}
	engine.Use(middleware.HTTPMetrics(meterProvider))
	engine.Use(middleware.Profiling(cfg.Telemetry.ProfilingEnabled))
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.Enabled = tracerProvider.IsEnabled()
	tracingCfg.ServiceName = serviceName
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	engine.Use(middleware.SpanErrorMarker())

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.Revocations = authService
	jwtCfg.Logger = log
	authMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtCfg)
	authChain := func(c *gin.Context) {
		authMiddleware(c)
		if c.IsAborted() {
			return
		}
		middleware.TracingAttributeInjector()(c)
	}

	loginLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimitRequests, cfg.HTTP.LoginRateLimitWindow)
	defer loginLimiter.Stop()

	systemHandler := handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion).
		AddCheck("database", db.Ping)
	if redisClient != nil {
		systemHandler.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	engine.GET("/health", systemHandler.Health)

	// API documentation, gated by config
	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:     cfg.Swagger.Enabled,
				RequireAuth: cfg.Swagger.RequireAuth,
				AllowedIPs:  cfg.Swagger.AllowedIPs,
			}, authMiddleware),
			ginSwagger.WrapHandler(swaggerFiles.Handler),
		)
	}

	printHandler := handler.NewPrintHandler(printService)
	shippingHandler := handler.NewShippingHandler(shippingService)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(
		handler.SystemRoutes(systemHandler),
		handler.AuthRoutes(handler.NewAuthHandler(authService), authChain, middleware.LoginRateLimit(loginLimiter)),
		handler.UserRoutes(handler.NewUserHandler(userService), authChain),
		handler.CatalogRoutes(handler.NewCatalogHandler(catalogService), authChain),
		handler.OrderRoutes(handler.NewOrderHandler(orderService, printService), printHandler, shippingHandler, authChain),
		handler.CourierRoutes(shippingHandler, authChain),
		handler.PrintRoutes(printHandler, authChain),
		handler.ReportRoutes(handler.NewReportHandler(orderService), authChain),
	)
	routes := r.Setup()
	for _, rt := range routes {
		log.Debug("route", zap.String("group", rt.Group), zap.String("method", rt.Method), zap.String("path", rt.Path))
	}
	log.Info("Routes registered",
		zap.String("base_path", r.BasePath()),
		zap.Int("api", len(routes)),
		zap.Int("total", len(engine.Routes())),
	)

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

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	timeout := cfg.HTTP.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runRetentionSweep deletes expired print jobs and their PDFs until ctx ends
func runRetentionSweep(ctx context.Context, svc *printapp.InvoicePrintService, log *zap.Logger) {
	ticker := time.NewTicker(retentionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.CleanupExpired(ctx); err != nil {
				log.Warn("Print retention sweep failed", zap.Error(err))
			}
		}
	}
}

func shutdownWithTimeout(log *zap.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error shutting down "+name, zap.Error(err))
	}
}
