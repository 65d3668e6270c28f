package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	attributionapp "github.com/taxpilot/backend/internal/application/attribution"
	crmapp "github.com/taxpilot/backend/internal/application/crm"
	identityapp "github.com/taxpilot/backend/internal/application/identity"
	leadapp "github.com/taxpilot/backend/internal/application/lead"
	reportapp "github.com/taxpilot/backend/internal/application/report"
	shippingapp "github.com/taxpilot/backend/internal/application/shipping"
	storefrontapp "github.com/taxpilot/backend/internal/application/storefront"
	taxapp "github.com/taxpilot/backend/internal/application/tax"
	"github.com/taxpilot/backend/internal/domain/identity"
	"github.com/taxpilot/backend/internal/domain/shipping"
	"github.com/taxpilot/backend/internal/infrastructure/auth"
	"github.com/taxpilot/backend/internal/infrastructure/cache"
	"github.com/taxpilot/backend/internal/infrastructure/carrier"
	"github.com/taxpilot/backend/internal/infrastructure/config"
	"github.com/taxpilot/backend/internal/infrastructure/email"
	"github.com/taxpilot/backend/internal/infrastructure/httpclient"
	"github.com/taxpilot/backend/internal/infrastructure/logger"
	"github.com/taxpilot/backend/internal/infrastructure/persistence"
	"github.com/taxpilot/backend/internal/infrastructure/scheduler"
	"github.com/taxpilot/backend/internal/infrastructure/storage"
	"github.com/taxpilot/backend/internal/infrastructure/telemetry"
	"github.com/taxpilot/backend/internal/interfaces/http/handler"
	"github.com/taxpilot/backend/internal/interfaces/http/middleware"
	"github.com/taxpilot/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting TaxPilot backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	businessMetrics, err := telemetry.NewBusinessMetrics()
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(cfg.Database.DBName); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Redis backs the token blacklist and the shipping rate cache. A
	// failed ping is logged, not fatal; both consumers degrade gracefully.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}()
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable at startup", zap.Error(err))
	}
	cancelPing()

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	attributionRepo := persistence.NewGormAttributionRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	interactionRepo := persistence.NewGormInteractionRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	returnRepo := persistence.NewGormTaxReturnRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	appointmentRepo := persistence.NewGormAppointmentRepository(db.DB)
	productRepo := persistence.NewGormPrintProductRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Outbound HTTP client shared by carrier adapters and the email sender
	outboundClient := httpclient.New(cfg.Outbound, httpclient.WithLogger(log))

	// Email
	var sender email.Sender
	if cfg.Email.Enabled {
		resend, err := email.NewResendSender(cfg.Email, outboundClient, log)
		if err != nil {
			log.Fatal("Failed to initialize email sender", zap.Error(err))
		}
		sender = resend
	} else {
		sender = email.NewNoopSender(log)
		log.Info("Email sending disabled, using noop sender")
	}

	// Document storage
	var objectStorage taxapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Info("Object storage disabled, using stub")
	}

	// Shipping carriers
	var carriers []shipping.Carrier
	if cfg.Shipping.FedEx.Enabled {
		fedex, err := carrier.NewFedExAdapter(cfg.Shipping.FedEx, outboundClient)
		if err != nil {
			log.Fatal("Failed to initialize FedEx adapter", zap.Error(err))
		}
		carriers = append(carriers, fedex)
	}
	if cfg.Shipping.UPS.Enabled {
		ups, err := carrier.NewUPSAdapter(cfg.Shipping.UPS, outboundClient)
		if err != nil {
			log.Fatal("Failed to initialize UPS adapter", zap.Error(err))
		}
		carriers = append(carriers, ups)
	}
	if cfg.Shipping.USPS.Enabled {
		usps, err := carrier.NewUSPSAdapter(cfg.Shipping.USPS, outboundClient)
		if err != nil {
			log.Fatal("Failed to initialize USPS adapter", zap.Error(err))
		}
		carriers = append(carriers, usps)
	}
	log.Info("Shipping carriers configured", zap.Int("count", len(carriers)))

	rateCache := cache.NewRedisRateCache(redisClient,
		cache.WithRateTTL(cfg.Shipping.CacheTTL),
		cache.WithRateCacheLogger(log),
	)

	// Auth primitives
	jwtService := auth.NewJWTService(cfg.JWT)
	blacklist := auth.NewRedisTokenBlacklist(redisClient)
	hasher := auth.NewPasswordHasher()

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, hasher, blacklist, log)
	userService := identityapp.NewUserService(userRepo, hasher, log)
	resolverService := attributionapp.NewResolverService(attributionRepo, userRepo, businessMetrics, log)
	leadService := leadapp.NewLeadService(leadRepo, userRepo, resolverService, hasher, sender, businessMetrics, log)
	contactService := crmapp.NewContactService(contactRepo, interactionRepo, log)
	taskService := crmapp.NewTaskService(taskRepo, contactRepo, log)
	returnService := taxapp.NewReturnService(returnRepo, userRepo, sender, log)
	documentService := taxapp.NewDocumentService(documentRepo, returnRepo, objectStorage, cfg.Storage.PresignExpiry, log)
	appointmentService := taxapp.NewAppointmentService(appointmentRepo, userRepo, log)
	catalogService := storefrontapp.NewCatalogService(productRepo, log)
	pricingService := storefrontapp.NewPricingService(productRepo, businessMetrics, log)
	rateService := shippingapp.NewRateService(carriers, rateCache, log,
		shippingapp.WithCarrierTimeout(cfg.Shipping.CarrierTimeout),
		shippingapp.WithAllowedServices(cfg.Shipping.AllowedServices),
		shippingapp.WithMetrics(businessMetrics),
	)
	reportService := reportapp.NewReportService(reportRepo, appointmentRepo, userRepo, sender, log)

	// Background jobs
	if cfg.Scheduler.Enabled {
		jobScheduler := scheduler.NewScheduler(scheduler.Config{
			Enabled:           cfg.Scheduler.Enabled,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, reportService, log)
		if err := jobScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start job scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := jobScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping job scheduler", zap.Error(err))
			}
		}()

		trigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
			DailyRunHour:   cfg.Scheduler.DailyReportHour,
			DailyRunMinute: 0,
			CheckInterval:  time.Minute,
		}, jobScheduler, log)
		if err := trigger.Start(ctx); err != nil {
			log.Fatal("Failed to start cron trigger", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := trigger.Stop(stopCtx); err != nil {
				log.Error("Error stopping cron trigger", zap.Error(err))
			}
		}()
		log.Info("Background scheduler started",
			zap.Int("daily_report_hour", cfg.Scheduler.DailyReportHour),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Stop()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tighter limit on credential endpoints
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Stop()
		authLimit := middleware.RateLimit(authLimiter)
		engine.Use(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/v1/auth/") {
				authLimit(c)
				return
			}
			c.Next()
		})
	}

	// Public surface: registration and login, lead capture, the print
	// storefront, shipping quotes and probes. Everything else requires a
	// Bearer token; role checks are layered onto staff and admin routes.
	engine.Use(middleware.JWTAuth(middleware.JWTConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/shipping/rates",
		},
		SkipPathPrefixes: []string{
			"/api/v1/leads",
			"/api/v1/storefront",
			"/api/v1/system",
			"/health",
		},
		Logger: log,
	}))

	staffOnly := []gin.HandlerFunc{
		middleware.JWTAuth(middleware.JWTConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		middleware.RequireRoles(string(identity.UserRolePreparer), string(identity.UserRoleAdmin)),
	}
	adminOnly := []gin.HandlerFunc{
		middleware.JWTAuth(middleware.JWTConfig{
			JWTService:     jwtService,
			TokenBlacklist: blacklist,
			Logger:         log,
		}),
		middleware.RequireRoles(string(identity.UserRoleAdmin)),
	}

	router.New(engine, router.WithAPIVersion("v1")).
		Register(
			handler.NewAuthHandler(authService),
			handler.NewUserHandler(userService),
			handler.NewLeadHandler(leadService, staffOnly...),
			handler.NewAttributionHandler(resolverService),
			handler.NewContactHandler(contactService),
			handler.NewTaskHandler(taskService),
			handler.NewTaxReturnHandler(returnService),
			handler.NewDocumentHandler(documentService),
			handler.NewAppointmentHandler(appointmentService),
			handler.NewStorefrontHandler(catalogService, pricingService, adminOnly...),
			handler.NewShippingHandler(rateService),
			handler.NewReportHandler(reportService),
			handler.NewSystemHandler(db.DB, redisClient, cfg.App.Name, cfg.App.Env),
		).
		Setup()

	// Bare liveness probe for load balancers
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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
