package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/cache"
	"github.com/prepstack/prepstack-api/internal/config"
	"github.com/prepstack/prepstack-api/internal/database"
	"github.com/prepstack/prepstack-api/internal/handler"
	"github.com/prepstack/prepstack-api/internal/middleware"
	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/service"
	"github.com/prepstack/prepstack-api/internal/sse"
	"github.com/prepstack/prepstack-api/internal/utils"
	"github.com/prepstack/prepstack-api/internal/worker"
	"github.com/prepstack/prepstack-api/pkg/extractor"
	"github.com/prepstack/prepstack-api/pkg/razorpay"
)

// main is the application entrypoint for the PrepStack exam platform API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting prepstack api")

	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis. The catalog listing cache is optional; the
	// service falls back to plain database reads without it.
	var catalogCache *cache.CatalogCache
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis connection failed - catalog cache disabled")
	} else {
		defer redisClient.Close()
		catalogCache = cache.NewCatalogCache(redisClient)
		log.Info().Msg("redis connected successfully")
	}

	// 4. Initialize gateway and extraction clients
	gatewayClient := razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)

	var extractorClient *extractor.Client
	if cfg.Extractor.BaseURL != "" {
		extractorClient = extractor.NewClient(cfg.Extractor.BaseURL, cfg.Extractor.APIKey)
	} else {
		log.Warn().Msg("EXTRACTOR_BASE_URL not set - question extraction disabled")
	}

	// 5. Initialize repositories
	seriesRepo := repository.NewTestSeriesRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)
	adminRepo := repository.NewAdminUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	trxRepo := repository.NewTransactionRepository(db)
	scheduleRepo := repository.NewScheduledTestRepository(db)
	extractionRepo := repository.NewExtractionRepository(db)

	// 6. Initialize services
	catalogSvc := service.NewCatalogService(seriesRepo, historyRepo)
	if catalogCache != nil {
		catalogSvc.SetListCache(catalogCache)
	}
	adminAuthSvc := service.NewAdminAuthService(adminRepo)
	studentSvc := service.NewStudentService(studentRepo)
	paymentSvc := service.NewPaymentService(trxRepo, studentRepo, catalogSvc, gatewayClient, cfg.Razorpay.KeySecret)
	scheduleSvc := service.NewScheduleService(scheduleRepo, catalogSvc)

	storageSvc, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("storage service initialization failed - PDF upload disabled")
	}
	var extractorDep service.ExtractorClient
	if extractorClient != nil {
		extractorDep = extractorClient
	}
	extractionSvc := service.NewExtractionService(extractionRepo, catalogSvc, storageSvc, extractorDep)

	// 6a. Wire the admin event stream
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)
	catalogSvc.SetPriceNotifier(notifier)
	paymentSvc.SetNotifier(notifier)
	extractionSvc.SetNotifier(notifier)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:      handler.NewHealthHandler(db),
		Catalog:     handler.NewCatalogHandler(catalogSvc),
		Auth:        handler.NewAuthHandler(adminAuthSvc),
		Student:     handler.NewStudentHandler(studentSvc),
		Transaction: handler.NewTransactionHandler(paymentSvc, trxRepo, cfg.Razorpay.WebhookSecret),
		Schedule:    handler.NewScheduleHandler(scheduleSvc),
		Extraction:  handler.NewExtractionHandler(extractionSvc),
		SSE:         handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewPaymentStatusWorker(
		trxRepo, paymentSvc,
		cfg.Worker.PaymentCheckInterval,
		cfg.Worker.PaymentStaleAfter,
		cfg.Worker.PaymentExpireAfter,
	).Start(ctx)
	if extractorClient != nil {
		go worker.NewExtractionWorker(extractionRepo, extractionSvc, cfg.Worker.ExtractionPollInterval).Start(ctx)
	}

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health      *handler.HealthHandler
	Catalog     *handler.CatalogHandler
	Auth        *handler.AuthHandler
	Student     *handler.StudentHandler
	Transaction *handler.TransactionHandler
	Schedule    *handler.ScheduleHandler
	Extraction  *handler.ExtractionHandler
	SSE         *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	// Gateway webhook endpoint (authenticated by signature, not JWT)
	router.POST("/webhook/razorpay", handlers.Transaction.HandleWebhook)

	router.GET("/v1/health", handlers.Health.GetHealth)

	// Public storefront routes
	router.GET("/v1/test-series", handlers.Catalog.List)
	router.GET("/v1/test-series/:id", handlers.Catalog.Get)
	router.GET("/v1/test-series/:id/schedule", handlers.Schedule.ListForSeries)

	// Price management lives on the series resource but is admin-only.
	router.PATCH("/v1/test-series/:id/price", jwtMiddleware.Handle(), handlers.Catalog.UpdatePrice)
	router.GET("/v1/test-series/:id/price-history", jwtMiddleware.Handle(), handlers.Catalog.PriceHistory)

	// Checkout
	router.POST("/v1/orders", handlers.Transaction.CreateOrder)
	router.POST("/v1/payments/verify", handlers.Transaction.VerifyPayment)

	// Admin routes
	admin := router.Group("/v1/admin")
	admin.POST("/auth/login", handlers.Auth.Login)
	// EventSource cannot set headers; the SSE endpoint validates its own token.
	admin.GET("/events", handlers.SSE.Stream)
	admin.Use(jwtMiddleware.Handle())
	{
		// Scheduled tests (admin listing includes unpublished windows)
		admin.GET("/test-series/:id/schedule", handlers.Schedule.ListForSeries)
		admin.POST("/test-series/:id/schedule", handlers.Schedule.Create)
		admin.PUT("/scheduled-tests/:id", handlers.Schedule.Update)
		admin.DELETE("/scheduled-tests/:id", handlers.Schedule.Delete)

		// Question extraction
		admin.POST("/test-series/:id/questions/upload", handlers.Extraction.Upload)
		admin.GET("/extraction-jobs/:id", handlers.Extraction.GetJob)

		// Students
		admin.GET("/students", handlers.Student.List)
		admin.GET("/students/:id", handlers.Student.Get)
		admin.PATCH("/students/:id/status", handlers.Student.SetStatus)

		// Transactions
		admin.GET("/transactions", handlers.Transaction.List)
		admin.GET("/transactions/stats", handlers.Transaction.Stats)
		admin.GET("/transactions/:id", handlers.Transaction.Get)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
