package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/database"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/logging"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/ratelimit"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/routes"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" && cfg.DBPassword == "" {
		slog.Error("DATABASE_URL or DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	logging.SetupWithStore(cfg.AppEnv, pgLogHandler)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, logging.DefaultRetention, cleanupDone)

	// Static lesson index for chat context
	lessonIndex, err := services.LoadLessonIndex(cfg.LessonDataDir)
	if err != nil {
		slog.Error("failed to load lesson data", "dir", cfg.LessonDataDir, "error", err)
		os.Exit(1)
	}
	slog.Info("lesson index loaded", "lessons", lessonIndex.Len())

	// Shared rate-limit counters
	var limiterStorage fiber.Storage
	if cfg.RedisAddr != "" {
		store, err := ratelimit.NewRedisStorage(cfg.RedisAddr, "turkamerica:ratelimit:")
		if err != nil {
			slog.Warn("redis unavailable, using in-memory rate limits", "addr", cfg.RedisAddr, "error", err)
		} else {
			limiterStorage = store
			defer store.Close()
		}
	}

	var google services.GoogleVerifier
	if cfg.GoogleClientID != "" {
		verifier, err := services.NewIDTokenVerifier(context.Background())
		if err != nil {
			slog.Warn("google sign-in disabled", "error", err)
		} else {
			google = verifier
		}
	}

	var pushSender services.PushSender
	if cfg.PushConfigured() {
		pushSender = services.NewWebPushSender(cfg)
	} else {
		slog.Warn("VAPID keys not found, push notifications will not work")
	}

	// Services
	authService := services.NewAuthService(database.DB, cfg, google)
	lessonService := services.NewLessonService(database.DB)
	contributionService := services.NewContributionService(database.DB)
	notificationService := services.NewNotificationService(database.DB, cfg, pushSender)
	progressService := services.NewProgressService(database.DB)
	analyticsService := services.NewAnalyticsService(database.DB)
	chatService := services.NewChatService(database.DB, cfg, lessonIndex, services.NewGroqClient(cfg))
	if !chatService.Configured() {
		slog.Warn("GROQ_API_KEY missing, AI chat disabled")
	}

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	// Routes
	routes.Setup(app, cfg, database.DB, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Lesson:       handlers.NewLessonHandler(lessonService),
		Contribution: handlers.NewContributionHandler(contributionService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Progress:     handlers.NewProgressHandler(progressService),
		Analytics:    handlers.NewAnalyticsHandler(analyticsService),
		Chat:         handlers.NewChatHandler(chatService, cfg),
		Health:       handlers.NewHealthHandler(database.DB, lessonIndex),
	}, routes.Options{
		LimiterStorage: limiterStorage,
		ServeStatic:    true,
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	chatService.Wait()
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error",
			"method", c.Method(),
			"path", c.Path(),
			"trace_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
