package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Lesson       *handlers.LessonHandler
	Contribution *handlers.ContributionHandler
	Notification *handlers.NotificationHandler
	Progress     *handlers.ProgressHandler
	Analytics    *handlers.AnalyticsHandler
	Chat         *handlers.ChatHandler
	Health       *handlers.HealthHandler
}

// Options tunes route setup. A nil LimiterStorage keeps counters in memory.
type Options struct {
	LimiterStorage fiber.Storage
	ServeStatic    bool
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, opts Options) {
	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		Storage:           opts.LimiterStorage,
	}))

	api.Get("/health", h.Health.Check)

	// Credential endpoints: 10 req/min per IP
	authLimit := limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return "auth:" + c.IP() },
		Storage:           opts.LimiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many attempts, please try again later.",
			})
		},
	})
	api.Post("/register", authLimit, h.Auth.Register)
	api.Post("/login", authLimit, h.Auth.Login)

	auth := api.Group("/auth")
	auth.Post("/register", authLimit, h.Auth.Register)
	auth.Post("/login", authLimit, h.Auth.Login)
	auth.Post("/google", authLimit, h.Auth.Google)

	jwt := middleware.JWTProtected(cfg)
	auth.Post("/logout", jwt, h.Auth.Logout)
	auth.Get("/verify", jwt, h.Auth.Verify)
	auth.Get("/profile", jwt, h.Auth.GetProfile)
	auth.Put("/profile", jwt, h.Auth.UpdateProfile)
	auth.Post("/change-password", jwt, h.Auth.ChangePassword)
	auth.Post("/update-streak", jwt, h.Auth.UpdateStreak)
	auth.Get("/streak", jwt, h.Auth.GetStreak)

	admin := middleware.AdminRequired(db, cfg)
	optional := middleware.OptionalAuth(cfg)

	lessons := api.Group("/lessons")
	lessons.Get("/", h.Lesson.List)
	lessons.Get("/:id", h.Lesson.Get)
	lessons.Delete("/:id", jwt, admin, h.Lesson.Delete)

	contributions := api.Group("/contributions")
	contributions.Get("/", jwt, admin, h.Contribution.List)
	contributions.Get("/pending", jwt, admin, h.Contribution.ListPending)
	contributions.Post("/", optional, h.Contribution.Create)
	contributions.Delete("/:id", jwt, admin, h.Contribution.Delete)
	contributions.Put("/:id/status", jwt, admin, h.Contribution.UpdateStatus)

	notifications := api.Group("/notifications")
	notifications.Get("/public-key", h.Notification.PublicKey)
	notifications.Post("/subscribe", optional, h.Notification.Subscribe)
	notifications.Post("/send", jwt, admin, h.Notification.Send)

	api.Post("/progress/view", jwt, h.Progress.View)
	api.Post("/analytics", h.Analytics.Track)

	// AI chat: 50 req/hour per IP
	api.Post("/chat", limiter.New(limiter.Config{
		Max:          50,
		Expiration:   1 * time.Hour,
		KeyGenerator: func(c *fiber.Ctx) string { return "chat:" + c.IP() },
		Storage:      opts.LimiterStorage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ChatErrorResponse{
				Error: "Too many AI requests, please try again later.",
			})
		},
	}), optional, h.Chat.Chat)

	if opts.ServeStatic {
		app.Static("/data", cfg.LessonDataDir)
		app.Static("/", cfg.SiteDir)
	}
}
