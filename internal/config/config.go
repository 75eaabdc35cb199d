package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment (development, production)
	AppEnv string

	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret string
	JWTExpiry time.Duration

	// Google sign-in
	GoogleClientID string

	// Web push
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	// AI (Groq, OpenAI-compatible)
	GroqAPIKey string
	GroqAPIURL string
	GroqModel  string
	AITimeout  time.Duration

	// Admin
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string
	RedisAddr   string

	// Static content
	SiteDir       string
	LessonDataDir string
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	return &Config{
		AppEnv: getEnv("APP_ENV", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "turkamerica"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "168h"), 7*24*time.Hour),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:    getEnv("VAPID_SUBJECT", "mailto:admin@turkamerica.com"),

		GroqAPIKey: getEnv("GROQ_API_KEY", ""),
		GroqAPIURL: getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
		GroqModel:  getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		AITimeout:  parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		Port:        getEnv("PORT", "3000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),

		SiteDir:       getEnv("SITE_DIR", "_site"),
		LessonDataDir: getEnv("LESSON_DATA_DIR", "src/data"),
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c *Config) PushConfigured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
