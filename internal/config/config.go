package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	CORSOrigins string
	TablePrefix string
	BaseURL     string
	// Identity provider (optional; sessions work without bearer tokens)
	JWKSURL string
	// Engine configuration
	EngineProvider string // "openai" (any OpenAI-compatible endpoint) or "lorem"
	EngineBaseURL  string
	EngineAPIKey   string
	EngineModel    string
	EngineTimeout  time.Duration
	// Session freshness window for "recently seen" read paths
	SessionFreshness time.Duration
	// Invitation time-to-live
	InvitationTTL time.Duration
	// SMTP notifier; when host is empty the log-only notifier is used
	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	SMTPFrom string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:      getTablePrefix(env),
		BaseURL:          getEnv("BASE_URL", "http://localhost:3000"),
		JWKSURL:          getEnv("JWKS_URL", ""),
		EngineProvider:   getEnv("ENGINE_PROVIDER", "lorem"),
		EngineBaseURL:    getEnv("ENGINE_BASE_URL", "https://api.openai.com/v1"),
		EngineAPIKey:     getEnv("ENGINE_API_KEY", ""),
		EngineModel:      getEnv("ENGINE_MODEL", "gpt-4o"),
		EngineTimeout:    getDuration("ENGINE_TIMEOUT", 60*time.Second),
		SessionFreshness: getDuration("SESSION_FRESHNESS", 5*time.Minute),
		InvitationTTL:    getDuration("INVITATION_TTL", 7*24*time.Hour),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnv("SMTP_PORT", "587"),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPass:         getEnv("SMTP_PASS", ""),
		SMTPFrom:         getEnv("SMTP_FROM", ""),
		Debug:            getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare integers are taken as seconds
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
