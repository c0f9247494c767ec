package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	DatabaseURL     string
	RedisURL        string
	CORSAllowOrigin []string

	AnthropicAPIKey     string
	IntegrationModel    string
	IntegrationTimeout  time.Duration
	IntegrationAttempts int
	IntegrationDelay    time.Duration

	AcceptLimit  int
	AcceptWindow time.Duration

	WorkerCount int
	WorkerPoll  time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		DatabaseURL:     dbURL,
		RedisURL:        getEnv("REDIS_URL", ""),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		AnthropicAPIKey:     getEnv("ANTHROPIC_API_KEY", ""),
		IntegrationModel:    getEnv("INTEGRATION_MODEL", "claude-3-5-sonnet-20241022"),
		IntegrationTimeout:  getEnvDuration("INTEGRATION_TIMEOUT", 30*time.Second),
		IntegrationAttempts: getEnvInt("INTEGRATION_MAX_ATTEMPTS", 2),
		IntegrationDelay:    getEnvDuration("INTEGRATION_RETRY_DELAY", 2*time.Second),

		AcceptLimit:  getEnvInt("ACCEPT_RATE_LIMIT", 10),
		AcceptWindow: getEnvDuration("ACCEPT_RATE_WINDOW", time.Hour),

		WorkerCount: getEnvInt("WORKER_COUNT", 4),
		WorkerPoll:  getEnvDuration("WORKER_POLL_INTERVAL", 2*time.Second),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config %s invalid int: %v", key, err)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config %s invalid duration: %v", key, err)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}
