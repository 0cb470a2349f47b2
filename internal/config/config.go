// Package config loads service configuration from the environment.
// A .env file is honored when present (local development); real
// deployments set variables directly.
package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to start.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// DBPath is the SQLite database file.
	DBPath string

	// SessionSecret signs table-session tokens.
	SessionSecret string

	// SessionDuration is how long a table session stays valid.
	SessionDuration time.Duration

	// GatewayURL and GatewayAPIKey configure the payment provider.
	// An empty URL selects the in-memory fake (local development).
	GatewayURL    string
	GatewayAPIKey string

	// Currency is the ISO 4217 code charges are made in.
	Currency string

	// RabbitMQURL and EventsExchange configure event publishing.
	// An empty URL disables publishing.
	RabbitMQURL    string
	EventsExchange string
}

// Load reads configuration from the environment, with defaults suitable
// for local development.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	return &Config{
		Port:            getEnv("PORT", "8080"),
		DBPath:          getEnv("DB_PATH", "./data/tables.db"),
		SessionSecret:   getEnv("SESSION_SECRET", "dev-only-secret-change-in-prod!!"),
		SessionDuration: getDuration("SESSION_DURATION", 12*time.Hour),
		GatewayURL:      getEnv("GATEWAY_URL", ""),
		GatewayAPIKey:   getEnv("GATEWAY_API_KEY", ""),
		Currency:        getEnv("CURRENCY", "MXN"),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		EventsExchange:  getEnv("EVENTS_EXCHANGE", "table_events"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("invalid duration, using default", "key", key, "value", value)
	}
	return defaultValue
}
