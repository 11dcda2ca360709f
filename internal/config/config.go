package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// StoreName is the pizzeria name substituted into the agent prompt.
	StoreName string

	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAITemperature float64
	OpenAIMaxTokens   int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// DatabaseURL enables the Postgres order archive when set.
	DatabaseURL string

	// WhatsApp gateway (external session/automation layer).
	GatewayBaseURL       string
	GatewayToken         string
	GatewayWebhookSecret string

	WorkerCount int
	QueueBuffer int

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	OrderTicketEmail  string

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreName: getEnv("STORE_NAME", "Pizzaria Dev"),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAITemperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.2),
		OpenAIMaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 256),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		GatewayBaseURL:       getEnv("GATEWAY_BASE_URL", "http://localhost:3000"),
		GatewayToken:         getEnv("GATEWAY_TOKEN", ""),
		GatewayWebhookSecret: getEnv("GATEWAY_WEBHOOK_SECRET", ""),

		WorkerCount: getEnvAsInt("WORKER_COUNT", 2),
		QueueBuffer: getEnvAsInt("QUEUE_BUFFER", 128),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Pizzeria Bot"),
		OrderTicketEmail:  getEnv("ORDER_TICKET_EMAIL", ""),

		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
