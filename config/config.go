package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Symbols to track, e.g. ["BTCUSD"]
	Symbols []string

	// Timeframes: gaps are detected on the coarse timeframe, retests and
	// position updates run on the fine one.
	GapTimeframe  string
	FineTimeframe string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// API server
	APIPort int

	// Feed configuration
	Feed FeedConfig

	// Trading configuration
	Trading TradingConfig

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string

	// Optional webhook notified on trade open and terminal exits
	WebhookURL string
}

// FeedConfig holds candle feed parameters
type FeedConfig struct {
	BaseURL        string
	WSURL          string
	LiveStream     bool
	LookbackDays   int
	RateLimitMs    int
	RequestTimeout int // seconds
}

// TradingConfig holds trading parameters
type TradingConfig struct {
	// Fixed position size opened per triggered retest
	LotSize int

	// Pipeline tick cadence in minutes (matches the fine timeframe)
	PollIntervalMinutes int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Symbols:       splitSymbols(getEnvOrDefault("SYMBOLS", "BTCUSD")),
		GapTimeframe:  getEnvOrDefault("GAP_TIMEFRAME", "5m"),
		FineTimeframe: getEnvOrDefault("FINE_TIMEFRAME", "1m"),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "fvgbot"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "fvgbot"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "fvgbot123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		APIPort: getEnvInt("API_PORT", 8080),

		Feed: FeedConfig{
			BaseURL:        getEnvOrDefault("FEED_BASE_URL", "https://api.india.delta.exchange"),
			WSURL:          getEnvOrDefault("FEED_WS_URL", "wss://socket.india.delta.exchange"),
			LiveStream:     getEnvOrDefault("FEED_LIVE_STREAM", "false") == "true",
			LookbackDays:   getEnvInt("FEED_LOOKBACK_DAYS", 2),
			RateLimitMs:    getEnvInt("FEED_RATE_LIMIT_MS", 300),
			RequestTimeout: getEnvInt("FEED_REQUEST_TIMEOUT", 10),
		},

		Trading: TradingConfig{
			LotSize:             getEnvInt("TRADING_LOT_SIZE", 10),
			PollIntervalMinutes: getEnvInt("TRADING_POLL_INTERVAL", 1),
		},

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stdout"),

		WebhookURL: getEnvOrDefault("WEBHOOK_URL", ""),
	}
}

func splitSymbols(raw string) []string {
	var symbols []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			symbols = append(symbols, strings.ToUpper(s))
		}
	}
	return symbols
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
