package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Scanning
	Pairs               string // comma-separated provider symbols
	Timeframe           string // bar interval, e.g. "1m"
	ScanIntervalSeconds int
	ConfidenceThreshold float64
	MAShortPeriod       int
	MALongPeriod        int

	// Signal history
	HistoryPath   string
	MaxPerHour    int
	RetentionDays int

	// Market data
	ChartBaseURL    string
	CacheTTLSeconds int
	SQLitePath      string
	RedisAddr       string
	RedisPassword   string

	// News sentiment
	NewsAPIKey string

	// Delivery
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string

	// Serving
	HTTPAddr    string
	MetricsAddr string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Pairs:               getEnv("PAIRS", "EURUSD=X,GBPUSD=X,USDJPY=X,AUDUSD=X,USDCAD=X,AUDCAD=X"),
		Timeframe:           getEnv("TIMEFRAME", "1m"),
		ScanIntervalSeconds: getEnvInt("SCAN_INTERVAL_SECONDS", 30),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 75),
		MAShortPeriod:       getEnvInt("MA_SHORT_PERIOD", 8),
		MALongPeriod:        getEnvInt("MA_LONG_PERIOD", 18),

		HistoryPath:   getEnv("HISTORY_PATH", "data/signals.json"),
		MaxPerHour:    getEnvInt("MAX_SIGNALS_PER_HOUR", 3),
		RetentionDays: getEnvInt("RETENTION_DAYS", 7),

		ChartBaseURL:    getEnv("CHART_BASE_URL", "https://query1.finance.yahoo.com"),
		CacheTTLSeconds: getEnvInt("CACHE_TTL_SECONDS", 60),
		SQLitePath:      getEnv("SQLITE_PATH", "data/candles.db"),
		RedisAddr:       getEnv("REDIS_ADDR", ""), // empty keeps the in-process cache
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),

		NewsAPIKey: getEnv("NEWS_API_KEY", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":9090"),
	}
}

// ParsePairs splits the Pairs string into provider symbols.
func (c *Config) ParsePairs() []string {
	parts := strings.Split(c.Pairs, ",")
	pairs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// ScanInterval returns the scan cadence as a duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.ScanIntervalSeconds) * time.Second
}

// CacheTTL returns the candle cache lifetime as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
