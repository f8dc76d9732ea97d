package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/anomaly"
	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/models"
)

// Config holds all application configuration
type Config struct {
	MessariAPIKey        string  `env:"MESSARI_API_KEY"`
	MessariBaseURL       string  `env:"MESSARI_BASE_URL" envDefault:"https://data.messari.io/api/v1"`
	Asset                string  `env:"ASSET_SYMBOL" envDefault:"SOL"`
	LookbackDays         int     `env:"LOOKBACK_DAYS" envDefault:"30"`
	Interval             string  `env:"SERIES_INTERVAL" envDefault:"1d"`
	AnomalyWindow        int     `env:"ANOMALY_WINDOW" envDefault:"7"`
	ZThreshold           float64 `env:"Z_THRESHOLD" envDefault:"2.0"`
	PriceChangeThreshold float64 `env:"PRICE_CHANGE_THRESHOLD" envDefault:"0.03"`
	LogLevel             string  `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout       int     `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RequestsPerSec       int     `env:"REQUESTS_PER_SEC" envDefault:"5"`
	MaxRetryTimeout      int     `env:"MAX_RETRY_TIMEOUT" envDefault:"30"` // seconds
	HTTPAddr             string  `env:"HTTP_ADDR" envDefault:":8080"`
	RedisAddr            string  `env:"REDIS_ADDR"` // empty disables the cache
	RedisPassword        string  `env:"REDIS_PASSWORD"`
	RedisDB              int     `env:"REDIS_DB" envDefault:"0"`
	CacheTTL             int     `env:"CACHE_TTL" envDefault:"600"` // seconds
	NewsTopic            string  `env:"NEWS_TOPIC" envDefault:"solana"`
	NewsLimit            int     `env:"NEWS_LIMIT" envDefault:"30"`
	TelegramBotToken     string  `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatIDs      []int64 `env:"TELEGRAM_CHAT_IDS"`
	AlertMinSeverity     string  `env:"ALERT_MIN_SEVERITY" envDefault:"high"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.MessariAPIKey = os.Getenv("MESSARI_API_KEY")
	cfg.MessariBaseURL = getEnvWithDefault("MESSARI_BASE_URL", "https://data.messari.io/api/v1")
	cfg.Asset = strings.ToUpper(getEnvWithDefault("ASSET_SYMBOL", "SOL"))
	cfg.LookbackDays = getEnvIntWithDefault("LOOKBACK_DAYS", 30)
	cfg.Interval = getEnvWithDefault("SERIES_INTERVAL", "1d")
	cfg.AnomalyWindow = getEnvIntWithDefault("ANOMALY_WINDOW", 7)
	cfg.ZThreshold = getEnvFloatWithDefault("Z_THRESHOLD", 2.0)
	cfg.PriceChangeThreshold = getEnvFloatWithDefault("PRICE_CHANGE_THRESHOLD", 0.03)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.MaxRetryTimeout = getEnvIntWithDefault("MAX_RETRY_TIMEOUT", 30)
	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", ":8080")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", 0)
	cfg.CacheTTL = getEnvIntWithDefault("CACHE_TTL", 600)
	cfg.NewsTopic = getEnvWithDefault("NEWS_TOPIC", "solana")
	cfg.NewsLimit = getEnvIntWithDefault("NEWS_LIMIT", 30)
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatIDs = getEnvInt64List("TELEGRAM_CHAT_IDS")
	cfg.AlertMinSeverity = getEnvWithDefault("ALERT_MIN_SEVERITY", "high")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the detection parameters and lookback
func (c *Config) Validate() error {
	if c.AnomalyWindow <= 0 {
		return fmt.Errorf("ANOMALY_WINDOW must be positive, got %d", c.AnomalyWindow)
	}
	if c.ZThreshold <= 0 {
		return fmt.Errorf("Z_THRESHOLD must be positive, got %.2f", c.ZThreshold)
	}
	if c.PriceChangeThreshold <= 0 {
		return fmt.Errorf("PRICE_CHANGE_THRESHOLD must be positive, got %.4f", c.PriceChangeThreshold)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("LOOKBACK_DAYS must be positive, got %d", c.LookbackDays)
	}
	// the window counts samples, not days
	points := models.PointsForLookback(c.Interval, c.LookbackDays)
	if points == 0 {
		return fmt.Errorf("unsupported SERIES_INTERVAL %q", c.Interval)
	}
	if points < c.AnomalyWindow {
		return fmt.Errorf("LOOKBACK_DAYS (%d) at SERIES_INTERVAL %s yields %d samples, need at least ANOMALY_WINDOW (%d)",
			c.LookbackDays, c.Interval, points, c.AnomalyWindow)
	}
	if _, ok := models.ParseSeverity(c.AlertMinSeverity); !ok {
		return fmt.Errorf("unsupported ALERT_MIN_SEVERITY %q", c.AlertMinSeverity)
	}
	return nil
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) MaxRetryTimeoutDuration() time.Duration {
	return time.Duration(c.MaxRetryTimeout) * time.Second
}

func (c *Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// DetectionOptions returns the volume anomaly detection parameters
func (c *Config) DetectionOptions() anomaly.Options {
	return anomaly.Options{
		Window:               c.AnomalyWindow,
		ZThreshold:           c.ZThreshold,
		PriceChangeThreshold: c.PriceChangeThreshold,
	}
}

// MessariOptions returns the upstream client options
func (c *Config) MessariOptions() messari.ClientOptions {
	return messari.ClientOptions{
		APIKey:          c.MessariAPIKey,
		BaseURL:         c.MessariBaseURL,
		RequestTimeout:  c.RequestTimeoutDuration(),
		RequestsPerSec:  c.RequestsPerSec,
		MaxRetryTimeout: c.MaxRetryTimeoutDuration(),
	}
}

// MinAlertSeverity returns the parsed ALERT_MIN_SEVERITY
func (c *Config) MinAlertSeverity() models.Severity {
	sev, _ := models.ParseSeverity(c.AlertMinSeverity)
	return sev
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvInt64List(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("key", key).Str("value", part).Msg("skipping invalid integer")
			continue
		}
		out = append(out, id)
	}
	return out
}
