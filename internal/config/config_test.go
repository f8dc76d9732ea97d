package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Sentinel/models"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ASSET_SYMBOL", "LOOKBACK_DAYS", "ANOMALY_WINDOW", "Z_THRESHOLD",
		"PRICE_CHANGE_THRESHOLD", "SERIES_INTERVAL", "REDIS_ADDR", "TELEGRAM_CHAT_IDS", "ALERT_MIN_SEVERITY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "SOL", cfg.Asset)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, "1d", cfg.Interval)
	assert.Equal(t, 7, cfg.AnomalyWindow)
	assert.Equal(t, 2.0, cfg.ZThreshold)
	assert.Equal(t, 0.03, cfg.PriceChangeThreshold)
	assert.Equal(t, "https://data.messari.io/api/v1", cfg.MessariBaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.TelegramChatIDs)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTLDuration())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeoutDuration())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ASSET_SYMBOL", "eth")
	t.Setenv("LOOKBACK_DAYS", "60")
	t.Setenv("ANOMALY_WINDOW", "14")
	t.Setenv("Z_THRESHOLD", "2.5")
	t.Setenv("REQUEST_TIMEOUT", "not-a-number")
	t.Setenv("TELEGRAM_CHAT_IDS", "123, -456,abc,,789")
	t.Setenv("ALERT_MIN_SEVERITY", "medium")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ETH", cfg.Asset)
	assert.Equal(t, 60, cfg.LookbackDays)
	assert.Equal(t, 14, cfg.AnomalyWindow)
	assert.Equal(t, 2.5, cfg.ZThreshold)
	assert.Equal(t, 30, cfg.RequestTimeout)
	assert.Equal(t, []int64{123, -456, 789}, cfg.TelegramChatIDs)
	assert.Equal(t, "medium", cfg.AlertMinSeverity)
	assert.Equal(t, models.SeverityMedium, cfg.MinAlertSeverity())

	opts := cfg.DetectionOptions()
	assert.Equal(t, 14, opts.Window)
	assert.Equal(t, 2.5, opts.ZThreshold)
	assert.Equal(t, 0.03, opts.PriceChangeThreshold)

	client := cfg.MessariOptions()
	assert.Equal(t, 30*time.Second, client.RequestTimeout)
	assert.Equal(t, "https://data.messari.io/api/v1", client.BaseURL)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LookbackDays:         30,
			Interval:             "1d",
			AnomalyWindow:        7,
			ZThreshold:           2,
			PriceChangeThreshold: 0.03,
			AlertMinSeverity:     "high",
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero window", func(c *Config) { c.AnomalyWindow = 0 }},
		{"negative z", func(c *Config) { c.ZThreshold = -1 }},
		{"zero price threshold", func(c *Config) { c.PriceChangeThreshold = 0 }},
		{"lookback shorter than window", func(c *Config) { c.LookbackDays = 5 }},
		{"weekly samples shorter than window", func(c *Config) { c.Interval = "1w" }},
		{"unknown interval", func(c *Config) { c.Interval = "3m" }},
		{"unknown severity", func(c *Config) { c.AlertMinSeverity = "critical" }},
	}

	base := valid()
	require.NoError(t, base.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_WindowCountsSamples(t *testing.T) {
	cfg := Config{
		LookbackDays:         1,
		Interval:             "1h",
		AnomalyWindow:        7,
		ZThreshold:           2,
		PriceChangeThreshold: 0.03,
		AlertMinSeverity:     "high",
	}
	// one day of hourly data is 24 samples
	assert.NoError(t, cfg.Validate())

	cfg.Interval = "1w"
	cfg.LookbackDays = 49
	assert.NoError(t, cfg.Validate())

	cfg.LookbackDays = 48
	assert.Error(t, cfg.Validate())
}
