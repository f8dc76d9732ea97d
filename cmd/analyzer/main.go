package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/internal/config"
	"github.com/Alias1177/Sentinel/internal/service"
	"github.com/Alias1177/Sentinel/models"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting volume fraud analyzer")

	printConfig(cfg)

	// 3. Setup API client and services
	client := messari.NewClient(cfg.MessariOptions())
	fraud := service.NewFraudService(client, nil, service.FraudOptions{
		Interval:     cfg.Interval,
		LookbackDays: cfg.LookbackDays,
		Detection:    cfg.DetectionOptions(),
	})
	sentiments := service.NewSentimentService(client, client)

	// 4. Run analysis
	report, err := fraud.Analyze(ctx, cfg.Asset, cfg.LookbackDays)
	if err != nil {
		log.Fatal().Err(err).Str("asset", cfg.Asset).Msg("Fraud analysis failed")
	}

	printMarketSummary(report)
	printAnomalies(report)
	printWashTrading(report)

	// 5. Social sentiment is informative only
	social, err := sentiments.Social(ctx, cfg.Asset)
	if err != nil {
		log.Warn().Err(err).Msg("Social sentiment unavailable")
		return
	}
	printSocial(social)
}

// setupSignalHandling configures signal handling for graceful shutdown
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
		os.Exit(0)
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}

func printConfig(cfg *config.Config) {
	log.Info().
		Str("Asset", cfg.Asset).
		Str("Interval", cfg.Interval).
		Int("LookbackDays", cfg.LookbackDays).
		Int("AnomalyWindow", cfg.AnomalyWindow).
		Float64("ZThreshold", cfg.ZThreshold).
		Float64("PriceChangeThreshold", cfg.PriceChangeThreshold).
		Bool("APIKeySet", cfg.MessariAPIKey != "").
		Msg("Configuration loaded")
}

func printMarketSummary(report *models.FraudReport) {
	fmt.Printf("\n===== %s MARKET SUMMARY =====\n", report.Asset)
	fmt.Printf("Price: $%.4f | Market Cap: $%.0f\n", report.Metrics.TokenPrice, report.Metrics.MarketCap)
	fmt.Printf("24h Volume: $%.0f | Real 24h Volume: $%.0f\n", report.Metrics.Volume24h, report.Metrics.RealVolume24h)
	fmt.Printf("Observations analysed: %d\n", len(report.TimeSeriesData))
}

func printAnomalies(report *models.FraudReport) {
	fmt.Println("\n===== VOLUME ANOMALIES =====")
	if len(report.Anomalies) == 0 {
		fmt.Println("No volume spikes without matching price movement")
		return
	}

	for _, a := range report.Anomalies {
		fmt.Printf("%s [%s] volume: %.0f | z: %.2f | vs mean: %+.1f%% | price: %.4f (%+.2f%%)\n",
			a.Timestamp, a.Severity, a.Volume, a.VolumeZ, a.VolumeChangePct*100, a.Price, a.PriceChangePct*100)
	}
}

func printWashTrading(report *models.FraudReport) {
	current := report.WashTrading.Current

	fmt.Println("\n===== WASH TRADING =====")
	fmt.Printf("Reported: $%.0f | Real: $%.0f | Wash: $%.0f (%.1f%%)\n",
		current.ReportedVolume, current.RealVolume, current.WashVolume, current.WashPercentage)

	fmt.Println("\nHistory:")
	for _, p := range report.WashTrading.History {
		fmt.Printf("- %s: %.1f%% of $%.0f\n", p.Timestamp, p.WashPercentage, p.ReportedVolume)
	}
	fmt.Println()
}

func printSocial(social *models.SocialSentiment) {
	fmt.Println("===== SOCIAL SENTIMENT =====")
	fmt.Printf("Score: %.2f | 24h change: %+.4f | Followers: %.0f (%+.0f)\n\n",
		social.CurrentSentiment, social.SentimentChange24h,
		social.TwitterMetrics.Followers, social.TwitterMetrics.FollowersChange24h)
}
