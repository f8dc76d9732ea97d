package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/internal/config"
	"github.com/Alias1177/Sentinel/internal/notify"
	"github.com/Alias1177/Sentinel/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN not set in environment")
	}
	if len(cfg.TelegramChatIDs) == 0 {
		log.Fatal().Msg("TELEGRAM_CHAT_IDS not set in environment")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}

	fraud := service.NewFraudService(messari.NewClient(cfg.MessariOptions()), nil, service.FraudOptions{
		Interval:     cfg.Interval,
		LookbackDays: cfg.LookbackDays,
		Detection:    cfg.DetectionOptions(),
	})

	report, err := fraud.Analyze(ctx, cfg.Asset, cfg.LookbackDays)
	if err != nil {
		log.Fatal().Err(err).Str("asset", cfg.Asset).Msg("Fraud analysis failed")
	}

	flagged := notify.FilterBySeverity(report.Anomalies, cfg.MinAlertSeverity())
	if len(flagged) == 0 {
		log.Info().
			Str("asset", cfg.Asset).
			Str("min_severity", cfg.AlertMinSeverity).
			Int("anomalies", len(report.Anomalies)).
			Msg("Nothing to broadcast")
		return
	}

	result, err := notify.NewNotifier(bot).Broadcast(ctx, cfg.TelegramChatIDs, notify.FormatAlert(report, flagged))
	if err != nil {
		log.Warn().Err(err).Msg("Broadcast interrupted")
	}

	total := len(cfg.TelegramChatIDs)
	log.Info().
		Int("total", total).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("Broadcast completed")

	fmt.Printf("\n🎯 Broadcast completed!\n")
	fmt.Printf("📊 Stats: %d sent, %d failed out of %d chats (%.2f%% success)\n",
		result.Sent, result.Failed, total, float64(result.Sent)/float64(total)*100)
}

func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
