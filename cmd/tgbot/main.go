package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/internal/cache"
	"github.com/Alias1177/Sentinel/internal/config"
	"github.com/Alias1177/Sentinel/internal/notify"
	"github.com/Alias1177/Sentinel/internal/service"
	"github.com/Alias1177/Sentinel/models"
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

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
	}
	log.Info().Str("username", api.Self.UserName).Msg("Authorized on Telegram")

	client := messari.NewClient(cfg.MessariOptions())
	var (
		source  models.MarketDataSource = client
		reports *cache.SeriesCache
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis cache")
		}
		defer rdb.Close()

		reports = cache.NewSeriesCache(rdb, cfg.CacheTTLDuration())
		source = cache.NewCachedSource(client, reports)
	}

	fraud := service.NewFraudService(source, reports, service.FraudOptions{
		Interval:     cfg.Interval,
		LookbackDays: cfg.LookbackDays,
		Detection:    cfg.DetectionOptions(),
	})
	sentiments := service.NewSentimentService(source, client)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutdown signal received, stopping bot...")
		api.StopReceivingUpdates()
	}()

	notify.NewBot(api, fraud, sentiments, cfg.Asset, cfg.NewsTopic).Run(ctx, updates)
	log.Info().Msg("Bot stopped")
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
