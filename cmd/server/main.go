package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/internal/cache"
	"github.com/Alias1177/Sentinel/internal/config"
	"github.com/Alias1177/Sentinel/internal/handlers"
	"github.com/Alias1177/Sentinel/internal/service"
	"github.com/Alias1177/Sentinel/models"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogging(cfg.LogLevel)

	client := messari.NewClient(cfg.MessariOptions())

	// Redis is optional; without it every request goes upstream
	var (
		source  models.MarketDataSource = client
		reports *cache.SeriesCache
	)
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis cache")
		}
		defer rdb.Close()

		reports = cache.NewSeriesCache(rdb, cfg.CacheTTLDuration())
		source = cache.NewCachedSource(client, reports)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, caching disabled")
	}

	fraud := service.NewFraudService(source, reports, service.FraudOptions{
		Interval:     cfg.Interval,
		LookbackDays: cfg.LookbackDays,
		Detection:    cfg.DetectionOptions(),
	})
	sentiments := service.NewSentimentService(source, client)

	gin.SetMode(gin.ReleaseMode)
	handler := handlers.NewHandler(fraud, sentiments, handlers.Defaults{
		Asset:        cfg.Asset,
		LookbackDays: cfg.LookbackDays,
		NewsTopic:    cfg.NewsTopic,
		NewsLimit:    cfg.NewsLimit,
	})
	if reports != nil {
		handler.WithCacheStats(reports)
	}
	router := handlers.NewRouter(handler)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
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
