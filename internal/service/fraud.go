package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Alias1177/Sentinel/internal/anomaly"
	"github.com/Alias1177/Sentinel/internal/cache"
	"github.com/Alias1177/Sentinel/internal/metrics"
	"github.com/Alias1177/Sentinel/models"
)

const (
	MetricVolume     = "volume"
	MetricPrice      = "price"
	MetricRealVolume = "real_volume"
)

// FraudOptions configure the fraud analysis
type FraudOptions struct {
	Interval     string
	LookbackDays int
	Detection    anomaly.Options
}

// FraudService fetches market data and runs volume anomaly and wash trading analysis
type FraudService struct {
	source  models.MarketDataSource
	reports *cache.SeriesCache // optional
	opts    FraudOptions
	logger  zerolog.Logger
	now     func() time.Time
}

// NewFraudService creates a fraud service; reports may be nil to disable report caching
func NewFraudService(source models.MarketDataSource, reports *cache.SeriesCache, opts FraudOptions) *FraudService {
	if opts.Interval == "" {
		opts.Interval = "1d"
	}
	if opts.LookbackDays == 0 {
		opts.LookbackDays = 30
	}

	return &FraudService{
		source:  source,
		reports: reports,
		opts:    opts,
		logger:  log.With().Str("component", "fraud_service").Logger(),
		now:     time.Now,
	}
}

// Analyze builds the full fraud report for an asset.
// days <= 0 uses the configured lookback. Any fetch failure fails the whole analysis.
func (s *FraudService) Analyze(ctx context.Context, asset string, days int) (*models.FraudReport, error) {
	asset = strings.ToUpper(asset)
	if days <= 0 {
		days = s.opts.LookbackDays
	}

	key := cache.ReportKey{
		Asset:      asset,
		Interval:   s.opts.Interval,
		Days:       days,
		Window:     s.opts.Detection.Window,
		ZThreshold: s.opts.Detection.ZThreshold,
		PriceDelta: s.opts.Detection.PriceChangeThreshold,
	}
	if s.reports != nil {
		if report, ok := s.reports.GetReport(ctx, key); ok {
			s.logger.Debug().Str("asset", asset).Msg("Serving cached fraud report")
			return report, nil
		}
	}

	var (
		assetMetrics *models.AssetMetrics
		volume       []models.TimePoint
		price        []models.TimePoint
		realVolume   []models.TimePoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		m, err := s.source.GetAssetMetrics(gctx, asset)
		metrics.UpstreamFetchDuration.WithLabelValues("metrics", metrics.Outcome(err)).Observe(time.Since(start).Seconds())
		if err != nil {
			return fmt.Errorf("fetching %s metrics: %w", asset, err)
		}
		assetMetrics = m
		return nil
	})
	g.Go(s.fetchSeries(gctx, asset, MetricVolume, days, &volume))
	g.Go(s.fetchSeries(gctx, asset, MetricPrice, days, &price))
	g.Go(s.fetchSeries(gctx, asset, MetricRealVolume, days, &realVolume))

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("asset", asset).Msg("Fraud analysis fetch failed")
		return nil, err
	}

	volumeReport, err := anomaly.AnalyzeVolume(volume, price, s.opts.Detection)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s volume: %w", asset, err)
	}

	history, err := anomaly.WashTradingHistory(volume, realVolume)
	if err != nil {
		return nil, fmt.Errorf("building %s wash trading history: %w", asset, err)
	}

	report := &models.FraudReport{
		Asset: asset,
		Metrics: models.MarketSummary{
			TokenPrice:    assetMetrics.PriceUSD,
			MarketCap:     assetMetrics.MarketCapUSD,
			Volume24h:     assetMetrics.Volume24h,
			RealVolume24h: assetMetrics.RealVolume24h,
		},
		Anomalies:      volumeReport.Anomalies,
		TimeSeriesData: volumeReport.TimeSeriesData,
		WashTrading: models.WashTradingReport{
			Current: anomaly.EstimateWashTrading(assetMetrics.Volume24h, assetMetrics.RealVolume24h),
			History: history,
		},
		GeneratedAt: s.now().UTC(),
	}

	for _, a := range report.Anomalies {
		metrics.AnomaliesFlagged.WithLabelValues(asset, string(a.Severity)).Inc()
	}

	s.logger.Info().
		Str("asset", asset).
		Int("points", len(report.TimeSeriesData)).
		Int("anomalies", len(report.Anomalies)).
		Float64("wash_pct", report.WashTrading.Current.WashPercentage).
		Msg("Fraud analysis complete")

	if s.reports != nil {
		if err := s.reports.SetReport(ctx, key, report); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to cache fraud report")
		}
	}

	return report, nil
}

func (s *FraudService) fetchSeries(ctx context.Context, asset, metric string, days int, dst *[]models.TimePoint) func() error {
	return func() error {
		start := time.Now()
		points, err := s.source.GetTimeSeries(ctx, asset, metric, s.opts.Interval, days)
		metrics.UpstreamFetchDuration.WithLabelValues(metric, metrics.Outcome(err)).Observe(time.Since(start).Seconds())
		if err != nil {
			return fmt.Errorf("fetching %s %s series: %w", asset, metric, err)
		}
		*dst = points
		return nil
	}
}
