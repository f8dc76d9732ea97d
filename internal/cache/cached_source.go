package cache

import (
	"context"

	"github.com/Alias1177/Sentinel/models"
)

// CachedSource wraps a MarketDataSource with read-through caching.
// Upstream errors are never cached.
type CachedSource struct {
	source models.MarketDataSource
	cache  *SeriesCache
}

func NewCachedSource(source models.MarketDataSource, cache *SeriesCache) *CachedSource {
	return &CachedSource{source: source, cache: cache}
}

func (s *CachedSource) GetAssetMetrics(ctx context.Context, asset string) (*models.AssetMetrics, error) {
	if m, ok := s.cache.GetMetrics(ctx, asset); ok {
		return m, nil
	}

	m, err := s.source.GetAssetMetrics(ctx, asset)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetMetrics(ctx, asset, m); err != nil {
		s.cache.logger.Warn().Err(err).Str("asset", asset).Msg("Failed to cache metrics")
	}
	return m, nil
}

func (s *CachedSource) GetTimeSeries(ctx context.Context, asset, metric, interval string, days int) ([]models.TimePoint, error) {
	key := SeriesKey{Asset: asset, Metric: metric, Interval: interval, Days: days}
	if points, ok := s.cache.GetSeries(ctx, key); ok {
		return points, nil
	}

	points, err := s.source.GetTimeSeries(ctx, asset, metric, interval, days)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSeries(ctx, key, points); err != nil {
		s.cache.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache series")
	}
	return points, nil
}
