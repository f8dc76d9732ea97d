package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/metrics"
	"github.com/Alias1177/Sentinel/models"
)

// CacheStats tracks cache performance metrics
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// SeriesKey identifies one upstream time series request
type SeriesKey struct {
	Asset    string
	Metric   string
	Interval string
	Days     int
}

func (k SeriesKey) String() string {
	return fmt.Sprintf("series:%s:%s:%s:%d", strings.ToUpper(k.Asset), k.Metric, k.Interval, k.Days)
}

// ReportKey identifies one fraud analysis; all detection parameters are part of it
type ReportKey struct {
	Asset      string
	Interval   string
	Days       int
	Window     int
	ZThreshold float64
	PriceDelta float64
}

func (k ReportKey) String() string {
	return fmt.Sprintf("report:%s:%s:%d:%d:%g:%g",
		strings.ToUpper(k.Asset), k.Interval, k.Days, k.Window, k.ZThreshold, k.PriceDelta)
}

// SeriesCache stores upstream series, metrics and finished reports in Redis as JSON.
// Every read returns a freshly decoded copy.
type SeriesCache struct {
	redis  *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	stats  CacheStats
	prefix string
	logger zerolog.Logger
}

// NewSeriesCache creates a new Redis-based series cache
func NewSeriesCache(redisClient *redis.Client, ttl time.Duration) *SeriesCache {
	return &SeriesCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "sentinel:",
		logger: log.With().Str("component", "series_cache").Logger(),
	}
}

func (c *SeriesCache) GetSeries(ctx context.Context, key SeriesKey) ([]models.TimePoint, bool) {
	var points []models.TimePoint
	ok := c.get(ctx, "series", key.String(), &points)
	return points, ok
}

func (c *SeriesCache) SetSeries(ctx context.Context, key SeriesKey, points []models.TimePoint) error {
	return c.set(ctx, key.String(), points)
}

func (c *SeriesCache) GetMetrics(ctx context.Context, asset string) (*models.AssetMetrics, bool) {
	var m models.AssetMetrics
	if !c.get(ctx, "metrics", metricsKey(asset), &m) {
		return nil, false
	}
	return &m, true
}

func (c *SeriesCache) SetMetrics(ctx context.Context, asset string, m *models.AssetMetrics) error {
	return c.set(ctx, metricsKey(asset), m)
}

func (c *SeriesCache) GetReport(ctx context.Context, key ReportKey) (*models.FraudReport, bool) {
	var r models.FraudReport
	if !c.get(ctx, "report", key.String(), &r) {
		return nil, false
	}
	return &r, true
}

func (c *SeriesCache) SetReport(ctx context.Context, key ReportKey, r *models.FraudReport) error {
	return c.set(ctx, key.String(), r)
}

// Stats returns a snapshot of the hit/miss counters
func (c *SeriesCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

func (c *SeriesCache) get(ctx context.Context, kind, key string, out any) bool {
	data, err := c.redis.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Str("key", key).Msg("Redis error on get")
		}
		c.recordMiss(kind)
		return false
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Error deserializing cached entry")
		c.recordMiss(kind)
		return false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *SeriesCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing cache entry %s: %w", key, err)
	}

	if err := c.redis.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("storing cache entry %s: %w", key, err)
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
	return nil
}

func (c *SeriesCache) recordMiss(kind string) {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
}

func metricsKey(asset string) string {
	return "metrics:" + strings.ToUpper(asset)
}
