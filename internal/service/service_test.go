package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Sentinel/internal/anomaly"
	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/internal/cache"
	"github.com/Alias1177/Sentinel/models"
)

const day = int64(24 * 60 * 60)

type fakeSource struct {
	mu      sync.Mutex
	metrics *models.AssetMetrics
	series  map[string][]models.TimePoint
	failOn  string
	calls   map[string]int
	news    []models.NewsArticle
}

func (f *fakeSource) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeSource) GetAssetMetrics(ctx context.Context, asset string) (*models.AssetMetrics, error) {
	f.record("metrics")
	if f.failOn == "metrics" {
		return nil, &messari.UpstreamFetchError{Endpoint: "/assets/" + asset + "/metrics", Err: errors.New("boom")}
	}
	m := *f.metrics
	return &m, nil
}

func (f *fakeSource) GetTimeSeries(ctx context.Context, asset, metric, interval string, days int) ([]models.TimePoint, error) {
	f.record(metric)
	if f.failOn == metric {
		return nil, &messari.UpstreamFetchError{Endpoint: metric, Err: errors.New("boom")}
	}
	return append([]models.TimePoint(nil), f.series[metric]...), nil
}

func (f *fakeSource) GetNews(ctx context.Context, topic string, limit int) ([]models.NewsArticle, error) {
	if f.failOn == "news" {
		return nil, &messari.UpstreamFetchError{Endpoint: "/news", Err: errors.New("boom")}
	}
	return f.news, nil
}

func (f *fakeSource) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func points(values ...float64) []models.TimePoint {
	out := make([]models.TimePoint, len(values))
	for i, v := range values {
		out[i] = models.TimePoint{Timestamp: 1704067200 + int64(i)*day, Value: v}
	}
	return out
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		metrics: &models.AssetMetrics{
			Symbol:        "SOL",
			PriceUSD:      101.5,
			Volume24h:     100,
			RealVolume24h: 40,
			MarketCapUSD:  45e9,
		},
		series: map[string][]models.TimePoint{
			MetricVolume:     points(10, 12, 9, 11, 10, 13, 10, 50),
			MetricPrice:      points(1.0, 1.01, 0.99, 1.0, 1.0, 1.0, 1.0, 1.005),
			MetricRealVolume: points(10, 12, 9, 11, 10, 13, 10, 5),
		},
	}
}

func TestFraudService_Analyze(t *testing.T) {
	src := newFakeSource()
	svc := NewFraudService(src, nil, FraudOptions{Detection: anomaly.DefaultOptions()})
	svc.now = func() time.Time { return time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC) }

	report, err := svc.Analyze(context.Background(), "sol", 0)
	require.NoError(t, err)

	assert.Equal(t, "SOL", report.Asset)
	assert.Equal(t, 101.5, report.Metrics.TokenPrice)
	assert.Equal(t, 45e9, report.Metrics.MarketCap)

	require.Len(t, report.TimeSeriesData, 8)
	require.Len(t, report.Anomalies, 1)
	assert.Equal(t, models.SeverityHigh, report.Anomalies[0].Severity)
	assert.Equal(t, 50.0, report.Anomalies[0].Volume)

	assert.Equal(t, 60.0, report.WashTrading.Current.WashVolume)
	assert.InDelta(t, 60.0, report.WashTrading.Current.WashPercentage, 1e-9)
	require.Len(t, report.WashTrading.History, 8)
	assert.Equal(t, 45.0, report.WashTrading.History[7].WashVolume)
	assert.Equal(t, 0.0, report.WashTrading.History[0].WashVolume)

	for _, name := range []string{"metrics", MetricVolume, MetricPrice, MetricRealVolume} {
		assert.Equal(t, 1, src.callCount(name), name)
	}
}

func TestFraudService_AnalyzeFetchFailure(t *testing.T) {
	for _, failing := range []string{"metrics", MetricVolume, MetricPrice, MetricRealVolume} {
		t.Run(failing, func(t *testing.T) {
			src := newFakeSource()
			src.failOn = failing
			svc := NewFraudService(src, nil, FraudOptions{Detection: anomaly.DefaultOptions()})

			report, err := svc.Analyze(context.Background(), "SOL", 30)
			require.Error(t, err)
			assert.Nil(t, report)

			var upstream *messari.UpstreamFetchError
			assert.True(t, errors.As(err, &upstream))
		})
	}
}

func TestFraudService_AnalyzeMalformedSeries(t *testing.T) {
	src := newFakeSource()
	src.series[MetricVolume] = []models.TimePoint{
		{Timestamp: 1704153600, Value: 10},
		{Timestamp: 1704067200, Value: 12},
	}
	svc := NewFraudService(src, nil, FraudOptions{Detection: anomaly.DefaultOptions()})

	_, err := svc.Analyze(context.Background(), "SOL", 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, anomaly.ErrMalformedSeries))
}

func TestFraudService_AnalyzeUsesReportCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	src := newFakeSource()
	svc := NewFraudService(src, cache.NewSeriesCache(rdb, time.Minute), FraudOptions{Detection: anomaly.DefaultOptions()})

	first, err := svc.Analyze(context.Background(), "SOL", 30)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), "SOL", 30)
	require.NoError(t, err)

	assert.Equal(t, 1, src.callCount(MetricVolume))
	assert.Equal(t, len(first.Anomalies), len(second.Anomalies))
	assert.Equal(t, first.WashTrading.Current, second.WashTrading.Current)

	// a different lookback is a different report
	_, err = svc.Analyze(context.Background(), "SOL", 14)
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount(MetricVolume))
}

func TestSentimentService_Social(t *testing.T) {
	src := newFakeSource()
	src.metrics.TwitterFollowers = 1000
	src.metrics.TwitterFollowersChange24h = 10
	svc := NewSentimentService(src, src)

	result, err := svc.Social(context.Background(), "sol")
	require.NoError(t, err)
	assert.Equal(t, "SOL", result.Asset)
	assert.InDelta(t, 0.6, result.CurrentSentiment, 1e-9)
}

func TestSentimentService_News(t *testing.T) {
	src := newFakeSource()
	src.news = []models.NewsArticle{
		{ID: "1", Title: "Bullish rally as SOL prices surge", URL: "https://www.example.com/a"},
	}
	svc := NewSentimentService(src, src)
	svc.now = func() time.Time { return time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC) }

	feed, err := svc.News(context.Background(), "solana", 10)
	require.NoError(t, err)
	require.Len(t, feed.News, 1)
	assert.Equal(t, 1, feed.Total)
	assert.Equal(t, models.NewsPositive, feed.News[0].Sentiment)

	src.failOn = "news"
	_, err = svc.News(context.Background(), "solana", 10)
	var upstream *messari.UpstreamFetchError
	assert.True(t, errors.As(err, &upstream))
}
