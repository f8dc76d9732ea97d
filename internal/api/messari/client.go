package messari

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/Sentinel/internal/platform/http"
	"github.com/Alias1177/Sentinel/models"
)

const (
	DefaultBaseURL = "https://data.messari.io/api/v1"
	apiKeyHeader   = "x-messari-api-key"

	// timestamps above this are milliseconds
	millisecondThreshold = 1e12
)

// UpstreamFetchError wraps any failure talking to the market-data provider
type UpstreamFetchError struct {
	Endpoint string
	Err      error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("upstream fetch %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// Client is the Messari API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// ClientOptions holds options for creating a new Messari client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
}

// NewClient creates a new Messari API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetryTimeout: options.MaxRetryTimeout,
		InitialInterval: options.RetryInterval,
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := log.With().Str("component", "messari_client").Logger()
	if options.APIKey == "" {
		logger.Warn().Msg("MESSARI_API_KEY is not set, requests may be rate limited")
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     logger,
		now:        time.Now,
	}
}

// GetAssetMetrics fetches the scalar market metrics of an asset
func (c *Client) GetAssetMetrics(ctx context.Context, asset string) (*models.AssetMetrics, error) {
	endpoint := fmt.Sprintf("/assets/%s/metrics", url.PathEscape(asset))

	var data metricsResponse
	if err := c.get(ctx, endpoint, nil, &data); err != nil {
		return nil, err
	}

	metrics := &models.AssetMetrics{
		Symbol:        data.Data.Symbol,
		PriceUSD:      valueOrZero(data.Data.MarketData.PriceUSD),
		Volume24h:     valueOrZero(data.Data.MarketData.VolumeLast24Hours),
		RealVolume24h: valueOrZero(data.Data.MarketData.RealVolumeLast24Hours),
		MarketCapUSD:  valueOrZero(data.Data.Marketcap.CurrentMarketcapUSD),
	}
	if metrics.Symbol == "" {
		metrics.Symbol = asset
	}
	if tw := data.Data.Twitter; tw != nil {
		metrics.TwitterFollowers = valueOrZero(tw.Followers)
		metrics.TwitterFollowersChange24h = valueOrZero(tw.FollowersChange24h)
		metrics.TwitterStatusCount = valueOrZero(tw.StatusCount)
	}

	c.logger.Debug().Str("asset", asset).Float64("volume24h", metrics.Volume24h).Msg("Fetched asset metrics")
	return metrics, nil
}

// GetTimeSeries fetches a metric series for the last `days` days, oldest first.
// Rows with a null value are skipped.
func (c *Client) GetTimeSeries(ctx context.Context, asset, metric, interval string, days int) ([]models.TimePoint, error) {
	endpoint := fmt.Sprintf("/assets/%s/metrics/%s/time-series", url.PathEscape(asset), url.PathEscape(metric))

	end := c.now()
	start := end.AddDate(0, 0, -days)
	params := url.Values{}
	params.Set("interval", interval)
	params.Set("start", strconv.FormatInt(start.Unix(), 10))
	params.Set("end", strconv.FormatInt(end.Unix(), 10))

	var data timeSeriesResponse
	if err := c.get(ctx, endpoint, params, &data); err != nil {
		return nil, err
	}

	points := make([]models.TimePoint, 0, len(data.Data.Values))
	skipped := 0
	for _, row := range data.Data.Values {
		if len(row) < 2 || row[0] == nil || row[1] == nil {
			skipped++
			continue
		}
		ts := int64(*row[0])
		if ts > millisecondThreshold {
			ts /= 1000
		}
		points = append(points, models.TimePoint{Timestamp: ts, Value: *row[1]})
	}

	// Sort oldest first for rolling calculations
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})

	c.logger.Debug().
		Str("asset", asset).
		Str("metric", metric).
		Int("count", len(points)).
		Int("skipped", skipped).
		Msg("Fetched time series")
	return points, nil
}

// GetNews fetches the latest news for a topic
func (c *Client) GetNews(ctx context.Context, topic string, limit int) ([]models.NewsArticle, error) {
	params := url.Values{}
	params.Set("topics", topic)
	params.Set("limit", strconv.Itoa(limit))

	var data newsResponse
	if err := c.get(ctx, "/news", params, &data); err != nil {
		return nil, err
	}

	articles := make([]models.NewsArticle, 0, len(data.Data))
	for _, item := range data.Data {
		author := "Unknown"
		if item.Author != nil && item.Author.Name != "" {
			author = item.Author.Name
		}
		articles = append(articles, models.NewsArticle{
			ID:          item.ID,
			Title:       item.Title,
			Content:     item.Content,
			URL:         item.URL,
			PublishedAt: item.PublishedAt,
			Author:      author,
		})
	}

	c.logger.Debug().Str("topic", topic).Int("count", len(articles)).Msg("Fetched news")
	return articles, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	c.logger.Debug().Str("url", u).Msg("Requesting Messari")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &UpstreamFetchError{Endpoint: endpoint, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Messari request failed")
		return &UpstreamFetchError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamFetchError{Endpoint: endpoint, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return &UpstreamFetchError{Endpoint: endpoint, Err: fmt.Errorf("parsing JSON: %w", err)}
	}

	return nil
}
