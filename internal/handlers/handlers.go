package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sentinel/internal/anomaly"
	"github.com/Alias1177/Sentinel/internal/api/messari"
	"github.com/Alias1177/Sentinel/internal/cache"
	"github.com/Alias1177/Sentinel/models"
)

const (
	maxLookbackDays = 365
	maxNewsLimit    = 100
	maxAssetLength  = 16

	// nginx convention for a client that went away before the response
	statusClientClosedRequest = 499
)

var startTime = time.Now()

// FraudAnalyzer produces fraud reports
type FraudAnalyzer interface {
	Analyze(ctx context.Context, asset string, days int) (*models.FraudReport, error)
}

// SentimentProvider produces social sentiment and the tagged news feed
type SentimentProvider interface {
	Social(ctx context.Context, asset string) (*models.SocialSentiment, error)
	News(ctx context.Context, topic string, limit int) (*models.NewsFeed, error)
}

// CacheStatsProvider reports series cache counters
type CacheStatsProvider interface {
	Stats() cache.CacheStats
}

// Defaults applied when a query parameter is absent
type Defaults struct {
	Asset        string
	LookbackDays int
	NewsTopic    string
	NewsLimit    int
}

type Handler struct {
	fraud     FraudAnalyzer
	sentiment SentimentProvider
	defaults  Defaults
	cache     CacheStatsProvider // optional
	logger    zerolog.Logger
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`

	Cache *cache.CacheStats `json:"cache,omitempty"`
}

func NewHandler(fraud FraudAnalyzer, sentiment SentimentProvider, defaults Defaults) *Handler {
	return &Handler{
		fraud:     fraud,
		sentiment: sentiment,
		defaults:  defaults,
		logger:    log.With().Str("component", "handlers").Logger(),
	}
}

// WithCacheStats exposes cache counters on the health endpoint
func (h *Handler) WithCacheStats(p CacheStatsProvider) *Handler {
	h.cache = p
	return h
}

func (h *Handler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}
	if h.cache != nil {
		stats := h.cache.Stats()
		resp.Cache = &stats
	}

	c.JSON(http.StatusOK, resp)
}

// FraudMetrics handles GET /api/fraud-metrics?asset=SOL&days=30
func (h *Handler) FraudMetrics(c *gin.Context) {
	asset, ok := h.assetParam(c)
	if !ok {
		return
	}
	days, ok := intParam(c, "days", h.defaults.LookbackDays, maxLookbackDays)
	if !ok {
		return
	}

	report, err := h.fraud.Analyze(c.Request.Context(), asset, days)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// SocialSentiment handles GET /api/social-sentiment?asset=SOL
func (h *Handler) SocialSentiment(c *gin.Context) {
	asset, ok := h.assetParam(c)
	if !ok {
		return
	}

	result, err := h.sentiment.Social(c.Request.Context(), asset)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// NewsFeed handles GET /api/news-feed?topic=solana&limit=30
func (h *Handler) NewsFeed(c *gin.Context) {
	topic := strings.TrimSpace(c.DefaultQuery("topic", h.defaults.NewsTopic))
	if topic == "" {
		badRequest(c, "topic must not be empty")
		return
	}
	limit, ok := intParam(c, "limit", h.defaults.NewsLimit, maxNewsLimit)
	if !ok {
		return
	}

	feed, err := h.sentiment.News(c.Request.Context(), topic, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (h *Handler) assetParam(c *gin.Context) (string, bool) {
	asset := strings.ToUpper(strings.TrimSpace(c.DefaultQuery("asset", h.defaults.Asset)))
	if !validAsset(asset) {
		badRequest(c, "asset must be 1-16 letters, digits or dashes")
		return "", false
	}
	return asset, true
}

func validAsset(asset string) bool {
	if asset == "" || len(asset) > maxAssetLength {
		return false
	}
	for _, r := range asset {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

// intParam reads a positive integer query parameter bounded by upper
func intParam(c *gin.Context, name string, def, upper int) (int, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return def, true
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > upper {
		badRequest(c, name+" must be an integer between 1 and "+strconv.Itoa(upper))
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// writeError maps service errors to HTTP statuses
func (h *Handler) writeError(c *gin.Context, err error) {
	var upstream *messari.UpstreamFetchError

	switch {
	// upstream errors wrap the request context error, so cancellation goes first
	case errors.Is(err, context.Canceled):
		h.logger.Debug().Err(err).Str("path", c.FullPath()).Msg("Client canceled request")
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.As(err, &upstream):
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Upstream fetch failed")
		c.AbortWithStatusJSON(http.StatusBadGateway, ErrorResponse{Error: "failed to fetch market data"})
	case errors.Is(err, anomaly.ErrMalformedSeries):
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Malformed upstream series")
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "market data series is malformed"})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
