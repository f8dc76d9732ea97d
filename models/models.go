package models

import (
	"time"
)

// TimePoint is a single sample of an upstream time series.
// Timestamp is unix seconds.
type TimePoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// AlignedPair joins a primary sample with the secondary sample at the same timestamp
type AlignedPair struct {
	Timestamp int64   `json:"timestamp"`
	Primary   float64 `json:"primary"`
	Secondary float64 `json:"secondary"`
}

// AlignedObservation is one volume sample with the price observed at the same timestamp
type AlignedObservation struct {
	Timestamp int64   `json:"timestamp"`
	Volume    float64 `json:"volume"`
	Price     float64 `json:"price"`
}

// WindowStats holds the trailing window statistics for one index
type WindowStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// Severity of a flagged volume anomaly
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rank orders severities; unknown values rank below low.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// ParseSeverity converts a config string into a Severity
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(s)
	return sev, sev.Rank() > 0
}

// AnomalyRecord describes a volume spike that was not backed by price movement
type AnomalyRecord struct {
	Timestamp       string   `json:"timestamp"` // full ISO-8601 instant
	Volume          float64  `json:"volume"`
	Price           float64  `json:"price"`
	VolumeZ         float64  `json:"volumeZ"`
	VolumeChangePct float64  `json:"volumeChangePct"` // volume / rolling mean - 1
	PriceChangePct  float64  `json:"priceChangePct"`
	Severity        Severity `json:"severity"`
}

// AnnotatedObservation is emitted for every input observation, flagged or not
type AnnotatedObservation struct {
	Timestamp      string  `json:"timestamp"` // date only, YYYY-MM-DD
	Volume         float64 `json:"volume"`
	Price          float64 `json:"price"`
	VolumeZ        float64 `json:"volumeZ"`
	PriceChangePct float64 `json:"priceChangePct"`
	IsAnomaly      bool    `json:"isAnomaly"`
}

// AnomalyReport is the result of one detection pass
type AnomalyReport struct {
	Anomalies      []AnomalyRecord        `json:"anomalies"`
	TimeSeriesData []AnnotatedObservation `json:"timeSeriesData"`
}

// WashTradingSnapshot compares reported and real volume
type WashTradingSnapshot struct {
	ReportedVolume float64 `json:"reportedVolume"`
	RealVolume     float64 `json:"realVolume"`
	WashVolume     float64 `json:"washVolume"`
	WashPercentage float64 `json:"washPercentage"`
}

// WashTradingPoint is a dated WashTradingSnapshot
type WashTradingPoint struct {
	Timestamp string `json:"timestamp"` // date only
	WashTradingSnapshot
}

// WashTradingReport holds the current snapshot and its daily history
type WashTradingReport struct {
	Current WashTradingSnapshot `json:"current"`
	History []WashTradingPoint  `json:"history"`
}

// AssetMetrics are the scalar market metrics of one asset
type AssetMetrics struct {
	Symbol                    string  `json:"symbol"`
	PriceUSD                  float64 `json:"price_usd"`
	Volume24h                 float64 `json:"volume_last_24_hours"`
	RealVolume24h             float64 `json:"real_volume_last_24_hours"`
	MarketCapUSD              float64 `json:"current_marketcap_usd"`
	TwitterFollowers          float64 `json:"twitter_followers"`
	TwitterFollowersChange24h float64 `json:"twitter_followers_change_24h"`
	TwitterStatusCount        float64 `json:"twitter_status_count"`
}

// MarketSummary is the metrics block of the fraud report
type MarketSummary struct {
	TokenPrice    float64 `json:"tokenPrice"`
	MarketCap     float64 `json:"marketCap"`
	Volume24h     float64 `json:"volume24h"`
	RealVolume24h float64 `json:"realVolume24h"`
}

// FraudReport is the full response of the fraud metrics endpoint
type FraudReport struct {
	Asset          string                 `json:"asset"`
	Metrics        MarketSummary          `json:"metrics"`
	Anomalies      []AnomalyRecord        `json:"anomalies"`
	TimeSeriesData []AnnotatedObservation `json:"timeSeriesData"`
	WashTrading    WashTradingReport      `json:"washTrading"`
	GeneratedAt    time.Time              `json:"generatedAt"`
}

// TwitterMetrics used as a proxy for social sentiment
type TwitterMetrics struct {
	Followers          float64 `json:"followers"`
	FollowersChange24h float64 `json:"followersChange24h"`
	StatusCount        float64 `json:"statusCount"`
	FollowerGrowthRate float64 `json:"followerGrowthRate"`
}

// SocialSentiment is the response of the social sentiment endpoint
type SocialSentiment struct {
	Asset              string         `json:"asset"`
	CurrentSentiment   float64        `json:"currentSentiment"` // 0..1, 0.5 is neutral
	SentimentChange24h float64        `json:"sentimentChange24h"`
	SocialVolume24h    float64        `json:"socialVolume24h"`
	TwitterMetrics     TwitterMetrics `json:"twitterMetrics"`
}

// NewsArticle as returned by the upstream news endpoint
type NewsArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
	Author      string `json:"author"`
}

// NewsSentiment label
type NewsSentiment string

const (
	NewsPositive NewsSentiment = "positive"
	NewsNegative NewsSentiment = "negative"
	NewsNeutral  NewsSentiment = "neutral"
)

// NewsItem is a tagged news article
type NewsItem struct {
	NewsArticle
	Source    string        `json:"source"`
	Tags      []string      `json:"tags"`
	Sentiment NewsSentiment `json:"sentiment"`
}

// NewsFeed is the response of the news feed endpoint
type NewsFeed struct {
	News        []NewsItem `json:"news"`
	Total       int        `json:"total"`
	LastUpdated string     `json:"lastUpdated"`
}
