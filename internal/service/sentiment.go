package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Alias1177/Sentinel/internal/sentiment"
	"github.com/Alias1177/Sentinel/models"
)

// SentimentService serves the social sentiment proxy and the tagged news feed
type SentimentService struct {
	source models.MarketDataSource
	news   models.NewsSource
	now    func() time.Time
}

func NewSentimentService(source models.MarketDataSource, news models.NewsSource) *SentimentService {
	return &SentimentService{source: source, news: news, now: time.Now}
}

func (s *SentimentService) Social(ctx context.Context, asset string) (*models.SocialSentiment, error) {
	asset = strings.ToUpper(asset)

	m, err := s.source.GetAssetMetrics(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("fetching %s metrics: %w", asset, err)
	}

	result := sentiment.AnalyzeSocial(m)
	result.Asset = asset
	return &result, nil
}

func (s *SentimentService) News(ctx context.Context, topic string, limit int) (*models.NewsFeed, error) {
	articles, err := s.news.GetNews(ctx, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching %s news: %w", topic, err)
	}

	feed := sentiment.TagNews(articles, s.now())
	return &feed, nil
}
