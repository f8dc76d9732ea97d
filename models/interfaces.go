package models

import "context"

type MarketDataSource interface {
	GetAssetMetrics(ctx context.Context, asset string) (*AssetMetrics, error)
	GetTimeSeries(ctx context.Context, asset, metric, interval string, days int) ([]TimePoint, error)
}

type NewsSource interface {
	GetNews(ctx context.Context, topic string, limit int) ([]NewsArticle, error)
}
