package sentiment

import (
	"math"

	"github.com/Alias1177/Sentinel/models"
)

const (
	neutralScore     = 0.5
	growthScoreScale = 10.0
	changeScale      = 0.5
)

// AnalyzeSocial derives a 0..1 sentiment score from twitter follower growth.
// It is a proxy: 0.5 is neutral and each 1% of daily growth adds 0.1.
func AnalyzeSocial(m *models.AssetMetrics) models.SocialSentiment {
	growth := 0.0
	if m.TwitterFollowers > 0 {
		growth = m.TwitterFollowersChange24h / m.TwitterFollowers
	}

	score := math.Max(0, math.Min(1, neutralScore+growth*growthScoreScale))

	return models.SocialSentiment{
		Asset:              m.Symbol,
		CurrentSentiment:   score,
		SentimentChange24h: growth * changeScale,
		SocialVolume24h:    m.TwitterFollowers,
		TwitterMetrics: models.TwitterMetrics{
			Followers:          m.TwitterFollowers,
			FollowersChange24h: m.TwitterFollowersChange24h,
			StatusCount:        m.TwitterStatusCount,
			FollowerGrowthRate: growth,
		},
	}
}
