package anomaly

import (
	"math"

	"github.com/Alias1177/Sentinel/models"
)

// EstimateWashTrading treats reported volume above real volume as wash volume.
// Real volume exceeding reported is clamped to zero wash, not negative.
func EstimateWashTrading(reported, realVolume float64) models.WashTradingSnapshot {
	wash := math.Max(0, reported-realVolume)

	pct := 0.0
	if reported > 0 {
		pct = math.Min(100, wash/reported*100)
	}

	return models.WashTradingSnapshot{
		ReportedVolume: reported,
		RealVolume:     realVolume,
		WashVolume:     wash,
		WashPercentage: pct,
	}
}

// WashTradingHistory produces one dated snapshot per reported sample.
// A day without a real-volume sample is assumed fully real (0% wash),
// which understates wash trading when the real series is sparse.
func WashTradingHistory(reported, realVolume []models.TimePoint) ([]models.WashTradingPoint, error) {
	pairs, err := AlignSeriesWithDefault(reported, realVolume)
	if err != nil {
		return nil, err
	}

	history := make([]models.WashTradingPoint, len(pairs))
	for i, p := range pairs {
		history[i] = models.WashTradingPoint{
			Timestamp:           models.FormatDate(p.Timestamp),
			WashTradingSnapshot: EstimateWashTrading(p.Primary, p.Secondary),
		}
	}

	return history, nil
}
