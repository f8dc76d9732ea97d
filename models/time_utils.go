package models

import "time"

const (
	instantLayout = "2006-01-02T15:04:05.000Z"
	dateLayout    = "2006-01-02"
)

// FormatInstant renders unix seconds as a full UTC ISO-8601 instant with milliseconds
func FormatInstant(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(instantLayout)
}

// FormatDate renders unix seconds as a UTC calendar date
func FormatDate(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(dateLayout)
}

// PointsForLookback estimates how many samples an interval yields over the given days
func PointsForLookback(interval string, days int) int {
	pointsPerDay := 0

	switch interval {
	case "1h":
		pointsPerDay = 24
	case "4h":
		pointsPerDay = 6
	case "1d":
		pointsPerDay = 1
	case "1w":
		// weekly samples: one point per 7 days, at least one
		pointsPerDay = 1
		days = days / 7
		if days < 1 {
			days = 1
		}
	}

	return pointsPerDay * days
}
