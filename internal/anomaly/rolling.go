package anomaly

import (
	"fmt"
	"math"

	"github.com/Alias1177/Sentinel/models"
)

// DefaultWindow is the trailing window length in samples (7 daily points)
const DefaultWindow = 7

// RollingStats returns one WindowStats per index. Indices below window get
// the zero sentinel; the rest get the population mean and stddev of the
// window values strictly preceding the index.
func RollingStats(values []float64, window int) []models.WindowStats {
	stats := make([]models.WindowStats, len(values))
	if window <= 0 {
		return stats
	}

	for i := window; i < len(values); i++ {
		stats[i] = windowStats(values[i-window : i])
	}

	return stats
}

// RollingStatsChecked is RollingStats with window validation
func RollingStatsChecked(values []float64, window int) ([]models.WindowStats, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: window %d", ErrInvalidOptions, window)
	}
	return RollingStats(values, window), nil
}

func windowStats(window []float64) models.WindowStats {
	n := float64(len(window))

	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / n

	var sq float64
	for _, v := range window {
		sq += math.Pow(v-mean, 2)
	}

	return models.WindowStats{Mean: mean, StdDev: math.Sqrt(sq / n)}
}
