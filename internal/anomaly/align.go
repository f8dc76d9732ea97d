package anomaly

import (
	"math"

	"github.com/Alias1177/Sentinel/models"
)

// AlignSeries joins secondary onto the timestamps of primary.
// Lookup is by exact timestamp; a missing secondary sample becomes 0.
func AlignSeries(primary, secondary []models.TimePoint) ([]models.AlignedPair, error) {
	return alignSeries(primary, secondary, func(float64) float64 { return 0 })
}

// AlignSeriesWithDefault is AlignSeries where a missing secondary sample
// takes the primary value instead of 0.
func AlignSeriesWithDefault(primary, secondary []models.TimePoint) ([]models.AlignedPair, error) {
	return alignSeries(primary, secondary, func(v float64) float64 { return v })
}

func alignSeries(primary, secondary []models.TimePoint, fallback func(float64) float64) ([]models.AlignedPair, error) {
	if err := validateSeries("primary", primary); err != nil {
		return nil, err
	}
	if err := validateSeries("secondary", secondary); err != nil {
		return nil, err
	}

	lookup := make(map[int64]float64, len(secondary))
	for _, p := range secondary {
		lookup[p.Timestamp] = p.Value
	}

	aligned := make([]models.AlignedPair, len(primary))
	for i, p := range primary {
		v, ok := lookup[p.Timestamp]
		if !ok {
			v = fallback(p.Value)
		}
		aligned[i] = models.AlignedPair{Timestamp: p.Timestamp, Primary: p.Value, Secondary: v}
	}

	return aligned, nil
}

// ToObservations maps volume/price pairs onto observations
func ToObservations(pairs []models.AlignedPair) []models.AlignedObservation {
	obs := make([]models.AlignedObservation, len(pairs))
	for i, p := range pairs {
		obs[i] = models.AlignedObservation{Timestamp: p.Timestamp, Volume: p.Primary, Price: p.Secondary}
	}
	return obs
}

func validateSeries(name string, series []models.TimePoint) error {
	for i, p := range series {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return &MalformedSeriesError{Series: name, Index: i, Reason: "value is not finite"}
		}
		if i > 0 && p.Timestamp <= series[i-1].Timestamp {
			return &MalformedSeriesError{Series: name, Index: i, Reason: "timestamps not strictly increasing"}
		}
	}
	return nil
}
