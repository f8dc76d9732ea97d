package anomaly

import (
	"fmt"
	"math"

	"github.com/Alias1177/Sentinel/models"
)

const (
	DefaultZThreshold           = 2.0
	DefaultPriceChangeThreshold = 0.03

	highSeverityZ   = 3.0
	mediumSeverityZ = 2.5
)

// Options tune the volume anomaly detector. Zero fields take the defaults.
type Options struct {
	Window               int
	ZThreshold           float64
	PriceChangeThreshold float64
}

func DefaultOptions() Options {
	return Options{
		Window:               DefaultWindow,
		ZThreshold:           DefaultZThreshold,
		PriceChangeThreshold: DefaultPriceChangeThreshold,
	}
}

func (o Options) normalize() (Options, error) {
	if o.Window == 0 {
		o.Window = DefaultWindow
	}
	if o.ZThreshold == 0 {
		o.ZThreshold = DefaultZThreshold
	}
	if o.PriceChangeThreshold == 0 {
		o.PriceChangeThreshold = DefaultPriceChangeThreshold
	}
	if o.Window < 0 || o.ZThreshold < 0 || o.PriceChangeThreshold < 0 {
		return o, fmt.Errorf("%w: window=%d z=%.2f price=%.4f",
			ErrInvalidOptions, o.Window, o.ZThreshold, o.PriceChangeThreshold)
	}
	return o, nil
}

// DetectAnomalies flags volume spikes that are not accompanied by a matching price move.
// Every observation is annotated; the first Window observations never score.
func DetectAnomalies(aligned []models.AlignedObservation, opts Options) (*models.AnomalyReport, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	if err := validateObservations(aligned); err != nil {
		return nil, err
	}

	volumes := make([]float64, len(aligned))
	for i, obs := range aligned {
		volumes[i] = obs.Volume
	}
	stats := RollingStats(volumes, opts.Window)

	report := &models.AnomalyReport{
		Anomalies:      []models.AnomalyRecord{},
		TimeSeriesData: make([]models.AnnotatedObservation, 0, len(aligned)),
	}

	for i, obs := range aligned {
		point := models.AnnotatedObservation{
			Timestamp: models.FormatDate(obs.Timestamp),
			Volume:    obs.Volume,
			Price:     obs.Price,
		}

		if i < opts.Window {
			report.TimeSeriesData = append(report.TimeSeriesData, point)
			continue
		}

		// huge but finite volumes can still overflow the window sums
		if !finite(stats[i].Mean) || !finite(stats[i].StdDev) {
			return nil, &MalformedSeriesError{Series: "volume", Index: i, Reason: "rolling statistics overflow"}
		}

		z := zScore(obs.Volume, stats[i])
		priceChange := relativeChange(aligned[i-1].Price, obs.Price)
		isAnomaly := z > opts.ZThreshold && math.Abs(priceChange) < opts.PriceChangeThreshold

		point.VolumeZ = z
		point.PriceChangePct = priceChange
		point.IsAnomaly = isAnomaly

		if isAnomaly {
			report.Anomalies = append(report.Anomalies, models.AnomalyRecord{
				Timestamp:       models.FormatInstant(obs.Timestamp),
				Volume:          obs.Volume,
				Price:           obs.Price,
				VolumeZ:         z,
				VolumeChangePct: volumeChange(obs.Volume, stats[i].Mean),
				PriceChangePct:  priceChange,
				Severity:        ClassifySeverity(z),
			})
		}

		report.TimeSeriesData = append(report.TimeSeriesData, point)
	}

	return report, nil
}

// ClassifySeverity tiers a z-score that already passed the anomaly predicate
func ClassifySeverity(z float64) models.Severity {
	switch {
	case z > highSeverityZ:
		return models.SeverityHigh
	case z > mediumSeverityZ:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// zero stddev (flat history) scores 0, never +Inf
func zScore(v float64, s models.WindowStats) float64 {
	if s.StdDev > 0 {
		return (v - s.Mean) / s.StdDev
	}
	return 0
}

func relativeChange(prev, cur float64) float64 {
	if prev > 0 {
		return (cur - prev) / prev
	}
	return 0
}

// A zero-mean history (every sample 0) has no meaningful ratio; report 0
// rather than +Inf so the value stays JSON encodable.
func volumeChange(v, mean float64) float64 {
	if mean > 0 {
		return v/mean - 1
	}
	return 0
}

func validateObservations(aligned []models.AlignedObservation) error {
	for i, obs := range aligned {
		if i > 0 && obs.Timestamp <= aligned[i-1].Timestamp {
			return &MalformedSeriesError{Series: "aligned", Index: i, Reason: "timestamps not strictly increasing"}
		}
		if !finite(obs.Volume) || !finite(obs.Price) {
			return &MalformedSeriesError{Series: "aligned", Index: i, Reason: "value is not finite"}
		}
		if obs.Volume < 0 || obs.Price < 0 {
			return &MalformedSeriesError{Series: "aligned", Index: i, Reason: "negative volume or price"}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// AnalyzeVolume aligns price onto volume and runs DetectAnomalies
func AnalyzeVolume(volume, price []models.TimePoint, opts Options) (*models.AnomalyReport, error) {
	pairs, err := AlignSeries(volume, price)
	if err != nil {
		return nil, err
	}
	return DetectAnomalies(ToObservations(pairs), opts)
}
