package anomaly

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/Sentinel/models"
)

const day = int64(24 * 60 * 60)

// observations builds daily observations starting 2024-01-01
func observations(volumes, prices []float64) []models.AlignedObservation {
	obs := make([]models.AlignedObservation, len(volumes))
	for i := range volumes {
		obs[i] = models.AlignedObservation{
			Timestamp: 1704067200 + int64(i)*day,
			Volume:    volumes[i],
			Price:     prices[i],
		}
	}
	return obs
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDetectAnomalies_FlatHistoryNeverScores(t *testing.T) {
	obs := observations(
		[]float64{100, 100, 100, 100, 100, 100, 100, 1000},
		constant(8, 1),
	)

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, report.TimeSeriesData, 8)
	last := report.TimeSeriesData[7]
	assert.Equal(t, 0.0, last.VolumeZ)
	assert.False(t, math.IsInf(last.VolumeZ, 0))
	assert.False(t, last.IsAnomaly)
	assert.Empty(t, report.Anomalies)
}

func TestDetectAnomalies_SpikeWithoutPriceMove(t *testing.T) {
	obs := observations(
		[]float64{10, 12, 9, 11, 10, 13, 10, 50},
		[]float64{1.0, 1.01, 0.99, 1.0, 1.0, 1.0, 1.0, 1.005},
	)

	stats := RollingStats([]float64{10, 12, 9, 11, 10, 13, 10, 50}, DefaultWindow)
	assert.InDelta(t, 10.714, stats[7].Mean, 0.001)
	assert.InDelta(t, 1.2778, stats[7].StdDev, 0.001)

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, report.Anomalies, 1)
	a := report.Anomalies[0]
	assert.Equal(t, models.SeverityHigh, a.Severity)
	assert.InDelta(t, 30.746, a.VolumeZ, 0.01)
	assert.InDelta(t, 0.005, a.PriceChangePct, 1e-9)
	assert.InDelta(t, 50/(75.0/7)-1, a.VolumeChangePct, 1e-9)
	assert.Equal(t, "2024-01-08T00:00:00.000Z", a.Timestamp)

	last := report.TimeSeriesData[7]
	assert.True(t, last.IsAnomaly)
	assert.Equal(t, "2024-01-08", last.Timestamp)
	assert.Equal(t, a.VolumeZ, last.VolumeZ)
}

func TestDetectAnomalies_SpikeWithPriceMoveIsGenuine(t *testing.T) {
	obs := observations(
		[]float64{10, 12, 9, 11, 10, 13, 10, 50},
		[]float64{1, 1, 1, 1, 1, 1, 1, 1.10},
	)

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)

	assert.Empty(t, report.Anomalies)
	assert.Greater(t, report.TimeSeriesData[7].VolumeZ, 2.0)
	assert.InDelta(t, 0.10, report.TimeSeriesData[7].PriceChangePct, 1e-9)
	assert.False(t, report.TimeSeriesData[7].IsAnomaly)
}

func TestDetectAnomalies_ZeroPreviousPrice(t *testing.T) {
	prices := constant(8, 1)
	prices[6] = 0
	obs := observations([]float64{10, 12, 9, 11, 10, 13, 10, 50}, prices)

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.TimeSeriesData[7].PriceChangePct)
	assert.Len(t, report.Anomalies, 1)
}

func TestDetectAnomalies_ZeroMeanHistory(t *testing.T) {
	// all-zero window: mean and stddev are both 0
	obs := observations(append(constant(7, 0), 500), constant(8, 1))

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.TimeSeriesData[7].VolumeZ)
	assert.Empty(t, report.Anomalies)

	assert.Equal(t, 0.0, volumeChange(500, 0))
	assert.InDelta(t, 1.0, volumeChange(200, 100), 1e-12)
}

func TestDetectAnomalies_PreservesLengthAndOrder(t *testing.T) {
	volumes := []float64{5, 7, 6, 8, 5, 9, 6, 40, 6, 7, 5, 60, 8, 7}
	prices := []float64{2, 2.01, 2.02, 2, 1.99, 2, 2.01, 2.01, 2.02, 2, 2, 2.03, 2.5, 2.4}
	obs := observations(volumes, prices)

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, report.TimeSeriesData, len(obs))

	for i, point := range report.TimeSeriesData {
		assert.Equal(t, models.FormatDate(obs[i].Timestamp), point.Timestamp)
		assert.Equal(t, obs[i].Volume, point.Volume)
		if i < DefaultWindow {
			assert.Equal(t, 0.0, point.VolumeZ)
			assert.False(t, point.IsAnomaly)
		}
	}

	for _, a := range report.Anomalies {
		assert.Greater(t, a.VolumeZ, 2.0)
		assert.Less(t, math.Abs(a.PriceChangePct), 0.03)
	}
}

func TestDetectAnomalies_ShortSeries(t *testing.T) {
	obs := observations([]float64{1, 2, 3}, []float64{1, 1, 1})

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, report.TimeSeriesData, 3)
	assert.Empty(t, report.Anomalies)

	report, err = DetectAnomalies(nil, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, report.TimeSeriesData)
}

func TestDetectAnomalies_DoesNotMutateInput(t *testing.T) {
	obs := observations([]float64{10, 12, 9, 11, 10, 13, 10, 50}, constant(8, 1))
	before := append([]models.AlignedObservation(nil), obs...)

	_, err := DetectAnomalies(obs, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, before, obs)
}

func TestDetectAnomalies_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		obs  []models.AlignedObservation
	}{
		{
			name: "duplicate timestamp",
			obs:  []models.AlignedObservation{{Timestamp: 10, Volume: 1}, {Timestamp: 10, Volume: 1}},
		},
		{
			name: "decreasing timestamp",
			obs:  []models.AlignedObservation{{Timestamp: 10, Volume: 1}, {Timestamp: 5, Volume: 1}},
		},
		{
			name: "negative volume",
			obs:  []models.AlignedObservation{{Timestamp: 10, Volume: -1}},
		},
		{
			name: "NaN price",
			obs:  []models.AlignedObservation{{Timestamp: 10, Volume: 1, Price: math.NaN()}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DetectAnomalies(tt.obs, DefaultOptions())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSeries))

			var malformed *MalformedSeriesError
			assert.True(t, errors.As(err, &malformed))
		})
	}
}

func TestDetectAnomalies_StatsOverflow(t *testing.T) {
	obs := observations(constant(8, 1e308), constant(8, 1))

	report, err := DetectAnomalies(obs, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.Is(err, ErrMalformedSeries))

	var malformed *MalformedSeriesError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 7, malformed.Index)
	assert.Equal(t, "volume", malformed.Series)
}

func TestDetectAnomalies_Options(t *testing.T) {
	_, err := DetectAnomalies(nil, Options{Window: -1})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	// zero options fall back to defaults
	obs := observations([]float64{10, 12, 9, 11, 10, 13, 10, 50}, constant(8, 1))
	report, err := DetectAnomalies(obs, Options{})
	require.NoError(t, err)
	assert.Len(t, report.Anomalies, 1)

	// a shorter window starts scoring earlier
	report, err = DetectAnomalies(obs, Options{Window: 3})
	require.NoError(t, err)
	assert.NotEqual(t, 0.0, report.TimeSeriesData[3].VolumeZ)
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		z    float64
		want models.Severity
	}{
		{2.01, models.SeverityLow},
		{2.5, models.SeverityLow},
		{2.51, models.SeverityMedium},
		{3.0, models.SeverityMedium},
		{3.01, models.SeverityHigh},
		{30, models.SeverityHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifySeverity(tt.z), "z=%v", tt.z)
	}

	// monotonic: a higher z never yields a lower tier
	prev := ClassifySeverity(2.0)
	for z := 2.0; z < 5; z += 0.01 {
		cur := ClassifySeverity(z)
		assert.GreaterOrEqual(t, cur.Rank(), prev.Rank())
		prev = cur
	}
}

func TestAnalyzeVolume(t *testing.T) {
	volumes := []float64{10, 12, 9, 11, 10, 13, 10, 50}
	vol := make([]models.TimePoint, len(volumes))
	price := make([]models.TimePoint, 0, len(volumes))
	for i, v := range volumes {
		ts := 1704067200 + int64(i)*day
		vol[i] = models.TimePoint{Timestamp: ts, Value: v}
		if i != 3 {
			price = append(price, models.TimePoint{Timestamp: ts, Value: 1})
		}
	}

	report, err := AnalyzeVolume(vol, price, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.TimeSeriesData[3].Price)
	assert.Len(t, report.Anomalies, 1)
}
