package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)
	UpstreamFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_upstream_fetch_duration_seconds",
			Help:    "Market data fetch duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"metric", "outcome"},
	)
	AnomaliesFlagged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_volume_anomalies_flagged_total",
			Help: "Volume anomalies flagged by severity",
		},
		[]string{"asset", "severity"},
	)
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_cache_lookups_total",
			Help: "Series cache lookups by result",
		},
		[]string{"kind", "result"},
	)
)

// Outcome labels a fetch result
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
