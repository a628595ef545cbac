package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	LeaderboardRequests prometheus.Counter
	ProfileRequests     prometheus.Counter
	WinRateRequests     prometheus.Counter
	IngestJobsCompleted prometheus.Counter
	IngestJobsFailed    prometheus.Counter
	QueryDuration       prometheus.Histogram
	StartupTimeSeconds  prometheus.Gauge
}
