package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		LeaderboardRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pug_leaderboard_requests_total",
			Help: "The total number of leaderboard requests served.",
		}),
		ProfileRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pug_profile_requests_total",
			Help: "The total number of combined player profile requests served.",
		}),
		WinRateRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pug_winrate_requests_total",
			Help: "The total number of same-team win rate requests served.",
		}),
		IngestJobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pug_ingest_jobs_completed_total",
			Help: "The total number of ingest jobs completed.",
		}),
		IngestJobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pug_ingest_jobs_failed_total",
			Help: "The total number of ingest jobs that failed.",
		}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pug_store_query_duration_seconds",
			Help:    "The duration of aggregate store queries.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pug_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.LeaderboardRequests,
		s.ProfileRequests,
		s.WinRateRequests,
		s.IngestJobsCompleted,
		s.IngestJobsFailed,
		s.QueryDuration,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncLeaderboardRequests() {
	s.LeaderboardRequests.Inc()
}

func (s *Service) IncProfileRequests() {
	s.ProfileRequests.Inc()
}

func (s *Service) IncWinRateRequests() {
	s.WinRateRequests.Inc()
}

func (s *Service) IncIngestJobsCompleted() {
	s.IngestJobsCompleted.Inc()
}

func (s *Service) IncIngestJobsFailed() {
	s.IngestJobsFailed.Inc()
}

func (s *Service) ObserveQueryDuration(duration float64) {
	s.QueryDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
