package http

import (
	"net/http"

	"github.com/openpug/pugstats/internal/config"
	"github.com/openpug/pugstats/internal/ingest"
	"github.com/openpug/pugstats/internal/metrics"
	"github.com/openpug/pugstats/internal/pubsub"
	"github.com/openpug/pugstats/internal/pug"
)

type Server struct {
	Store          pug.PugStore
	Jobs           ingest.JobQueue
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
