package http

import (
	"net/http"

	"github.com/openpug/pugstats/internal/config"
	"github.com/openpug/pugstats/internal/ingest"
	"github.com/openpug/pugstats/internal/metrics"
	"github.com/openpug/pugstats/internal/pubsub"
	"github.com/openpug/pugstats/internal/pug"
)

func NewServer(store pug.PugStore, jobs ingest.JobQueue, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Jobs:           jobs,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("GET /api/players", Chain(s.ListPlayersHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/players/by-elo", Chain(s.LeaderboardHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/players/{id}", Chain(s.GetPlayerHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/players/discord/{discord_id}", Chain(s.GetPlayerByDiscordIDHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/players/name/{name}", Chain(s.GetPlayerByNameHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/players/combined/{name}", Chain(s.PlayerProfileHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /api/players/echo", Chain(s.EchoHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("GET /api/matches", Chain(s.ListMatchesHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/matches/with-players", Chain(s.MatchesWithPlayersHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/matches/{id}", Chain(s.GetMatchHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/matches/player/{player_name}", Chain(s.MatchesForPlayerHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/matches/same-team-winrate/{p1}/{p2}", Chain(s.SameTeamWinRateHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /api/matches/echo", Chain(s.EchoHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("GET /api/player_elo", Chain(s.HelloHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /api/player_elo/{player_name}", Chain(s.EloHistoryHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /api/player_elo/echo", Chain(s.EchoHandler(), requestIDMiddleware, paramsMiddleware))

	s.Router.Handle("POST /jobs", Chain(s.EnqueueJobHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /jobs", Chain(s.PendingJobsHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /jobs/{id}", Chain(s.GetJobHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /pubsub/ingest", Chain(s.IngestPushHandler(), requestIDMiddleware, paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
