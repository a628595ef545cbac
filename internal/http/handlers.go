package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/openpug/pugstats/internal/ingest"
	"github.com/openpug/pugstats/internal/pubsub"
	"github.com/openpug/pugstats/internal/pug"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// HelloHandler mirrors the legacy group-root endpoint of the elo resource.
func (s *Server) HelloHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "hello")
	}
}

// EchoHandler returns the request body unchanged. Diagnostic only.
func (s *Server) EchoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			log.Error("Failed to read echo body", "error", err)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}

func (s *Server) ListPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.GetAllPlayers()
		if err != nil {
			http.Error(w, "Failed to get players", http.StatusInternalServerError)
			log.Error("Failed to get players from store", "error", err)
			return
		}
		writeJSON(w, players)
	}
}

func (s *Server) GetPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid player id", http.StatusBadRequest)
			return
		}
		player, err := s.Store.GetPlayer(id)
		if err != nil {
			s.respondStoreError(w, err, "Failed to get player")
			return
		}
		writeJSON(w, player)
	}
}

func (s *Server) GetPlayerByDiscordIDHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := s.Store.GetPlayerByDiscordID(r.PathValue("discord_id"))
		if err != nil {
			s.respondStoreError(w, err, "Failed to get player by discord id")
			return
		}
		writeJSON(w, player)
	}
}

func (s *Server) GetPlayerByNameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := s.Store.GetPlayerByName(r.PathValue("name"))
		if err != nil {
			s.respondStoreError(w, err, "Failed to get player by name")
			return
		}
		writeJSON(w, player)
	}
}

// LeaderboardHandler serves the ranked player listing.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncLeaderboardRequests()
		start := time.Now()
		entries, err := s.Store.GetLeaderboard()
		if err != nil {
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			log.Error("Failed to get leaderboard from store", "error", err)
			return
		}
		s.Metrics.ObserveQueryDuration(time.Since(start).Seconds())
		writeJSON(w, entries)
	}
}

// PlayerProfileHandler serves the combined player + matches + elo history view.
func (s *Server) PlayerProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncProfileRequests()
		start := time.Now()
		profile, err := s.Store.GetPlayerProfile(r.PathValue("name"))
		if err != nil {
			s.respondStoreError(w, err, "Failed to get player profile")
			return
		}
		s.Metrics.ObserveQueryDuration(time.Since(start).Seconds())
		writeJSON(w, profile)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetAllMatches()
		if err != nil {
			http.Error(w, "Failed to get matches", http.StatusInternalServerError)
			log.Error("Failed to get matches from store", "error", err)
			return
		}
		writeJSON(w, matches)
	}
}

func (s *Server) GetMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid match id", http.StatusBadRequest)
			return
		}
		match, err := s.Store.GetMatch(id)
		if err != nil {
			s.respondStoreError(w, err, "Failed to get match")
			return
		}
		writeJSON(w, match)
	}
}

func (s *Server) MatchesForPlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetMatchesForPlayer(r.PathValue("player_name"))
		if err != nil {
			s.respondStoreError(w, err, "Failed to get matches for player")
			return
		}
		writeJSON(w, matches)
	}
}

func (s *Server) MatchesWithPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.GetMatchesWithPlayers()
		if err != nil {
			http.Error(w, "Failed to get matches with players", http.StatusInternalServerError)
			log.Error("Failed to get matches with players from store", "error", err)
			return
		}
		writeJSON(w, matches)
	}
}

func (s *Server) SameTeamWinRateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Metrics.IncWinRateRequests()
		start := time.Now()
		result, err := s.Store.GetSameTeamWinRate(r.PathValue("p1"), r.PathValue("p2"))
		if err != nil {
			s.respondStoreError(w, err, "Failed to get same-team win rate")
			return
		}
		s.Metrics.ObserveQueryDuration(time.Since(start).Seconds())
		writeJSON(w, result)
	}
}

func (s *Server) EloHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := s.Store.GetEloHistory(r.PathValue("player_name"))
		if err != nil {
			http.Error(w, "Failed to get elo history", http.StatusInternalServerError)
			log.Error("Failed to get elo history from store", "error", err)
			return
		}
		writeJSON(w, history)
	}
}

// EnqueueJobHandler accepts an ingest job and publishes it for the external
// worker. The response acknowledges receipt; completion arrives later via
// the push subscription.
func (s *Server) EnqueueJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Kind  string               `json:"kind"`
			Match ingest.MatchSnapshot `json:"match"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if req.Kind == "" {
			req.Kind = string(pubsub.EventIngestMatch)
		}

		job, err := s.Jobs.Enqueue(req.Kind, req.Match)
		if err != nil {
			http.Error(w, "Failed to enqueue job", http.StatusInternalServerError)
			log.Error("Failed to enqueue ingest job", "error", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if err := json.NewEncoder(w).Encode(job); err != nil {
			log.Error("Failed to encode job to JSON", "error", err)
		}
	}
}

// PendingJobsHandler lists the jobs still awaiting a worker outcome,
// oldest first.
func (s *Server) PendingJobsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := s.Jobs.Pending()
		if err != nil {
			http.Error(w, "Failed to get pending jobs", http.StatusInternalServerError)
			log.Error("Failed to get pending ingest jobs", "error", err)
			return
		}
		writeJSON(w, jobs)
	}
}

func (s *Server) GetJobHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := s.Jobs.Get(r.PathValue("id"))
		if err != nil {
			if errors.Is(err, ingest.ErrNotFound) {
				http.Error(w, "Not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get job", http.StatusInternalServerError)
			log.Error("Failed to get ingest job", "error", err)
			return
		}
		writeJSON(w, job)
	}
}

// IngestPushHandler handles push deliveries from the ingest subscription
// and records the worker's outcome on the referenced job: a completion, or
// a failure when the envelope carries an error.
func (s *Server) IngestPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received ingest push message", "body", string(bodyBytes))

		var pushMsg pubsub.PushMessage
		if err := json.Unmarshal(bodyBytes, &pushMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var env ingest.Envelope
		if err := s.pubsub.ProcessMessage(rawData, &env); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}

		var finishErr error
		if env.Error != "" {
			finishErr = s.Jobs.Fail(env.JobID, env.Error)
		} else {
			finishErr = s.Jobs.Complete(env.JobID)
		}
		if finishErr != nil {
			if errors.Is(finishErr, ingest.ErrNotFound) {
				// Ack anyway; redelivering an unknown job cannot succeed.
				log.Warn("Push delivery for unknown ingest job", "jobID", env.JobID)
				w.Write([]byte("OK"))
				return
			}
			http.Error(w, "Failed to finish job", http.StatusInternalServerError)
			log.Error("Failed to finish ingest job", "error", finishErr, "jobID", env.JobID)
			return
		}
		w.Write([]byte("OK"))
	}
}

// respondStoreError maps store errors onto status codes; a missing record is
// a bare 404 and anything else is a generic server failure.
func (s *Server) respondStoreError(w http.ResponseWriter, err error, logMsg string) {
	if errors.Is(err, pug.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Internal server error", http.StatusInternalServerError)
	log.Error(logMsg, "error", err)
}

// writeJSON is a helper to encode a payload as an HTTP JSON response.
func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response to JSON", "error", err)
	}
}
