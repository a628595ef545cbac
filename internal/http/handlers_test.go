package http

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/openpug/pugstats/internal/config"
	"github.com/openpug/pugstats/internal/database"
	"github.com/openpug/pugstats/internal/ingest"
	"github.com/openpug/pugstats/internal/metrics"
	"github.com/openpug/pugstats/internal/pubsub"
	"github.com/openpug/pugstats/internal/pug"
)

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T) (*Server, *sql.DB, *pubsub.MockPubSubClient, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := pug.New(db)
	cfg := config.Config{IngestTopic: "pug-ingest"}

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")
	jobs := ingest.NewStore(db, ps, cfg.IngestTopic, metricsSvc)

	server := NewServer(store, jobs, metricsSvc, metricsHandler, cfg, ps)

	teardown := func() {
		dbTeardown()
		db.Close()
	}
	return server, db, ps, teardown
}

func seedPlayer(t *testing.T, db *sql.DB, name, discordID string, elo, wins, losses int) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO players (discord_id, player_name, current_elo, pug_wins, pug_losses, pug_draws)
		VALUES (?, ?, ?, ?, ?, 0)`, discordID, name, elo, wins, losses)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func seedMatch(t *testing.T, db *sql.DB, blueTeam, redTeam string, outcome int, createdAt time.Time) int64 {
	t.Helper()

	res, err := db.Exec(`
		INSERT INTO matches (created_at, updated_at, blue_team, red_team, game_type, match_outcome)
		VALUES (?, ?, ?, ?, '4v4', ?)`, createdAt, createdAt, blueTeam, redTeam, outcome)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func doRequest(t *testing.T, server *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheckHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(t, server, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestListPlayersHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "100", 1500, 8, 4)
	seedPlayer(t, db, "Bob", "200", 1400, 6, 5)

	rec := doRequest(t, server, "GET", "/api/players", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var players []pug.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &players))
	require.Len(t, players, 2)
	assert.Equal(t, "Alice", *players[0].PlayerName)
}

func TestGetPlayerHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	id := seedPlayer(t, db, "Alice", "100", 1500, 8, 4)

	rec := doRequest(t, server, "GET", fmt.Sprintf("/api/players/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var player pug.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &player))
	assert.Equal(t, "Alice", *player.PlayerName)

	rec = doRequest(t, server, "GET", "/api/players/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, server, "GET", "/api/players/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPlayerByDiscordIDHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "100", 1500, 8, 4)

	rec := doRequest(t, server, "GET", "/api/players/discord/100", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var player pug.Player
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &player))
	assert.Equal(t, "Alice", *player.PlayerName)

	rec = doRequest(t, server, "GET", "/api/players/discord/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPlayerByNameHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "100", 1500, 8, 4)

	rec := doRequest(t, server, "GET", "/api/players/name/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, "GET", "/api/players/name/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLeaderboardHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "100", 1500, 8, 4)
	seedPlayer(t, db, "Bob", "200", 1400, 6, 5)
	seedPlayer(t, db, "Fresh", "300", 2000, 1, 1) // below the games floor
	seedMatch(t, db, "100,200", "300,400", 1, time.Now().UTC())

	rec := doRequest(t, server, "GET", "/api/players/by-elo", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []pug.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "Alice", entries[0].PlayerName)
	assert.Equal(t, 1, entries[0].AllTimeRank)
	assert.True(t, entries[0].IsActive)
	require.NotNil(t, entries[0].ActiveRank)
	assert.Equal(t, 1, *entries[0].ActiveRank)

	// Identical requests must produce identical bodies.
	rec2 := doRequest(t, server, "GET", "/api/players/by-elo", nil)
	assert.Equal(t, rec.Body.String(), rec2.Body.String())
}

func TestPlayerProfileHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "100", 1500, 8, 4)
	matchID := seedMatch(t, db, "100,200", "300,400", 1, time.Now().UTC())
	_, err := db.Exec(`
		INSERT INTO player_elo (entry_id, match_id, player_name, player_elos, discord_id)
		VALUES (1, ?, 'Alice', 1520, 100)`, matchID)
	require.NoError(t, err)

	rec := doRequest(t, server, "GET", "/api/players/combined/Alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile pug.PlayerProfile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "Alice", *profile.Player.PlayerName)
	require.Len(t, profile.Matches, 1)
	require.Len(t, profile.EloHistory, 1)
	assert.Equal(t, 1520, profile.EloHistory[0].PlayerElos)

	rec = doRequest(t, server, "GET", "/api/players/combined/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMatchesHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	now := time.Now().UTC()
	seedMatch(t, db, "100,200", "300,400", 1, now.Add(-1*time.Hour))
	newest := seedMatch(t, db, "100,300", "200,400", 2, now)

	rec := doRequest(t, server, "GET", "/api/matches", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var matches []pug.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	require.Len(t, matches, 2)
	assert.Equal(t, newest, matches[0].ID)
}

func TestGetMatchHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	id := seedMatch(t, db, "100,200", "300,400", 1, time.Now().UTC())

	rec := doRequest(t, server, "GET", fmt.Sprintf("/api/matches/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var match pug.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, "100,200", *match.BlueTeam)

	rec = doRequest(t, server, "GET", "/api/matches/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, server, "GET", "/api/matches/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMatchesForPlayerHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "42", 1500, 8, 4)
	mine := seedMatch(t, db, "42,200", "300,400", 1, time.Now().UTC())
	seedMatch(t, db, "142,200", "300,400", 1, time.Now().UTC())

	rec := doRequest(t, server, "GET", "/api/matches/player/Alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var matches []pug.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, mine, matches[0].ID)

	rec = doRequest(t, server, "GET", "/api/matches/player/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchesWithPlayersHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "100", 1500, 8, 4)
	seedPlayer(t, db, "Bob", "200", 1400, 6, 5)
	seedMatch(t, db, "100", "200", 1, time.Now().UTC())

	rec := doRequest(t, server, "GET", "/api/matches/with-players", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result []pug.MatchWithPlayers
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result, 1)
	require.Len(t, result[0].BluePlayers, 1)
	assert.Equal(t, "Alice", *result[0].BluePlayers[0].PlayerName)
	require.Len(t, result[0].RedPlayers, 1)
	assert.Equal(t, "Bob", *result[0].RedPlayers[0].PlayerName)
}

func TestSameTeamWinRateHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	seedPlayer(t, db, "Alice", "100", 1500, 8, 4)
	seedPlayer(t, db, "Bob", "200", 1400, 6, 5)
	now := time.Now().UTC()
	seedMatch(t, db, "100,200", "300,400", 1, now.Add(-2*time.Hour))
	seedMatch(t, db, "100,200", "300,400", 2, now.Add(-1*time.Hour))

	rec := doRequest(t, server, "GET", "/api/matches/same-team-winrate/Alice/Bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result pug.SameTeamWinRate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.GamesPlayed)
	assert.Equal(t, 1, result.Wins)
	assert.InDelta(t, 0.5, result.WinRate, 1e-9)

	rec = doRequest(t, server, "GET", "/api/matches/same-team-winrate/Alice/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEloHistoryHandler(t *testing.T) {
	server, db, _, teardown := setupTestServer(t)
	defer teardown()

	_, err := db.Exec(`
		INSERT INTO player_elo (entry_id, match_id, player_name, player_elos, discord_id)
		VALUES (1, 1, 'Alice', 1500, 100)`)
	require.NoError(t, err)

	rec := doRequest(t, server, "GET", "/api/player_elo/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []pug.EloSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, 1500, history[0].PlayerElos)

	// Unknown names are an empty listing, not an error.
	rec = doRequest(t, server, "GET", "/api/player_elo/nobody", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHelloHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(t, server, "GET", "/api/player_elo", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
}

func TestEchoHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	for _, target := range []string{"/api/players/echo", "/api/matches/echo", "/api/player_elo/echo"} {
		rec := doRequest(t, server, "POST", target, strings.NewReader(`{"ping":"pong"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"ping":"pong"}`, rec.Body.String())
	}
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	server, _, ps, teardown := setupTestServer(t)
	defer teardown()

	body := `{"kind":"ingest-match","match":{"match_id":77,"blue_team":["100","200"],"red_team":["300","400"],"game_type":"4v4","match_outcome":1}}`
	rec := doRequest(t, server, "POST", "/jobs", strings.NewReader(body))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job ingest.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, ingest.StatusReceived, job.Status)
	require.Len(t, ps.SendMessageCalls, 1)

	// Simulate the push subscription delivering the published envelope back.
	env := ps.SendMessageCalls[0].Data.(ingest.Envelope)
	raw, err := msgpack.Marshal(env)
	require.NoError(t, err)

	var push pubsub.PushMessage
	push.Subscription = "projects/test/subscriptions/pug-ingest"
	push.Message.Data = base64.StdEncoding.EncodeToString(raw)
	pushBody, err := json.Marshal(push)
	require.NoError(t, err)

	rec = doRequest(t, server, "POST", "/pubsub/ingest", bytes.NewReader(pushBody))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, "GET", "/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, ingest.StatusCompleted, job.Status)
	assert.NotNil(t, job.CompletedAt)
}

func TestIngestPushHandlerFailedJob(t *testing.T) {
	server, _, ps, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(t, server, "POST", "/jobs", strings.NewReader(`{"kind":"ingest-match","match":{"match_id":1}}`))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job ingest.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))

	// The worker reports a failure by setting the envelope error.
	env := ps.SendMessageCalls[0].Data.(ingest.Envelope)
	env.Error = "malformed roster"
	raw, err := msgpack.Marshal(env)
	require.NoError(t, err)

	var push pubsub.PushMessage
	push.Message.Data = base64.StdEncoding.EncodeToString(raw)
	pushBody, err := json.Marshal(push)
	require.NoError(t, err)

	rec = doRequest(t, server, "POST", "/pubsub/ingest", bytes.NewReader(pushBody))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, "GET", "/jobs/"+job.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, ingest.StatusFailed, job.Status)
	require.NotNil(t, job.Error)
	assert.Equal(t, "malformed roster", *job.Error)
}

func TestPendingJobsHandler(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(t, server, "GET", "/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = doRequest(t, server, "POST", "/jobs", strings.NewReader(`{"kind":"ingest-match","match":{"match_id":1}}`))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var first ingest.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	rec = doRequest(t, server, "POST", "/jobs", strings.NewReader(`{"kind":"ingest-match","match":{"match_id":2}}`))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var second ingest.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))

	rec = doRequest(t, server, "GET", "/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []ingest.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)

	require.NoError(t, server.Jobs.Complete(first.ID))

	rec = doRequest(t, server, "GET", "/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestEnqueueJobHandlerBadJSON(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(t, server, "POST", "/jobs", strings.NewReader("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobHandlerNotFound(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(t, server, "GET", "/jobs/no-such-job", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIngestPushHandlerUnknownJob(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	env := ingest.Envelope{JobID: "no-such-job", Kind: "ingest-match"}
	raw, err := msgpack.Marshal(env)
	require.NoError(t, err)

	var push pubsub.PushMessage
	push.Message.Data = base64.StdEncoding.EncodeToString(raw)
	pushBody, err := json.Marshal(push)
	require.NoError(t, err)

	// Unknown jobs are acked so the subscription stops redelivering.
	rec := doRequest(t, server, "POST", "/pubsub/ingest", bytes.NewReader(pushBody))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIngestPushHandlerBadPayloads(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	rec := doRequest(t, server, "POST", "/pubsub/ingest", strings.NewReader("{not json"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, "POST", "/pubsub/ingest", strings.NewReader(`{"message":{"data":"%%%"}}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlersMapStoreFailuresTo500(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	mock := pug.NewMock()
	mock.GetAllPlayersFunc = func() ([]pug.Player, error) {
		return nil, assert.AnError
	}
	mock.GetPlayerFunc = func(id int64) (*pug.Player, error) {
		return nil, assert.AnError
	}
	server.Store = mock

	rec := doRequest(t, server, "GET", "/api/players", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = doRequest(t, server, "GET", "/api/players/1", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, mock.GetPlayerCalls, 1)
	assert.Equal(t, int64(1), mock.GetPlayerCalls[0])
}

func TestMetricsEndpoint(t *testing.T) {
	server, _, _, teardown := setupTestServer(t)
	defer teardown()

	doRequest(t, server, "GET", "/api/players/by-elo", nil)

	rec := doRequest(t, server, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pug_leaderboard_requests_total 1")
}
