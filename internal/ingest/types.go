package ingest

import (
	"database/sql"
	"sync"
	"time"

	"github.com/openpug/pugstats/internal/metrics"
	"github.com/openpug/pugstats/internal/pubsub"
)

// JobStatus represents the lifecycle state of an ingest job.
type JobStatus string

const (
	StatusReceived  JobStatus = "RECEIVED"
	StatusCompleted JobStatus = "COMPLETED"
	StatusFailed    JobStatus = "FAILED"
)

// Job is one accepted unit of ingestion work. The worker performing it runs
// outside this process; this record is the contract: accept payload,
// acknowledge receipt, complete or fail.
type Job struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Payload     []byte     `json:"-"`
	Status      JobStatus  `json:"status"`
	Error       *string    `json:"error,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// MatchSnapshot is the payload shape the ingestion bot publishes for a
// finished match.
type MatchSnapshot struct {
	MatchID      int      `msgpack:"match_id" json:"match_id"`
	BlueTeam     []string `msgpack:"blue_team" json:"blue_team"`
	RedTeam      []string `msgpack:"red_team" json:"red_team"`
	Map          string   `msgpack:"map" json:"map"`
	Server       string   `msgpack:"server" json:"server"`
	GameType     string   `msgpack:"game_type" json:"game_type"`
	MatchOutcome int      `msgpack:"match_outcome" json:"match_outcome"`
}

// Envelope is the wire shape published to the ingest topic and delivered
// back through the push subscription. On the way back the worker sets Error
// when it could not process the payload.
type Envelope struct {
	JobID   string `msgpack:"job_id"`
	Kind    string `msgpack:"kind"`
	Payload []byte `msgpack:"payload"`
	Error   string `msgpack:"error,omitempty"`
}

// store handles database operations for ingest jobs.
type store struct {
	db      *sql.DB
	mu      sync.RWMutex
	ps      pubsub.PubSubClient
	topic   string
	metrics metrics.Metrics
}
