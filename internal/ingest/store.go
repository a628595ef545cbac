package ingest

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/openpug/pugstats/internal/metrics"
	"github.com/openpug/pugstats/internal/pubsub"
)

// NewStore creates a new ingest JobQueue.
func NewStore(db *sql.DB, ps pubsub.PubSubClient, topic string, metricsSvc metrics.Metrics) JobQueue {
	return &store{
		db:      db,
		ps:      ps,
		topic:   topic,
		metrics: metricsSvc,
	}
}

// Enqueue records a job and publishes its payload to the ingest topic.
func (s *store) Enqueue(kind string, payload any) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job payload: %w", err)
	}

	job := &Job{
		ID:          uuid.New().String(),
		Kind:        kind,
		Payload:     blob,
		Status:      StatusReceived,
		SubmittedAt: time.Now(),
	}

	_, err = s.db.Exec(`
		INSERT INTO ingest_jobs (id, kind, payload, status, submitted_at)
		VALUES (?, ?, ?, ?, ?)
	`, job.ID, job.Kind, job.Payload, string(job.Status), job.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record ingest job: %w", err)
	}

	env := Envelope{JobID: job.ID, Kind: kind, Payload: blob}
	if err := s.ps.SendMessage(s.topic, env); err != nil {
		// The row stays RECEIVED; the caller decides whether to retry.
		return nil, fmt.Errorf("failed to publish ingest job: %w", err)
	}

	log.Info("Enqueued ingest job", "id", job.ID, "kind", kind)
	return job, nil
}

// Get retrieves a job by id.
func (s *store) Get(jobID string) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getLocked(jobID)
}

func (s *store) getLocked(jobID string) (*Job, error) {
	var job Job
	var status string
	err := s.db.QueryRow(`
		SELECT id, kind, payload, status, error, submitted_at, completed_at
		FROM ingest_jobs WHERE id = ?
	`, jobID).Scan(&job.ID, &job.Kind, &job.Payload, &status, &job.Error, &job.SubmittedAt, &job.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ingest job: %w", err)
	}
	job.Status = JobStatus(status)
	return &job, nil
}

// Complete marks a job as successfully finished.
func (s *store) Complete(jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishLocked(jobID, StatusCompleted, nil); err != nil {
		return err
	}
	s.metrics.IncIngestJobsCompleted()
	log.Info("Completed ingest job", "id", jobID)
	return nil
}

// Fail marks a job as failed with a reason.
func (s *store) Fail(jobID string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.finishLocked(jobID, StatusFailed, &reason); err != nil {
		return err
	}
	s.metrics.IncIngestJobsFailed()
	log.Warn("Failed ingest job", "id", jobID, "reason", reason)
	return nil
}

func (s *store) finishLocked(jobID string, status JobStatus, reason *string) error {
	res, err := s.db.Exec(`
		UPDATE ingest_jobs SET status = ?, error = ?, completed_at = ? WHERE id = ?
	`, string(status), reason, time.Now(), jobID)
	if err != nil {
		return fmt.Errorf("failed to update ingest job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Pending returns all jobs still awaiting completion, oldest first.
func (s *store) Pending() ([]Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, kind, payload, status, error, submitted_at, completed_at
		FROM ingest_jobs WHERE status = ? ORDER BY submitted_at ASC
	`, string(StatusReceived))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}
	defer rows.Close()

	jobs := []Job{}
	for rows.Next() {
		var job Job
		var status string
		if err := rows.Scan(&job.ID, &job.Kind, &job.Payload, &status, &job.Error, &job.SubmittedAt, &job.CompletedAt); err != nil {
			log.Error("Failed to scan ingest job row", "error", err)
			continue
		}
		job.Status = JobStatus(status)
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}
