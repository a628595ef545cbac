package ingest

import "errors"

// ErrNotFound is returned when a job id has no matching record.
var ErrNotFound = errors.New("ingest job not found")

// JobQueue is the async job contract around the external ingestion worker:
// a job is accepted and recorded, its payload published, and the worker (or
// its push subscription) later reports completion or failure.
type JobQueue interface {
	// Enqueue records a job and publishes its payload to the ingest topic.
	Enqueue(kind string, payload any) (*Job, error)

	// Get retrieves a job by id.
	Get(jobID string) (*Job, error)

	// Complete marks a job as successfully finished.
	Complete(jobID string) error

	// Fail marks a job as failed with a reason.
	Fail(jobID string, reason string) error

	// Pending returns all jobs still awaiting completion, oldest first.
	Pending() ([]Job, error)
}
