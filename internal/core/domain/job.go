package domain

import "time"

// JobKind names a pipeline run that can be dispatched in the background.
type JobKind string

// Job kinds.
const (
	JobIngest      JobKind = "ingest"
	JobTrain       JobKind = "train"
	JobIngestTrain JobKind = "ingest-train"
)

// IsValid returns true if the kind is recognised.
func (k JobKind) IsValid() bool {
	switch k {
	case JobIngest, JobTrain, JobIngestTrain:
		return true
	default:
		return false
	}
}

// JobState is the lifecycle state of a dispatched job.
type JobState string

// Job states.
const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// IsTerminal reports whether the job has finished.
func (s JobState) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Job is one background pipeline run.
type Job struct {
	ID          string        `json:"id"`
	Kind        JobKind       `json:"kind"`
	State       JobState      `json:"state"`
	SubmittedAt time.Time     `json:"submitted_at"`
	StartedAt   time.Time     `json:"started_at,omitempty"`
	EndedAt     time.Time     `json:"ended_at,omitempty"`
	Ingest      *IngestResult `json:"ingest,omitempty"`
	Train       *TrainResult  `json:"train,omitempty"`
}
