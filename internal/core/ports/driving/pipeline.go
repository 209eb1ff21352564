package driving

import (
	"context"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// IngestionService is the ingestion entry point.
type IngestionService interface {
	// Ingest resolves the authoritative raw file and rebuilds the raw table when needed.
	// Failures are reported in the result, never as a panic or error.
	Ingest(ctx context.Context) domain.IngestResult
}

// TrainingService is the training entry point.
type TrainingService interface {
	// Train cleans the raw table, fits both model families and publishes the artifacts.
	// Failures are reported in the result, never as a panic or error.
	Train(ctx context.Context) domain.TrainResult

	// Profile returns column statistics of the cleaned training subset without training.
	Profile(ctx context.Context) ([]domain.ColumnProfile, error)
}

// PipelineService runs jobs synchronously.
type PipelineService interface {
	// Run executes a job of the given kind and returns it in a terminal state.
	Run(ctx context.Context, kind domain.JobKind) (*domain.Job, error)
}

// Dispatcher runs jobs in the background one at a time.
type Dispatcher interface {
	// Submit queues a job and returns immediately.
	Submit(kind domain.JobKind) (*domain.Job, error)

	// Job returns a snapshot of a submitted job.
	Job(id string) (*domain.Job, error)
}
