package rest

import (
	"context"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

type mockPrediction struct {
	prediction *domain.Prediction
	health     domain.HealthReport
	predictErr error
	reloadErr  error
	reloads    int
	predicted  []domain.Sample
}

func (m *mockPrediction) Predict(_ context.Context, sample domain.Sample) (*domain.Prediction, error) {
	m.predicted = append(m.predicted, sample)
	if m.predictErr != nil {
		return nil, m.predictErr
	}
	return m.prediction, nil
}

func (m *mockPrediction) PredictBatch(_ context.Context, _ []domain.Sample) ([]domain.Prediction, error) {
	return nil, m.predictErr
}

func (m *mockPrediction) Health(_ context.Context) domain.HealthReport {
	return m.health
}

func (m *mockPrediction) Reload(_ context.Context) error {
	m.reloads++
	return m.reloadErr
}

type mockPipeline struct {
	ingest domain.IngestResult
	train  domain.TrainResult
	err    error
	kinds  []domain.JobKind
}

func (m *mockPipeline) Run(_ context.Context, kind domain.JobKind) (*domain.Job, error) {
	m.kinds = append(m.kinds, kind)
	if m.err != nil {
		return nil, m.err
	}
	job := &domain.Job{ID: "job-1", Kind: kind, State: domain.JobSucceeded}
	switch kind {
	case domain.JobIngest:
		job.Ingest = &m.ingest
	case domain.JobTrain:
		job.Train = &m.train
	}
	return job, nil
}

type mockDispatcher struct {
	jobs map[string]*domain.Job
	err  error
}

func (m *mockDispatcher) Submit(kind domain.JobKind) (*domain.Job, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !kind.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	return &domain.Job{ID: "job-1", Kind: kind, State: domain.JobQueued}, nil
}

func (m *mockDispatcher) Job(id string) (*domain.Job, error) {
	if job, ok := m.jobs[id]; ok {
		return job, nil
	}
	return nil, domain.ErrNotFound
}
