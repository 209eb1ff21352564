package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// mockPredictionService is a mock implementation of driving.PredictionService.
type mockPredictionService struct {
	prediction *domain.Prediction
	health     domain.HealthReport
	err        error
	samples    []domain.Sample
}

func (m *mockPredictionService) Predict(_ context.Context, sample domain.Sample) (*domain.Prediction, error) {
	m.samples = append(m.samples, sample)
	return m.prediction, m.err
}

func (m *mockPredictionService) PredictBatch(_ context.Context, samples []domain.Sample) ([]domain.Prediction, error) {
	m.samples = append(m.samples, samples...)
	return nil, m.err
}

func (m *mockPredictionService) Health(_ context.Context) domain.HealthReport {
	return m.health
}

func (m *mockPredictionService) Reload(_ context.Context) error {
	return m.err
}

// mockDispatcher is a mock implementation of driving.Dispatcher.
type mockDispatcher struct {
	jobs      map[string]*domain.Job
	submitted []domain.JobKind
	err       error
}

func (m *mockDispatcher) Submit(kind domain.JobKind) (*domain.Job, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.submitted = append(m.submitted, kind)
	return &domain.Job{ID: "job-1", Kind: kind, State: domain.JobQueued, SubmittedAt: time.Now()}, nil
}

func (m *mockDispatcher) Job(id string) (*domain.Job, error) {
	if job, ok := m.jobs[id]; ok {
		return job, nil
	}
	return nil, domain.ErrNotFound
}

// mockExperimentService is a mock implementation of driving.ExperimentService.
type mockExperimentService struct {
	records []domain.ExperimentRecord
	err     error
	limit   int
}

func (m *mockExperimentService) List(_ context.Context, limit int) ([]domain.ExperimentRecord, error) {
	m.limit = limit
	return m.records, m.err
}
