package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

type mockIngestion struct{ result domain.IngestResult }

func (m *mockIngestion) Ingest(context.Context) domain.IngestResult { return m.result }

type mockTraining struct {
	result     domain.TrainResult
	profiles   []domain.ColumnProfile
	profileErr error
	trained    int
}

func (m *mockTraining) Train(context.Context) domain.TrainResult {
	m.trained++
	return m.result
}

func (m *mockTraining) Profile(context.Context) ([]domain.ColumnProfile, error) {
	return m.profiles, m.profileErr
}

type mockPipeline struct {
	kinds []domain.JobKind
	state domain.JobState
}

func (m *mockPipeline) Run(_ context.Context, kind domain.JobKind) (*domain.Job, error) {
	if !kind.IsValid() {
		return nil, domain.ErrInvalidInput
	}
	m.kinds = append(m.kinds, kind)
	return &domain.Job{
		ID:     "job-1",
		Kind:   kind,
		State:  m.state,
		Ingest: &domain.IngestResult{Status: domain.StatusOK, Message: "raw table rebuilt"},
	}, nil
}

type mockPrediction struct {
	samples []domain.Sample
	err     error
}

func (m *mockPrediction) Predict(ctx context.Context, s domain.Sample) (*domain.Prediction, error) {
	out, err := m.PredictBatch(ctx, []domain.Sample{s})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (m *mockPrediction) PredictBatch(_ context.Context, samples []domain.Sample) ([]domain.Prediction, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.samples = append(m.samples, samples...)
	out := make([]domain.Prediction, len(samples))
	for i := range samples {
		out[i] = domain.Prediction{PredictedPrice: float64(100000 * (i + 1)), Currency: "USD"}
	}
	return out, nil
}

func (m *mockPrediction) Health(context.Context) domain.HealthReport {
	return domain.HealthReport{Status: "ok"}
}

func (m *mockPrediction) Reload(context.Context) error { return m.err }

type mockExperiments struct {
	records []domain.ExperimentRecord
	limit   int
}

func (m *mockExperiments) List(_ context.Context, limit int) ([]domain.ExperimentRecord, error) {
	m.limit = limit
	return m.records, nil
}

type mockSettings struct {
	values map[string]any
	path   string
}

func (m *mockSettings) Settings() domain.Settings { return domain.DefaultSettings("/data") }

func (m *mockSettings) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockSettings) Set(key, value string) error {
	if key == "bogus" {
		return errors.New("unknown key")
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	return keys
}

func (m *mockSettings) Path() string { return m.path }

type testServices struct {
	ingestion   *mockIngestion
	training    *mockTraining
	pipeline    *mockPipeline
	prediction  *mockPrediction
	experiments *mockExperiments
	settings    *mockSettings
}

// setupTestServices installs mocks and returns a cleanup that restores the
// previous services and resets command flags.
func setupTestServices() (*testServices, func()) {
	prev := Services{
		Ingestion:   ingestionService,
		Training:    trainingService,
		Pipeline:    pipelineService,
		Dispatcher:  jobDispatcher,
		Prediction:  predictionService,
		Experiments: experimentService,
		Settings:    settingsService,
		Scheduler:   scheduler,
	}

	ts := &testServices{
		ingestion: &mockIngestion{result: domain.IngestResult{
			Status: domain.StatusOK, Message: "raw table rebuilt", ProcessedFile: "/raw/entrenamiento-2025-01-01.csv", Updated: true,
		}},
		training:    &mockTraining{result: domain.TrainResult{Status: domain.StatusOK, Message: "models trained"}},
		pipeline:    &mockPipeline{state: domain.JobSucceeded},
		prediction:  &mockPrediction{},
		experiments: &mockExperiments{},
		settings:    &mockSettings{values: map[string]any{}, path: "/data/config.toml"},
	}
	Configure(Services{
		Ingestion:   ts.ingestion,
		Training:    ts.training,
		Pipeline:    ts.pipeline,
		Prediction:  ts.prediction,
		Experiments: ts.experiments,
		Settings:    ts.settings,
	})

	return ts, func() {
		Configure(prev)
		trainProfile = false
		pipelineKind = string(domain.JobIngestTrain)
		predictFile, predictSample, predictJSON = "", "", false
		experimentsLimit, experimentsJSON = 20, false
	}
}

// execute runs the root command with args and returns its combined output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

var testTime = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
