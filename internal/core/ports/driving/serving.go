package driving

import (
	"context"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// ModelCache holds the single active model.
// Readers always observe either the previous or the new model, never a partial one.
type ModelCache interface {
	// Get returns the cached model, loading it on first use.
	Get(ctx context.Context) (domain.Regressor, error)

	// Load reads the artifact and replaces the cached model when force is true
	// or the cache is empty. On failure the cache is left empty.
	Load(ctx context.Context, force bool) (domain.Regressor, error)

	// Loaded reports whether a model is cached.
	Loaded() bool

	// Path returns the artifact path the cache loads from.
	Path() string
}

// PredictionService answers price predictions from the cached model.
type PredictionService interface {
	// Predict validates the sample and returns a guarded prediction.
	Predict(ctx context.Context, sample domain.Sample) (*domain.Prediction, error)

	// PredictBatch predicts many samples with one model read.
	PredictBatch(ctx context.Context, samples []domain.Sample) ([]domain.Prediction, error)

	// Health reports whether a model is available and the recent average latency.
	Health(ctx context.Context) domain.HealthReport

	// Reload forces the model cache to reread its artifact.
	Reload(ctx context.Context) error
}

// ExperimentService exposes the experiment history.
type ExperimentService interface {
	List(ctx context.Context, limit int) ([]domain.ExperimentRecord, error)
}

// SettingsService reads and updates configuration.
type SettingsService interface {
	// Settings returns defaults overlaid with configured values.
	Settings() domain.Settings

	// Get returns the raw configured value of key.
	Get(key string) (any, bool)

	// Set validates and persists a configuration value.
	Set(key, value string) error

	// Keys returns every configured key.
	Keys() []string

	// Path returns the configuration file path.
	Path() string
}
