package driven

import (
	"context"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

// ArtifactStore persists fitted models and the manifest.
// Writes replace existing files atomically so readers never see partial content.
type ArtifactStore interface {
	// SaveModel serialises model to path.
	SaveModel(ctx context.Context, path string, model domain.Regressor) error

	// LoadModel reads a model from path.
	LoadModel(ctx context.Context, path string) (domain.Regressor, error)

	// WriteManifest replaces the manifest at path.
	WriteManifest(ctx context.Context, path string, manifest domain.Manifest) error

	// ReadManifest reads the manifest at path.
	// Returns domain.ErrNotFound if it does not exist.
	ReadManifest(ctx context.Context, path string) (*domain.Manifest, error)
}

// ExperimentExporter writes run parameters and metrics for external tracking tools.
type ExperimentExporter interface {
	Export(ctx context.Context, hp domain.Hyperparameters, metrics map[domain.ModelFamily]domain.Metrics) error
}
