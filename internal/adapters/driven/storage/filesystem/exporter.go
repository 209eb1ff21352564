package filesystem

import (
	"context"
	"fmt"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
)

// Exported file names.
const (
	ParamsFile  = "params.yaml"
	MetricsFile = "metrics.yaml"
)

// Exporter writes the latest run's parameters and metrics as YAML files that
// experiment tracking tools can diff between commits.
type Exporter struct {
	dir string
}

var _ driven.ExperimentExporter = (*Exporter)(nil)

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Dir returns the output directory.
func (e *Exporter) Dir() string {
	return e.dir
}

// Export replaces params.yaml and metrics.yaml.
func (e *Exporter) Export(ctx context.Context, hp domain.Hyperparameters, metrics map[domain.ModelFamily]domain.Metrics) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params, err := yaml.Marshal(hp)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(e.dir, ParamsFile), params, 0o644); err != nil {
		return fmt.Errorf("export params: %w", err)
	}

	byName := make(map[string]domain.Metrics, len(metrics))
	for family, m := range metrics {
		byName[string(family)] = m
	}
	scores, err := yaml.Marshal(byName)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(e.dir, MetricsFile), scores, 0o644); err != nil {
		return fmt.Errorf("export metrics: %w", err)
	}
	return nil
}
