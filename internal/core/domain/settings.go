package domain

import (
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// SurfacePolicy defines how rows with surface_covered > surface_total are treated.
type SurfacePolicy string

// Available surface policies.
const (
	// SurfacePolicyClamp lowers surface_covered to surface_total.
	SurfacePolicyClamp SurfacePolicy = "clamp"

	// SurfacePolicyFlag keeps the values and marks the row in surface_flagged.
	SurfacePolicyFlag SurfacePolicy = "flag"
)

// IsValid returns true if the policy is recognised.
func (p SurfacePolicy) IsValid() bool {
	switch p {
	case SurfacePolicyClamp, SurfacePolicyFlag:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p SurfacePolicy) String() string {
	return string(p)
}

// Description returns a human-readable description of the policy.
func (p SurfacePolicy) Description() string {
	switch p {
	case SurfacePolicyClamp:
		return "Clamp covered surface to total surface"
	case SurfacePolicyFlag:
		return "Flag inconsistent surfaces in surface_flagged"
	default:
		return unknownDescription
	}
}

// LogFormat selects the log encoder.
type LogFormat string

// Available log formats.
const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// IsValid returns true if the format is recognised.
func (f LogFormat) IsValid() bool {
	return f == LogFormatText || f == LogFormatJSON
}

// PathSettings locates every artifact of the pipeline.
type PathSettings struct {
	// DataDir is the root directory; the other paths default beneath it.
	DataDir string

	// RawDir holds raw dataset snapshots.
	RawDir string

	// AnalyticalDB is the analytical store file holding the raw and clean tables.
	AnalyticalDB string

	// Parquet is the columnar snapshot exported from the raw table.
	Parquet string

	// ModelsDir holds model artifacts and the manifest.
	ModelsDir string

	// MetricsDir holds exported parameters and metrics.
	MetricsDir string
}

// ArtifactPath returns the artifact path for a model family.
func (p PathSettings) ArtifactPath(family ModelFamily) string {
	switch family {
	case FamilyGradientBoosting:
		return filepath.Join(p.ModelsDir, "gradient_boosting.gob.gz")
	default:
		return filepath.Join(p.ModelsDir, "random_forest.gob.gz")
	}
}

// ManifestPath returns the manifest location.
func (p PathSettings) ManifestPath() string {
	return filepath.Join(p.ModelsDir, "manifest.json")
}

// DatasetSettings names the dataset locally and remotely.
type DatasetSettings struct {
	// Base is the raw file stem ("entrenamiento").
	Base string

	// Slug is the remote dataset identifier ("owner/name").
	Slug string

	// RemoteFile is the member extracted from the downloaded archive.
	RemoteFile string
}

// RemoteSettings configures the remote repository client.
type RemoteSettings struct {
	BaseURL         string
	Timeout         time.Duration
	DownloadTimeout time.Duration
}

// CleaningSettings configures the training subset and cleaning rules.
type CleaningSettings struct {
	Region        string
	Operation     string
	DropColumns   []string
	DateColumns   []string
	Placeholder   string
	SurfacePolicy SurfacePolicy
}

// ServingSettings configures prediction serving.
type ServingSettings struct {
	Addr         string
	PriceCeiling float64
}

// LogSettings configures logging.
type LogSettings struct {
	Format LogFormat
	File   string
}

// Settings groups every configurable aspect of the pipeline.
type Settings struct {
	Paths     PathSettings
	Dataset   DatasetSettings
	Remote    RemoteSettings
	Cleaning  CleaningSettings
	Training  Hyperparameters
	Serving   ServingSettings
	Scheduler SchedulerConfig
	Log       LogSettings
}

// Naming returns the raw file naming derived from the settings.
func (s Settings) Naming() DatasetNaming {
	return DatasetNaming{Dir: s.Paths.RawDir, Base: s.Dataset.Base, Ext: "csv"}
}

// DefaultSettings returns the production defaults rooted at dataDir.
func DefaultSettings(dataDir string) Settings {
	return Settings{
		Paths: PathSettings{
			DataDir:      dataDir,
			RawDir:       filepath.Join(dataDir, "artifacts", "RAW"),
			AnalyticalDB: filepath.Join(dataDir, "DB", "entrenamiento.duckdb"),
			Parquet:      filepath.Join(dataDir, "artifacts", "parquet", "entrenamiento.parquet"),
			ModelsDir:    filepath.Join(dataDir, "artifacts", "housing_models"),
			MetricsDir:   filepath.Join(dataDir, "metrics"),
		},
		Dataset: DatasetSettings{
			Base:       "entrenamiento",
			Slug:       "alejandroczernikier/properati-argentina-dataset",
			RemoteFile: "entrenamiento.csv",
		},
		Remote: RemoteSettings{
			BaseURL:         "https://www.kaggle.com/api/v1",
			Timeout:         30 * time.Second,
			DownloadTimeout: 30 * time.Minute,
		},
		Cleaning: CleaningSettings{
			Region:        "Capital Federal",
			Operation:     "Venta",
			DropColumns:   []string{"l1", "l2", "l4", "l5", "l6", "ad_type", "title", "description", "id"},
			DateColumns:   []string{ColumnStartDate, ColumnEndDate, ColumnCreatedOn},
			Placeholder:   "9999-12-31",
			SurfacePolicy: SurfacePolicyClamp,
		},
		Training: DefaultHyperparameters(),
		Serving: ServingSettings{
			Addr:         ":8000",
			PriceCeiling: 1e9,
		},
		Scheduler: DefaultSchedulerConfig(),
		Log: LogSettings{
			Format: LogFormatText,
			File:   filepath.Join(dataDir, "logs", "app.log"),
		},
	}
}
