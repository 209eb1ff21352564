// Command preciar ingests listing data, trains price models and serves predictions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/preciar/internal/adapters/driven/config/file"
	"github.com/custodia-labs/preciar/internal/adapters/driven/remote/kaggle"
	"github.com/custodia-labs/preciar/internal/adapters/driven/storage/duckdb"
	"github.com/custodia-labs/preciar/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/preciar/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/preciar/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/preciar/internal/adapters/driving/cli"
	"github.com/custodia-labs/preciar/internal/core/domain"
	"github.com/custodia-labs/preciar/internal/core/ports/driven"
	"github.com/custodia-labs/preciar/internal/core/services"
	"github.com/custodia-labs/preciar/internal/logger"
	"github.com/custodia-labs/preciar/internal/ml"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// Environment overrides.
const (
	EnvDataDir   = "PRECIAR_DATA_DIR"
	EnvLogFormat = "LOG_FORMAT"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is fine.
	_ = godotenv.Load()

	dataDir, err := dataDirectory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "preciar: %v\n", err)
		return 1
	}

	configStore, err := file.NewConfigStore(dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "preciar: loading configuration: %v\n", err)
		return 1
	}
	settingsService := services.NewSettingsService(configStore, dataDir)
	settings := settingsService.Settings()

	format := settings.Log.Format
	if f := domain.LogFormat(os.Getenv(EnvLogFormat)); f.IsValid() {
		format = f
	}
	logger.SetFormat(logger.Format(format))
	logger.SetFile(settings.Log.File)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analytical, err := duckdb.NewStore(settings.Paths.AnalyticalDB)
	if err != nil {
		logger.Error("preciar: %v", err)
		return 1
	}

	remote := kaggle.NewClient(kaggle.Config{
		BaseURL:         settings.Remote.BaseURL,
		Dataset:         settings.Dataset.Slug,
		Member:          settings.Dataset.RemoteFile,
		Timeout:         settings.Remote.Timeout,
		DownloadTimeout: settings.Remote.DownloadTimeout,
	}, kaggle.NewCredentialsProvider(kaggle.DefaultCredentialsFile()), nil)

	var (
		experimentStore driven.ExperimentStore
		schedulerStore  driven.SchedulerStore
	)
	metadata, err := sqlite.NewStore(filepath.Join(dataDir, "DB"))
	if err != nil {
		logger.Warn("preciar: metadata database unavailable, history is kept in memory: %v", err)
		experimentStore = memory.NewExperimentStore()
		schedulerStore = memory.NewSchedulerStore()
	} else {
		defer metadata.Close()
		experimentStore = metadata.ExperimentStore()
		schedulerStore = metadata.SchedulerStore()
	}

	artifacts := filesystem.NewArtifactStore(ml.Decode)
	cache := services.NewModelCache(settings.Paths.ArtifactPath(domain.FamilyRandomForest), artifacts)

	ingestion := services.NewIngestionService(settings, remote, analytical)
	training := services.NewTrainingService(
		settings,
		analytical,
		artifacts,
		experimentStore,
		filesystem.NewExporter(settings.Paths.MetricsDir),
		cache,
	)
	pipeline := services.NewPipelineService(ingestion, training)

	dispatcher := services.NewDispatcher(pipeline, services.DefaultQueueSize)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	cli.SetVersion(version)
	cli.Configure(cli.Services{
		Ingestion:   ingestion,
		Training:    training,
		Pipeline:    pipeline,
		Dispatcher:  dispatcher,
		Prediction:  services.NewPredictionService(cache, settings.Serving.PriceCeiling),
		Experiments: services.NewExperimentService(experimentStore),
		Settings:    settingsService,
		Scheduler:   services.NewScheduler(settings.Scheduler, schedulerStore, dispatcher),
	})

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}

// dataDirectory returns $PRECIAR_DATA_DIR or ~/.preciar.
func dataDirectory() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".preciar"), nil
}
