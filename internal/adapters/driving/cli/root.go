// Package cli implements the preciar command line.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preciar/internal/core/ports/driving"
	"github.com/custodia-labs/preciar/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services wired by main.
var (
	ingestionService  driving.IngestionService
	trainingService   driving.TrainingService
	pipelineService   driving.PipelineService
	jobDispatcher     driving.Dispatcher
	predictionService driving.PredictionService
	experimentService driving.ExperimentService
	settingsService   driving.SettingsService
	scheduler         driving.Scheduler
)

// Services groups the driving ports the commands use.
type Services struct {
	Ingestion   driving.IngestionService
	Training    driving.TrainingService
	Pipeline    driving.PipelineService
	Dispatcher  driving.Dispatcher
	Prediction  driving.PredictionService
	Experiments driving.ExperimentService
	Settings    driving.SettingsService
	Scheduler   driving.Scheduler
}

// Configure installs the services used by the commands.
func Configure(s Services) {
	ingestionService = s.Ingestion
	trainingService = s.Training
	pipelineService = s.Pipeline
	jobDispatcher = s.Dispatcher
	predictionService = s.Prediction
	experimentService = s.Experiments
	settingsService = s.Settings
	scheduler = s.Scheduler
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "preciar",
	Short: "Listing price model pipeline",
	Long: `preciar keeps a property listings dataset in sync with its remote
repository, trains two price models on it and serves predictions.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
