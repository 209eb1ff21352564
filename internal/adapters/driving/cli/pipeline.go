package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

var pipelineKind string

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run ingestion followed by training",
	Long: `Runs a pipeline job in the foreground. The default kind, ingest-train,
trains only when ingestion succeeded.

Kinds: ingest, train, ingest-train`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	pipelineCmd.Flags().StringVarP(&pipelineKind, "kind", "k", string(domain.JobIngestTrain), "job kind")
	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	if pipelineService == nil {
		return errors.New("pipeline service not configured")
	}

	job, err := pipelineService.Run(cmd.Context(), domain.JobKind(pipelineKind))
	if err != nil {
		return err
	}

	cmd.Printf("Job %s (%s): %s\n", job.ID, job.Kind, job.State)
	if job.Ingest != nil {
		cmd.Printf("  Ingestion: %s %s\n", statusLabel(job.Ingest.Status), job.Ingest.Message)
	}
	if job.Train != nil {
		cmd.Printf("  Training:  %s %s\n", statusLabel(job.Train.Status), job.Train.Message)
		printMetrics(cmd, domain.FamilyRandomForest, job.Train.MetricsRF)
		printMetrics(cmd, domain.FamilyGradientBoosting, job.Train.MetricsGB)
	}

	if job.State != domain.JobSucceeded {
		return fmt.Errorf("pipeline job %s %s", job.ID, job.State)
	}
	return nil
}
