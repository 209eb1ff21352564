package cli

import (
	"errors"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

var trainProfile bool

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Clean the raw table and train both price models",
	Long: `Cleans the training subset of the raw table, fits the random forest and
gradient boosting pipelines, evaluates them on a held-out split and publishes
the artifacts and manifest.

Use --profile to print column statistics of the cleaned data without training.`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().BoolVar(&trainProfile, "profile", false, "print column statistics instead of training")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	if trainingService == nil {
		return errors.New("training service not configured")
	}

	if trainProfile {
		return runProfile(cmd)
	}

	res := trainingService.Train(cmd.Context())

	cmd.Printf("Training: %s\n", statusLabel(res.Status))
	cmd.Printf("  %s\n", res.Message)
	if res.Experiment != "" {
		cmd.Printf("  Experiment: %s\n", res.Experiment)
	}
	printMetrics(cmd, domain.FamilyRandomForest, res.MetricsRF)
	printMetrics(cmd, domain.FamilyGradientBoosting, res.MetricsGB)

	if !res.OK() {
		return fmt.Errorf("training failed: %s", res.Reason)
	}
	return nil
}

func printMetrics(cmd *cobra.Command, family domain.ModelFamily, m *domain.Metrics) {
	if m == nil {
		return
	}
	cmd.Printf("  %-18s RMSE %.2f  MAE %.2f  R2 %.4f\n", family, m.RMSE, m.MAE, m.R2)
}

func runProfile(cmd *cobra.Command) error {
	profiles, err := trainingService.Profile(cmd.Context())
	if err != nil {
		return fmt.Errorf("profiling: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("COLUMN")+"\tKIND\tNULLS\tUNIQUE\tMIN\tMEDIAN\tMAX")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			p.Name, p.Kind, p.Nulls, p.Distinct, formatStat(p.Min), formatStat(p.Median), formatStat(p.Max))
	}
	return w.Flush()
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return mutedStyle.Render("-")
	}
	return fmt.Sprintf("%.2f", v)
}
