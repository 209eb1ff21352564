package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	experimentsLimit int
	experimentsJSON  bool
)

var experimentsCmd = &cobra.Command{
	Use:   "experiments",
	Short: "Inspect recorded training runs",
}

var experimentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent training runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runExperimentsList,
}

func init() {
	experimentsListCmd.Flags().IntVarP(&experimentsLimit, "limit", "n", 20, "maximum number of records")
	experimentsListCmd.Flags().BoolVar(&experimentsJSON, "json", false, "output records as JSON")
	experimentsCmd.AddCommand(experimentsListCmd)
	rootCmd.AddCommand(experimentsCmd)
}

func runExperimentsList(cmd *cobra.Command, _ []string) error {
	if experimentService == nil {
		return errors.New("experiment service not configured")
	}

	records, err := experimentService.List(cmd.Context(), experimentsLimit)
	if err != nil {
		return fmt.Errorf("listing experiments: %w", err)
	}

	if experimentsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		cmd.Println("No experiments recorded yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("EXPERIMENT")+"\tMODEL\tRECORDED\tRMSE\tMAE\tR2")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%.4f\n",
			r.Experiment, r.Model, r.RecordedAt.Local().Format("2006-01-02 15:04"), r.Metrics.RMSE, r.Metrics.MAE, r.Metrics.R2)
	}
	return w.Flush()
}
