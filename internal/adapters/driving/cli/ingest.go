package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Sync the raw dataset and rebuild the raw table",
	Long: `Resolves the authoritative raw file, downloads a newer version from the
remote repository when credentials are available, and rebuilds the raw table
and columnar snapshot when the data changed.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	res := ingestionService.Ingest(cmd.Context())

	cmd.Printf("Ingestion: %s\n", statusLabel(res.Status))
	cmd.Printf("  %s\n", res.Message)
	if res.ProcessedFile != "" {
		cmd.Printf("  File:    %s\n", res.ProcessedFile)
	}
	cmd.Printf("  Updated: %t\n", res.Updated)

	if !res.OK() {
		return fmt.Errorf("ingestion failed: %s", res.Reason)
	}
	return nil
}
