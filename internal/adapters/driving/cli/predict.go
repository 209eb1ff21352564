package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/preciar/internal/core/domain"
)

var (
	predictFile   string
	predictSample string
	predictJSON   bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict listing prices with the published model",
	Long: `Predicts prices with the currently published model.

Pass one listing as JSON with --sample, or many listings as a CSV file with
--file. CSV headers use the same names as the JSON fields
(lon, lat, l3, property_type, operation_type, rooms, surface_total, ...).

Examples:
  preciar predict --sample '{"lon":-58.43,"lat":-34.58,"l3":"Palermo","property_type":"Departamento","operation_type":"Venta","rooms":3}'
  preciar predict --file listings.csv --json`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictFile, "file", "f", "", "CSV file of listings")
	predictCmd.Flags().StringVarP(&predictSample, "sample", "s", "", "single listing as JSON")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "output predictions as JSON")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, _ []string) error {
	if predictionService == nil {
		return errors.New("prediction service not configured")
	}

	samples, err := readSamples()
	if err != nil {
		return err
	}

	preds, err := predictionService.PredictBatch(cmd.Context(), samples)
	if err != nil {
		return fmt.Errorf("predicting: %w", err)
	}

	if predictJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(preds)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("#")+"\tL3\tTYPE\tPRICE")
	for i, p := range preds {
		fmt.Fprintf(w, "%d\t%s\t%s\t%.0f %s\n", i+1, samples[i].L3, samples[i].PropertyType, p.PredictedPrice, p.Currency)
	}
	return w.Flush()
}

func readSamples() ([]domain.Sample, error) {
	switch {
	case predictFile != "" && predictSample != "":
		return nil, errors.New("use either --file or --sample, not both")
	case predictFile != "":
		data, err := os.ReadFile(predictFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", predictFile, err)
		}
		var samples []domain.Sample
		if err := csvutil.Unmarshal(data, &samples); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", predictFile, err)
		}
		return samples, nil
	case predictSample != "":
		var sample domain.Sample
		if err := json.Unmarshal([]byte(predictSample), &sample); err != nil {
			return nil, fmt.Errorf("parsing --sample: %w", err)
		}
		return []domain.Sample{sample}, nil
	default:
		return nil, errors.New("one of --file or --sample is required")
	}
}
