package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fraudlab/internal/pipeline"
	"fraudlab/internal/report"
)

var (
	selectPredictions string
	selectJSON        bool
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Re-pick the operating threshold from an exported predictions file",
	Long: `Read true_class and proba_fraud from a predictions CSV and print the
operating point for --min-precision without rescoring.

Examples:
  fraudlab select --min-precision 0.95
  fraudlab select --predictions reports/predictions.csv --json`,
	RunE: runSelect,
}

func init() {
	rootCmd.AddCommand(selectCmd)

	selectCmd.Flags().StringVar(&selectPredictions, "predictions", "", "Predictions CSV (default <reports>/predictions.csv)")
	selectCmd.Flags().BoolVar(&selectJSON, "json", false, "Print the operating point as JSON")
}

func runSelect(cmd *cobra.Command, args []string) error {
	path := selectPredictions
	if path == "" {
		path = filepath.Join(settings.ReportsDir, report.PredictionsFile)
	}

	op, err := pipeline.SelectFile(path, settings.MinPrecision)
	if err != nil {
		return fmt.Errorf("threshold selection failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if selectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(op)
	}
	pipeline.PrintOperatingPoint(out, op, settings.MinPrecision)
	return nil
}
