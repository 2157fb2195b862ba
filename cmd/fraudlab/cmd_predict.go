package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fraudlab/internal/pipeline"
	"fraudlab/internal/report"
)

// predictCmd represents the predict command
var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Score the test split, pick the threshold and export predictions",
	Long: `Score the test split, choose the threshold with the highest recall whose
precision meets --min-precision (or the most precise point when none does),
then export predictions.csv, top_100_high_risk.csv, summaries and figures.

Examples:
  fraudlab predict
  fraudlab predict --min-precision 0.95
  fraudlab predict --scores data/scores.csv
  fraudlab predict --fallback`,
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	addScoringFlags(predictCmd, "")
}

func runPredict(cmd *cobra.Command, args []string) error {
	scorer, err := buildScorer(settings, runMetrics)
	if err != nil {
		return fmt.Errorf("failed to set up scorer: %w", err)
	}

	results, err := pipeline.Predict(cmd.Context(), pipelineParams(), scorer)
	if err != nil {
		return fmt.Errorf("predict failed: %w", err)
	}

	report.NewReporter(results, settings.ReportsDir).PrintSummary(cmd.OutOrStdout())
	return nil
}
