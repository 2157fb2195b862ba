package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fraudlab/internal/pipeline"
	"fraudlab/internal/scoring"
)

// baselineCmd represents the baseline command
var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Evaluate a model at the fixed 0.5 threshold",
	Long: `Split the processed dataset, score the test split with the configured
model and print ROC-AUC, PR-AUC and the classification report at threshold 0.5.
The baseline model is logistic regression with SMOTE unless --model says
otherwise.

Examples:
  fraudlab baseline
  fraudlab baseline --model xgboost --scorer http --model-url http://localhost:8000/score
  fraudlab baseline --scorer heuristic`,
	RunE: runBaseline,
}

func init() {
	rootCmd.AddCommand(baselineCmd)
	addScoringFlags(baselineCmd, scoring.ModelLogistic)
}

func runBaseline(cmd *cobra.Command, args []string) error {
	scorer, err := buildScorer(settings, runMetrics)
	if err != nil {
		return fmt.Errorf("failed to set up scorer: %w", err)
	}

	res, err := pipeline.Baseline(cmd.Context(), pipelineParams(), scorer)
	if err != nil {
		return fmt.Errorf("baseline failed: %w", err)
	}

	res.Print(cmd.OutOrStdout())
	return nil
}
