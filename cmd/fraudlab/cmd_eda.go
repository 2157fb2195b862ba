package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fraudlab/internal/pipeline"
)

// edaCmd represents the eda command
var edaCmd = &cobra.Command{
	Use:   "eda",
	Short: "Summarize the raw dataset and draw exploration figures",
	Long: `Print shape, class counts and fraud percentage of the raw dataset and
save the class balance, amount distribution and fraud-rate-by-hour figures.

Examples:
  fraudlab eda
  fraudlab eda --raw data/raw/creditcard.csv --figures reports/figures`,
	RunE: runEDA,
}

func init() {
	rootCmd.AddCommand(edaCmd)
}

func runEDA(cmd *cobra.Command, args []string) error {
	summary, figures, err := pipeline.EDA(cmd.Context(), pipelineParams())
	if err != nil {
		return fmt.Errorf("eda failed: %w", err)
	}

	out := cmd.OutOrStdout()
	pipeline.PrintEDA(out, summary)
	fmt.Fprintf(out, "\nSaved %d figures to: %s\n", len(figures), settings.FiguresDir)
	return nil
}
