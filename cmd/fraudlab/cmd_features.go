package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fraudlab/internal/pipeline"
)

// featuresCmd represents the features command
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Derive hour, is_night and log_amount into the processed CSV",
	RunE:  runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	added, err := pipeline.Features(cmd.Context(), pipelineParams())
	if err != nil {
		return fmt.Errorf("feature engineering failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added columns: %s\nSaved: %s\n", strings.Join(added, ", "), settings.ProcessedPath)
	return nil
}
