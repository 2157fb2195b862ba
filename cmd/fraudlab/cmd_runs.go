package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fraudlab/internal/storage"
)

var (
	runsModel string
	runsLimit int
	runsSince time.Duration
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded baseline and predict runs, newest first",
	RunE:  runRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().StringVar(&runsModel, "model", "", "Only show runs of this model")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum number of runs to show (0 for all)")
	runsCmd.Flags().DurationVar(&runsSince, "since", 0, "Only show runs created within this window, e.g. 24h")
}

func runRuns(cmd *cobra.Command, args []string) error {
	store, err := storage.Open(settings.ReportsDir)
	if err != nil {
		return err
	}

	runs := listRuns(store, time.Now().UTC())

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tKIND\tMODEL\tCREATED\tTHRESHOLD\tPRECISION\tRECALL\tTARGET\tROC-AUC\tPR-AUC")
	for _, r := range runs {
		target := "-"
		if r.Kind == storage.KindPredict {
			target = "not met"
			if r.ConstraintMet {
				target = "met"
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4f\t%.4f\t%.4f\t%s\t%.4f\t%.4f\n",
			shortID(r.RunID), r.Kind, r.Model, r.CreatedAt.Format("2006-01-02 15:04"),
			r.Threshold, r.Precision, r.Recall, target, r.ROCAUC, r.PRAUC)
	}
	return w.Flush()
}

// listRuns applies the --model, --limit and --since filters, newest first.
func listRuns(store *storage.Store, now time.Time) []storage.RunRecord {
	if runsSince <= 0 {
		return store.List(runsModel, runsLimit)
	}

	window := store.Between(now.Add(-runsSince), now)
	var runs []storage.RunRecord
	for i := len(window) - 1; i >= 0; i-- {
		if runsLimit > 0 && len(runs) == runsLimit {
			break
		}
		if runsModel != "" && window[i].Model != runsModel {
			continue
		}
		runs = append(runs, window[i])
	}
	return runs
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
