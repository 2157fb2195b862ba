// Package report writes the prediction exports and run summaries.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"fraudlab/internal/dataset"
	"fraudlab/internal/eda"
	"fraudlab/internal/evaluation"
	"fraudlab/internal/threshold"
)

// Output file names under the reports directory.
const (
	PredictionsFile = "predictions.csv"
	TopRiskFile     = "top_100_high_risk.csv"
	SummaryTextFile = "summary.txt"
	SummaryJSONFile = "summary.json"

	TopN = 100
)

// Columns appended to the test features in the prediction exports.
const (
	TrueClassColumn = "true_class"
	ProbaColumn     = "proba_fraud"
	PredClassColumn = "pred_class"
)

// Prediction is one scored test row.
type Prediction struct {
	Row        int       `json:"row"`
	Features   []float64 `json:"features"`
	TrueClass  int       `json:"true_class"`
	ProbaFraud float64   `json:"proba_fraud"`
	PredClass  int       `json:"pred_class"`
}

// Results is everything a predict run reports.
type Results struct {
	RunID        string                     `json:"run_id"`
	Model        string                     `json:"model"`
	Scorer       string                     `json:"scorer"`
	GeneratedAt  time.Time                  `json:"generated_at"`
	MinPrecision float64                    `json:"min_precision"`
	Operating    threshold.OperatingPoint   `json:"operating_point"`
	ROCAUC       float64                    `json:"roc_auc"`
	PRAUC        float64                    `json:"pr_auc"`
	TestSize     int                        `json:"test_size"`
	Positives    int                        `json:"positives"`
	Confusion    evaluation.ConfusionMatrix `json:"confusion_matrix"`
	Report       evaluation.ClassReport     `json:"classification_report"`
	Columns      []string                   `json:"columns"`
	Predictions  []Prediction               `json:"-"`
	Figures      []string                   `json:"figures,omitempty"`
	Drift        []eda.DriftAlert           `json:"split_drift,omitempty"`
}

// BuildPredictions pairs test rows with their probabilities and sorts them by
// probability, highest first. Rows with equal probability keep test order.
func BuildPredictions(test *dataset.Dataset, probs []float64, cut float64) ([]Prediction, error) {
	if len(probs) != test.Len() {
		return nil, fmt.Errorf("%w: %d probabilities for %d rows", threshold.ErrInvalidInput, len(probs), test.Len())
	}
	preds := evaluation.Binarize(probs, cut)
	out := make([]Prediction, test.Len())
	for i := range out {
		out[i] = Prediction{
			Row:        i,
			Features:   test.Rows[i],
			TrueClass:  test.Labels[i],
			ProbaFraud: probs[i],
			PredClass:  preds[i],
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProbaFraud > out[j].ProbaFraud })
	return out, nil
}

// Reporter generates run reports
type Reporter struct {
	results    *Results
	outputPath string
}

// NewReporter creates a new reporter
func NewReporter(results *Results, outputPath string) *Reporter {
	return &Reporter{
		results:    results,
		outputPath: outputPath,
	}
}

// GenerateReport writes the prediction exports and both summaries.
func (r *Reporter) GenerateReport() error {
	if err := os.MkdirAll(r.outputPath, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := r.writePredictions(PredictionsFile, r.results.Predictions); err != nil {
		return err
	}

	top := r.results.Predictions
	if len(top) > TopN {
		top = top[:TopN]
	}
	if err := r.writePredictions(TopRiskFile, top); err != nil {
		return err
	}

	if err := r.generateSummary(); err != nil {
		return err
	}

	return r.generateJSONReport()
}

func (r *Reporter) writePredictions(name string, rows []Prediction) error {
	path := filepath.Join(r.outputPath, name)
	if err := writeFile(path, func(w io.Writer) error { return r.encodePredictions(w, rows) }); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	log.Info().Str("file", path).Int("rows", len(rows)).Msg("Predictions exported")
	return nil
}

func (r *Reporter) encodePredictions(w io.Writer, rows []Prediction) error {
	writer := csv.NewWriter(w)

	header := append(append([]string(nil), r.results.Columns...), TrueClassColumn, ProbaColumn, PredClassColumn)
	if err := writer.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	n := len(r.results.Columns)
	for _, p := range rows {
		for j, v := range p.Features {
			record[j] = dataset.FormatFloat(v)
		}
		record[n] = strconv.Itoa(p.TrueClass)
		record[n+1] = strconv.FormatFloat(p.ProbaFraud, 'g', -1, 64)
		record[n+2] = strconv.Itoa(p.PredClass)
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeFile creates path and hands encode a buffered writer. Write, flush and
// close errors are all returned.
func writeFile(path string, encode func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	buf := bufio.NewWriter(file)
	if err := encode(buf); err != nil {
		return err
	}
	return buf.Flush()
}

func (r *Reporter) generateSummary() error {
	summaryPath := filepath.Join(r.outputPath, SummaryTextFile)
	if err := writeFile(summaryPath, r.writeSummary); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	log.Info().Str("file", summaryPath).Msg("Summary report generated")
	return nil
}

// writeSummary renders summary.txt. w is expected to keep the first write
// error, as bufio.Writer does; the caller sees it on Flush.
func (r *Reporter) writeSummary(file io.Writer) error {
	res := r.results
	fmt.Fprintf(file, "PREDICTION EXPORT SUMMARY\n")
	fmt.Fprintf(file, "=========================\n\n")
	fmt.Fprintf(file, "Run: %s\n", res.RunID)
	fmt.Fprintf(file, "Model: %s (%s)\n", res.Model, res.Scorer)
	fmt.Fprintf(file, "Generated: %s\n\n", res.GeneratedAt.Format("2006-01-02 15:04:05"))

	fmt.Fprintf(file, "TEST SPLIT\n")
	fmt.Fprintf(file, "----------\n")
	fmt.Fprintf(file, "Test size: %d\n", res.TestSize)
	fmt.Fprintf(file, "Positives (fraud): %d\n\n", res.Positives)

	fmt.Fprintf(file, "OPERATING POINT\n")
	fmt.Fprintf(file, "---------------\n")
	fmt.Fprintf(file, "Target precision: %.4f (%s)\n", res.MinPrecision, targetStatus(res.Operating.ConstraintMet))
	fmt.Fprintf(file, "Threshold: %.4f\n", res.Operating.Threshold)
	fmt.Fprintf(file, "Precision: %.4f\n", res.Operating.Precision)
	fmt.Fprintf(file, "Recall: %.4f\n\n", res.Operating.Recall)

	fmt.Fprintf(file, "RANKING\n")
	fmt.Fprintf(file, "-------\n")
	fmt.Fprintf(file, "ROC-AUC: %.4f\n", res.ROCAUC)
	fmt.Fprintf(file, "PR-AUC: %.4f\n\n", res.PRAUC)

	cm := res.Confusion
	fmt.Fprintf(file, "CONFUSION MATRIX\n")
	fmt.Fprintf(file, "----------------\n")
	fmt.Fprintf(file, "TN=%d FP=%d\nFN=%d TP=%d\n\n", cm.TN, cm.FP, cm.FN, cm.TP)

	if len(res.Drift) > 0 {
		fmt.Fprintf(file, "SPLIT DRIFT\n")
		fmt.Fprintf(file, "-----------\n")
		for _, a := range res.Drift {
			fmt.Fprintf(file, "%s %s: %.4f > %.4f (%s)\n", a.Feature, a.Method, a.Score, a.Threshold, a.Severity)
		}
		fmt.Fprintln(file)
	}

	fmt.Fprintf(file, "CLASSIFICATION REPORT\n")
	fmt.Fprintf(file, "---------------------\n")
	_, err := fmt.Fprint(file, res.Report.String())
	return err
}

func (r *Reporter) generateJSONReport() error {
	jsonPath := filepath.Join(r.outputPath, SummaryJSONFile)

	data, err := json.MarshalIndent(r.results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	log.Info().Str("file", jsonPath).Msg("JSON report generated")
	return nil
}

// PrintSummary prints a summary to w
func (r *Reporter) PrintSummary(w io.Writer) {
	res := r.results
	fmt.Fprintln(w, "\n=== PREDICTION EXPORT SUMMARY ===")
	fmt.Fprintf(w, "Test size: %d | Positives (fraud): %d\n", res.TestSize, res.Positives)
	fmt.Fprintf(w, "ROC-AUC : %.4f\n", res.ROCAUC)
	fmt.Fprintf(w, "PR-AUC  : %.4f\n", res.PRAUC)
	fmt.Fprintf(w, "Threshold selected : %.4f | Precision: %.4f | Recall: %.4f -> target %s\n",
		res.Operating.Threshold, res.Operating.Precision, res.Operating.Recall,
		targetStatus(res.Operating.ConstraintMet))
	fmt.Fprintf(w, "Saved: %s and %s\n",
		filepath.Join(r.outputPath, PredictionsFile), filepath.Join(r.outputPath, TopRiskFile))
	if len(res.Figures) > 0 {
		fmt.Fprintf(w, "Figures: %v\n", res.Figures)
	}
}

func targetStatus(met bool) string {
	if met {
		return "met"
	}
	return "not met (picked best available)"
}
