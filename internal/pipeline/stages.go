package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"fraudlab/internal/dataset"
	"fraudlab/internal/eda"
	"fraudlab/internal/evaluation"
	"fraudlab/internal/features"
	"fraudlab/internal/plots"
	"fraudlab/internal/report"
	"fraudlab/internal/scoring"
	"fraudlab/internal/storage"
	"fraudlab/internal/threshold"
)

// EDA summarizes the raw dataset and draws the exploration figures.
func EDA(ctx context.Context, p Params) (eda.Summary, []string, error) {
	start := time.Now()
	defer p.observe("eda", start)

	ds, err := load(p.RawPath, p.target(), "download the credit-card dataset to this path")
	if err != nil {
		p.fail()
		return eda.Summary{}, nil, err
	}
	if p.Metrics != nil {
		p.Metrics.SetRows("raw", ds.Len())
	}

	summary, err := eda.Analyze(ds, p.Bins)
	if err != nil {
		p.fail()
		return eda.Summary{}, nil, err
	}

	log.Info().
		Int("rows", summary.Rows).
		Int("columns", summary.Columns).
		Int("legit", summary.Balance.Legit).
		Int("fraud", summary.Balance.Fraud).
		Float64("fraud_pct", summary.Balance.FraudPct).
		Msg("Dataset summary")

	var figures []string
	draw := func(name string, fn func(string) error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(p.FiguresDir, name)
		if err := fn(path); err != nil {
			return err
		}
		figures = append(figures, path)
		return nil
	}

	if err := draw(plots.ClassBalanceFile, func(path string) error {
		return plots.ClassBalance(path, summary.Balance)
	}); err != nil {
		p.fail()
		return summary, figures, err
	}

	if summary.Amounts != nil {
		if err := draw(plots.AmountDistributionFile, func(path string) error {
			return plots.AmountDistribution(path, summary.Amounts)
		}); err != nil {
			p.fail()
			return summary, figures, err
		}
	}

	if len(summary.ByHour) > 0 {
		if err := draw(plots.FraudRateByHourFile, func(path string) error {
			return plots.FraudRateByHour(path, summary.ByHour)
		}); err != nil {
			p.fail()
			return summary, figures, err
		}
	}

	log.Info().Str("dir", p.FiguresDir).Int("figures", len(figures)).Msg("EDA figures saved")
	return summary, figures, nil
}

// PrintEDA writes the summary in console form.
func PrintEDA(w io.Writer, s eda.Summary) {
	fmt.Fprintf(w, "Shape: (%d, %d)\n", s.Rows, s.Columns)
	fmt.Fprintf(w, "\nClass counts:\n0    %d\n1    %d\n", s.Balance.Legit, s.Balance.Fraud)
	fmt.Fprintf(w, "Fraud %%: %.4f\n", s.Balance.FraudPct)
	if s.LegitAmount != nil && s.FraudAmount != nil {
		fmt.Fprintf(w, "\nAmount mean (legit / fraud): %.2f / %.2f\n", s.LegitAmount.Mean, s.FraudAmount.Mean)
		fmt.Fprintf(w, "Amount median (legit / fraud): %.2f / %.2f\n", s.LegitAmount.Median, s.FraudAmount.Median)
	}
}

// Features derives the engineered columns and writes the processed dataset.
func Features(ctx context.Context, p Params) ([]string, error) {
	start := time.Now()
	defer p.observe("features", start)

	ds, err := load(p.RawPath, p.target(), "download the credit-card dataset to this path")
	if err != nil {
		p.fail()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	added, err := features.Derive(ds)
	if err != nil {
		p.fail()
		return nil, err
	}
	if err := dataset.WriteCSV(p.ProcessedPath, ds); err != nil {
		p.fail()
		return nil, err
	}

	log.Info().
		Str("file", p.ProcessedPath).
		Strs("added", added).
		Int("rows", ds.Len()).
		Msg("Processed dataset saved")
	return added, nil
}

// BaselineResult is the fixed-threshold evaluation of one model.
type BaselineResult struct {
	RunID     string                     `json:"run_id"`
	Model     string                     `json:"model"`
	Scorer    string                     `json:"scorer"`
	Threshold float64                    `json:"threshold"`
	ROCAUC    float64                    `json:"roc_auc"`
	PRAUC     float64                    `json:"pr_auc"`
	TestSize  int                        `json:"test_size"`
	Positives int                        `json:"positives"`
	Confusion evaluation.ConfusionMatrix `json:"confusion_matrix"`
	Report    evaluation.ClassReport     `json:"classification_report"`
	Drift     []eda.DriftAlert           `json:"split_drift,omitempty"`
}

// Print writes the baseline in console form.
func (b *BaselineResult) Print(w io.Writer) {
	fmt.Fprintf(w, "ROC-AUC: %.4f\n", b.ROCAUC)
	fmt.Fprintf(w, "PR-AUC : %.4f\n", b.PRAUC)
	fmt.Fprintf(w, "\nClassification report (threshold=%.1f):\n\n%s", b.Threshold, b.Report.String())
}

// Baseline scores the test split and evaluates it at the fixed 0.5 cut.
func Baseline(ctx context.Context, p Params, scorer scoring.Scorer) (*BaselineResult, error) {
	start := time.Now()
	defer p.observe("baseline", start)

	s, err := score(ctx, p, scorer)
	if err != nil {
		p.fail()
		return nil, err
	}

	labels := s.test.Labels
	preds := evaluation.Binarize(s.probs, BaselineThreshold)
	cm, err := evaluation.Confusion(labels, preds)
	if err != nil {
		p.fail()
		return nil, err
	}
	cr, err := evaluation.Report(labels, preds)
	if err != nil {
		p.fail()
		return nil, err
	}
	roc, pr, err := aucs(labels, s.probs)
	if err != nil {
		p.fail()
		return nil, err
	}

	res := &BaselineResult{
		Model:     p.Model,
		Scorer:    s.scorer,
		Threshold: BaselineThreshold,
		ROCAUC:    roc,
		PRAUC:     pr,
		TestSize:  s.test.Len(),
		Positives: cm.TP + cm.FN,
		Confusion: cm,
		Report:    cr,
		Drift:     s.drift,
	}

	rec, err := record(p, storage.RunRecord{
		Kind:      storage.KindBaseline,
		Model:     res.Model,
		Scorer:    res.Scorer,
		Threshold: res.Threshold,
		Precision: cm.Precision(),
		Recall:    cm.Recall(),
		ROCAUC:    roc,
		PRAUC:     pr,
		TestSize:  res.TestSize,
		Positives: res.Positives,
	})
	if err != nil {
		p.fail()
		return nil, err
	}
	res.RunID = rec.RunID

	if p.Metrics != nil {
		p.Metrics.RecordAUC(p.Model, roc, pr)
	}

	log.Info().
		Str("model", res.Model).
		Float64("roc_auc", roc).
		Float64("pr_auc", pr).
		Msg("Baseline evaluated")
	return res, nil
}

// Predict scores the test split, selects the operating threshold for
// MinPrecision and exports predictions, figures and summaries.
func Predict(ctx context.Context, p Params, scorer scoring.Scorer) (*report.Results, error) {
	start := time.Now()
	defer p.observe("predict", start)

	res, err := predict(ctx, p, scorer)
	if err != nil {
		p.fail()
		return nil, err
	}
	return res, nil
}

func predict(ctx context.Context, p Params, scorer scoring.Scorer) (*report.Results, error) {
	s, err := score(ctx, p, scorer)
	if err != nil {
		return nil, err
	}
	labels := s.test.Labels

	curve, err := threshold.NewCurve(labels, s.probs)
	if err != nil {
		return nil, err
	}
	op, err := threshold.Selector{}.SelectFromCurve(curve, p.MinPrecision)
	if err != nil {
		return nil, err
	}
	if !op.ConstraintMet {
		log.Warn().
			Float64("min_precision", p.MinPrecision).
			Float64("precision", op.Precision).
			Msg("Precision target not reachable, using best available precision")
	}

	preds := evaluation.Binarize(s.probs, op.Threshold)
	cm, err := evaluation.Confusion(labels, preds)
	if err != nil {
		return nil, err
	}
	cr, err := evaluation.Report(labels, preds)
	if err != nil {
		return nil, err
	}
	roc, pr, err := aucs(labels, s.probs)
	if err != nil {
		return nil, err
	}

	predictions, err := report.BuildPredictions(s.test, s.probs, op.Threshold)
	if err != nil {
		return nil, err
	}

	results := &report.Results{
		RunID:        storage.NewRunID(),
		Model:        p.Model,
		Scorer:       s.scorer,
		GeneratedAt:  time.Now().UTC(),
		MinPrecision: p.MinPrecision,
		Operating:    op,
		ROCAUC:       roc,
		PRAUC:        pr,
		TestSize:     s.test.Len(),
		Positives:    cm.TP + cm.FN,
		Confusion:    cm,
		Report:       cr,
		Columns:      s.test.Columns,
		Predictions:  predictions,
		Drift:        s.drift,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results.Figures, err = modelFigures(p, labels, s.probs, cm, curve, op, roc, pr)
	if err != nil {
		return nil, err
	}

	if err := report.NewReporter(results, p.ReportsDir).GenerateReport(); err != nil {
		return nil, err
	}

	if _, err := record(p, storage.RunRecord{
		RunID:         results.RunID,
		Kind:          storage.KindPredict,
		Model:         results.Model,
		Scorer:        results.Scorer,
		CreatedAt:     results.GeneratedAt,
		MinPrecision:  p.MinPrecision,
		Threshold:     op.Threshold,
		Precision:     op.Precision,
		Recall:        op.Recall,
		ConstraintMet: op.ConstraintMet,
		ROCAUC:        roc,
		PRAUC:         pr,
		TestSize:      results.TestSize,
		Positives:     results.Positives,
	}); err != nil {
		return nil, err
	}

	if p.Metrics != nil {
		p.Metrics.RecordSelection(p.Model, op.Threshold, op.Precision, op.Recall, op.ConstraintMet)
		p.Metrics.RecordAUC(p.Model, roc, pr)
	}

	log.Info().
		Str("run_id", results.RunID).
		Float64("threshold", op.Threshold).
		Float64("precision", op.Precision).
		Float64("recall", op.Recall).
		Bool("constraint_met", op.ConstraintMet).
		Msg("Operating point selected")
	return results, nil
}

func modelFigures(p Params, labels []int, probs []float64, cm evaluation.ConfusionMatrix,
	curve threshold.Curve, op threshold.OperatingPoint, roc, pr float64) ([]string, error) {
	title := ModelTitle(p.Model)
	var figures []string

	cmPath := filepath.Join(p.FiguresDir, plots.ModelFile(plots.ConfusionPrefix, p.Model))
	if err := plots.ConfusionMatrix(cmPath, "Confusion Matrix - "+title, cm); err != nil {
		return nil, err
	}
	figures = append(figures, cmPath)

	rocCurve, err := evaluation.ROC(labels, probs)
	if err == nil {
		rocPath := filepath.Join(p.FiguresDir, plots.ModelFile(plots.ROCPrefix, p.Model))
		if err := plots.ROC(rocPath, "ROC Curve - "+title, rocCurve, roc); err != nil {
			return nil, err
		}
		figures = append(figures, rocPath)
	} else {
		log.Warn().Err(err).Msg("Skipping ROC figure")
	}

	prPath := filepath.Join(p.FiguresDir, plots.ModelFile(plots.PRPrefix, p.Model))
	if err := plots.PrecisionRecall(prPath, "Precision-Recall - "+title, curve, op, pr); err != nil {
		return nil, err
	}
	figures = append(figures, prPath)

	return figures, nil
}
