// Package pipeline runs the fraudlab stages end to end: exploration, feature
// engineering, the baseline model and the thresholded prediction export.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/rs/zerolog/log"

	"fraudlab/internal/dataset"
	"fraudlab/internal/eda"
	"fraudlab/internal/evaluation"
	"fraudlab/internal/metrics"
	"fraudlab/internal/report"
	"fraudlab/internal/scoring"
	"fraudlab/internal/storage"
	"fraudlab/internal/threshold"
)

// Default locations, relative to the working directory.
const (
	DefaultRawPath       = "data/raw/creditcard.csv"
	DefaultProcessedPath = "data/processed/cc_processed.csv"
	DefaultReportsDir    = "reports"
	DefaultFiguresDir    = "reports/figures"

	DefaultMinPrecision = 0.90

	// BaselineThreshold is the fixed cut of the baseline report.
	BaselineThreshold = 0.5
)

// Params is everything a stage needs. Nothing is read from the environment.
type Params struct {
	RawPath       string
	ProcessedPath string
	ReportsDir    string
	FiguresDir    string
	Target        string

	Seed         int64
	TestSize     float64
	MinPrecision float64
	Model        string
	Bins         int

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// DefaultParams returns the parameters of a standard run.
func DefaultParams() Params {
	return Params{
		RawPath:       DefaultRawPath,
		ProcessedPath: DefaultProcessedPath,
		ReportsDir:    DefaultReportsDir,
		FiguresDir:    DefaultFiguresDir,
		Target:        dataset.DefaultTarget,
		Seed:          dataset.DefaultSeed,
		TestSize:      dataset.DefaultTestSize,
		MinPrecision:  DefaultMinPrecision,
		Model:         scoring.ModelXGBoost,
	}
}

func (p Params) target() string {
	if p.Target == "" {
		return dataset.DefaultTarget
	}
	return p.Target
}

func (p Params) observe(stage string, start time.Time) {
	if p.Metrics != nil {
		p.Metrics.ObserveStage(stage, start)
	}
}

func (p Params) fail() {
	if p.Metrics != nil {
		p.Metrics.ErrorsTotal.Inc()
	}
}

// load reads a stage input. A missing file names what produces it.
func load(path, target, hint string) (*dataset.Dataset, error) {
	ds, err := dataset.LoadCSV(path, target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w (%s)", err, hint)
		}
		return nil, err
	}
	return ds, nil
}

// ModelTitle is the display name of a model in figure titles.
func ModelTitle(model string) string {
	switch model {
	case scoring.ModelXGBoost:
		return "XGBoost"
	case scoring.ModelLogistic:
		return "Logistic Regression"
	default:
		return model
	}
}

// scored is a test split with its model probabilities.
type scored struct {
	train  *dataset.Dataset
	test   *dataset.Dataset
	probs  []float64
	scorer string
	drift  []eda.DriftAlert
}

func score(ctx context.Context, p Params, scorer scoring.Scorer) (*scored, error) {
	ds, err := load(p.ProcessedPath, p.target(), "run `fraudlab features` first")
	if err != nil {
		return nil, err
	}

	train, test, err := dataset.StratifiedSplit(ds, p.TestSize, p.Seed)
	if err != nil {
		return nil, err
	}
	if p.Metrics != nil {
		p.Metrics.SetRows("train", train.Len())
		p.Metrics.SetRows("test", test.Len())
	}

	drift, err := eda.SplitDrift(train, test, eda.DriftConfig{})
	if err != nil {
		return nil, err
	}
	for _, a := range drift {
		log.Warn().
			Str("feature", a.Feature).
			Str("method", string(a.Method)).
			Float64("score", a.Score).
			Float64("threshold", a.Threshold).
			Str("severity", a.Severity).
			Msg("Train and test distributions differ")
		if p.Metrics != nil {
			p.Metrics.DriftAlert(string(a.Method), a.Severity)
		}
	}

	job, err := scoring.NewJob(p.Model, train, test, p.Seed)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("model", p.Model).
		Str("scorer", scorer.Name()).
		Int("train", train.Len()).
		Int("test", test.Len()).
		Float64("scale_pos_weight", dataset.ScalePosWeight(train.Labels)).
		Msg("Scoring test split")

	probs, err := scorer.Score(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("scoring with %s failed: %w", scorer.Name(), err)
	}
	if err := scoring.Validate(probs, test.Len()); err != nil {
		return nil, fmt.Errorf("scorer %s: %w", scorer.Name(), err)
	}

	return &scored{train: train, test: test, probs: probs, scorer: scorer.Name(), drift: drift}, nil
}

// aucs returns ROC-AUC and PR-AUC. Both are reported as 0 when the test split
// holds a single class.
func aucs(labels []int, probs []float64) (roc, pr float64, err error) {
	roc, err = evaluation.ROCAUC(labels, probs)
	if errors.Is(err, evaluation.ErrUndefined) {
		log.Warn().Msg("Test split holds a single class, AUC undefined")
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	pr, err = evaluation.PRAUC(labels, probs)
	return roc, pr, err
}

// SelectFile picks an operating point from an exported predictions file.
func SelectFile(path string, minPrecision float64) (threshold.OperatingPoint, error) {
	ds, err := load(path, report.TrueClassColumn, "run `fraudlab predict` first")
	if err != nil {
		return threshold.OperatingPoint{}, err
	}
	probs, ok := ds.Column(report.ProbaColumn)
	if !ok {
		return threshold.OperatingPoint{}, fmt.Errorf("%w: %s in %s", dataset.ErrMissingColumn, report.ProbaColumn, path)
	}
	return threshold.Select(ds.Labels, probs, minPrecision)
}

// PrintOperatingPoint writes op in the console summary format.
func PrintOperatingPoint(w io.Writer, op threshold.OperatingPoint, minPrecision float64) {
	status := "met"
	if !op.ConstraintMet {
		status = "not met (picked best available)"
	}
	fmt.Fprintf(w, "Threshold selected : %.4f | Precision: %.4f | Recall: %.4f -> target %.2f %s\n",
		op.Threshold, op.Precision, op.Recall, minPrecision, status)
}

func record(p Params, rec storage.RunRecord) (storage.RunRecord, error) {
	return storage.Record(p.ReportsDir, rec)
}
