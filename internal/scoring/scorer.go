// Package scoring obtains fraud probabilities from external models.
//
// Training and inference run outside this process. A Scorer hands the model a
// Job (training split, test matrix, estimator parameters) and receives one
// probability per test row. Implementations talk to a subprocess, an HTTP
// model service or a precomputed scores file; a deterministic heuristic is
// available as a fallback when no model can be reached.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"math"

	"fraudlab/internal/dataset"
)

// ErrInvalidScores is returned when a model answers with the wrong number of
// probabilities or with values outside [0, 1].
var ErrInvalidScores = errors.New("invalid scores")

// Supported model names.
const (
	ModelXGBoost  = "xgboost"
	ModelLogistic = "logistic"
)

// Scorer produces P(fraud) for every row of Job.TestX, in order.
type Scorer interface {
	Name() string
	Score(ctx context.Context, job Job) ([]float64, error)
}

// MetricsInterface defines metrics methods needed by the scorers
type MetricsInterface interface {
	ScoringRequestsInc()
	ScoringFailuresInc()
	ScoringLatencyObserve(float64)
	ScoringTimeoutsInc()
	ScoringFallbackInc()
	ScoreObserve(float64)
}

// Job is the request sent to an external model.
type Job struct {
	Model   string         `json:"model"`
	Columns []string       `json:"columns"`
	TrainX  [][]float64    `json:"train_x"`
	TrainY  []int          `json:"train_y"`
	TestX   [][]float64    `json:"test_x"`
	Seed    int64          `json:"seed"`
	Params  map[string]any `json:"params"`
}

// Response is the reply of an external model.
type Response struct {
	Probabilities []float64 `json:"probabilities"`
	Error         string    `json:"error,omitempty"`
}

// NewJob builds the request for model from a train/test split.
func NewJob(model string, train, test *dataset.Dataset, seed int64) (Job, error) {
	params, err := Params(model, dataset.ScalePosWeight(train.Labels), seed)
	if err != nil {
		return Job{}, err
	}
	return Job{
		Model:   model,
		Columns: append([]string(nil), train.Columns...),
		TrainX:  train.Rows,
		TrainY:  train.Labels,
		TestX:   test.Rows,
		Seed:    seed,
		Params:  params,
	}, nil
}

// Params returns the estimator settings for model. Class imbalance is handled
// with scale_pos_weight for xgboost and SMOTE oversampling for logistic.
func Params(model string, scalePosWeight float64, seed int64) (map[string]any, error) {
	switch model {
	case ModelXGBoost:
		return map[string]any{
			"n_estimators":     350,
			"max_depth":        4,
			"learning_rate":    0.08,
			"subsample":        0.9,
			"colsample_bytree": 0.9,
			"reg_lambda":       1.0,
			"eval_metric":      "auc",
			"scale_pos_weight": scalePosWeight,
			"random_state":     seed,
		}, nil
	case ModelLogistic:
		return map[string]any{
			"max_iter":     2000,
			"smote":        true,
			"random_state": seed,
		}, nil
	default:
		return nil, fmt.Errorf("unknown model %q", model)
	}
}

// Validate checks that probs holds n probabilities in [0, 1].
func Validate(probs []float64, n int) error {
	if len(probs) != n {
		return fmt.Errorf("%w: expected %d probabilities, got %d", ErrInvalidScores, n, len(probs))
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: probability %d is %v", ErrInvalidScores, i, p)
		}
	}
	return nil
}

func observeScores(m MetricsInterface, probs []float64) {
	if m == nil {
		return
	}
	for _, p := range probs {
		m.ScoreObserve(p)
	}
}
