package scoring

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlab/internal/dataset"
)

func testJob(rows int) Job {
	job := Job{Model: ModelXGBoost, Columns: []string{"Amount", "log_amount", "is_night"}}
	for i := 0; i < rows; i++ {
		amount := float64(i * 50)
		job.TestX = append(job.TestX, []float64{amount, math.Log1p(amount), float64(i % 2)})
	}
	return job
}

func TestParams(t *testing.T) {
	p, err := Params(ModelXGBoost, 577.3, 42)
	require.NoError(t, err)
	assert.Equal(t, 350, p["n_estimators"])
	assert.Equal(t, 4, p["max_depth"])
	assert.Equal(t, 0.08, p["learning_rate"])
	assert.Equal(t, 577.3, p["scale_pos_weight"])
	assert.Equal(t, int64(42), p["random_state"])

	p, err = Params(ModelLogistic, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 2000, p["max_iter"])
	assert.Equal(t, true, p["smote"])

	_, err = Params("forest", 1, 7)
	assert.Error(t, err)
}

func TestNewJob(t *testing.T) {
	train := &dataset.Dataset{
		Target:  dataset.DefaultTarget,
		Columns: []string{"a"},
		Rows:    [][]float64{{1}, {2}, {3}, {4}},
		Labels:  []int{0, 0, 0, 1},
	}
	test := &dataset.Dataset{Target: dataset.DefaultTarget, Columns: []string{"a"}, Rows: [][]float64{{5}}, Labels: []int{1}}

	job, err := NewJob(ModelXGBoost, train, test, 42)
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, job.Columns)
	assert.Equal(t, train.Rows, job.TrainX)
	assert.Equal(t, train.Labels, job.TrainY)
	assert.Equal(t, test.Rows, job.TestX)
	assert.Equal(t, 3.0, job.Params["scale_pos_weight"])
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]float64{0, 0.5, 1}, 3))
	assert.ErrorIs(t, Validate([]float64{0.5}, 2), ErrInvalidScores)
	assert.ErrorIs(t, Validate([]float64{1.01}, 1), ErrInvalidScores)
	assert.ErrorIs(t, Validate([]float64{-0.1}, 1), ErrInvalidScores)
	assert.ErrorIs(t, Validate([]float64{math.NaN()}, 1), ErrInvalidScores)
}

func TestFileScorer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.csv")
	require.NoError(t, os.WriteFile(path, []byte("row,proba_fraud\n0,0.25\n1,0.75\n2,1\n"), 0o644))

	probs, err := NewFileScorer(path, "").Score(context.Background(), testJob(3))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75, 1}, probs)

	_, err = NewFileScorer(path, "").Score(context.Background(), testJob(2))
	assert.ErrorIs(t, err, ErrInvalidScores)

	_, err = NewFileScorer(path, "score").Score(context.Background(), testJob(3))
	assert.Error(t, err)

	_, err = NewFileScorer(filepath.Join(t.TempDir(), "missing.csv"), "").Score(context.Background(), testJob(3))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHeuristicScorer(t *testing.T) {
	job := testJob(6)

	probs, err := HeuristicScorer{}.Score(context.Background(), job)
	require.NoError(t, err)
	require.NoError(t, Validate(probs, 6))

	again, err := HeuristicScorer{}.Score(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, probs, again)

	// same amount, night scores higher
	day := Job{Columns: []string{"log_amount", "is_night"}, TestX: [][]float64{{3, 0}, {3, 1}}}
	p, err := HeuristicScorer{}.Score(context.Background(), day)
	require.NoError(t, err)
	assert.Greater(t, p[1], p[0])
}

func TestHeuristicScorer_RawColumns(t *testing.T) {
	job := Job{Columns: []string{"Amount", "hour"}, TestX: [][]float64{{20, 2}, {20, 14}}}

	p, err := HeuristicScorer{}.Score(context.Background(), job)
	require.NoError(t, err)
	assert.Greater(t, p[0], p[1])

	_, err = HeuristicScorer{}.Score(context.Background(), Job{Columns: []string{"V1"}, TestX: [][]float64{{1}}})
	assert.Error(t, err)
}

func TestWithFallback(t *testing.T) {
	job := testJob(2)
	metrics := &MockMetrics{}

	primary := &StaticScorer{Err: errors.New("model service down")}
	backup := &StaticScorer{Probs: []float64{0.1, 0.2}}

	probs, err := WithFallback(primary, backup, metrics).Score(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, probs)
	assert.Equal(t, 1, primary.Calls)
	assert.Equal(t, 1, backup.Calls)
	_, _, _, fallbacks := metrics.Counts()
	assert.Equal(t, 1, fallbacks)
}

func TestWithFallback_PrimarySucceeds(t *testing.T) {
	primary := &StaticScorer{Probs: []float64{0.9, 0.8}}
	backup := &StaticScorer{Probs: []float64{0.1, 0.2}}

	s := WithFallback(primary, backup, nil)
	probs, err := s.Score(context.Background(), testJob(2))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 0.8}, probs)
	assert.Equal(t, 0, backup.Calls)
	assert.Equal(t, "static", s.Name())
}

func TestWithFallback_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backup := &StaticScorer{Probs: []float64{0.1, 0.2}}
	_, err := WithFallback(&StaticScorer{Err: context.Canceled}, backup, nil).Score(ctx, testJob(2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, backup.Calls)
}
