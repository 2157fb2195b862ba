package eda

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlab/internal/dataset"
)

func driftSplit(n int, shift float64) *dataset.Dataset {
	ds := &dataset.Dataset{Target: dataset.DefaultTarget, Columns: []string{"stable", "moving", "flat"}}
	for i := 0; i < n; i++ {
		v := float64(i % 100)
		ds.Rows = append(ds.Rows, []float64{v, v + shift, 0})
		ds.Labels = append(ds.Labels, 0)
	}
	return ds
}

func TestSplitDrift(t *testing.T) {
	train := driftSplit(1000, 0)
	test := driftSplit(200, 50)

	alerts, err := SplitDrift(train, test, DriftConfig{})
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	assert.Equal(t, "moving", alerts[0].Feature)
	assert.Equal(t, KolmogorovSmirnovTest, alerts[0].Method)
	assert.InDelta(t, 0.5, alerts[0].Score, 1e-9)
	assert.Equal(t, "critical", alerts[0].Severity)

	assert.Equal(t, "moving", alerts[1].Feature)
	assert.Equal(t, PopulationStabilityIndex, alerts[1].Method)
	assert.Greater(t, alerts[1].Score, DefaultPSIThreshold)
}

func TestSplitDrift_NoShift(t *testing.T) {
	alerts, err := SplitDrift(driftSplit(1000, 0), driftSplit(200, 0), DriftConfig{})
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestSplitDrift_SkipsNonFinite(t *testing.T) {
	train := driftSplit(1000, 0)
	test := driftSplit(200, 0)
	train.Rows[3][0] = math.NaN()
	train.Rows[7][0] = math.Inf(1)
	test.Rows[5][1] = math.Inf(-1)
	for _, row := range test.Rows {
		row[2] = math.NaN()
	}

	require.NotPanics(t, func() {
		alerts, err := SplitDrift(train, test, DriftConfig{})
		require.NoError(t, err)
		assert.Empty(t, alerts)
	})
}

func TestSplitDrift_EmptySplit(t *testing.T) {
	_, err := SplitDrift(driftSplit(10, 0), &dataset.Dataset{}, DriftConfig{})
	assert.Error(t, err)
}

func TestPSI(t *testing.T) {
	same := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.InDelta(t, 0, PSI(same, same, 5), 1e-12)
	assert.Equal(t, 0.0, PSI([]float64{3, 3}, []float64{3, 3, 3}, 10))
	assert.Equal(t, 0.0, PSI(nil, same, 10))

	withNonFinite := append(append([]float64{math.NaN(), math.Inf(-1)}, same...), math.Inf(1))
	assert.InDelta(t, 0, PSI(withNonFinite, same, 5), 1e-12)
	assert.Equal(t, 0.0, PSI([]float64{math.NaN()}, same, 5))

	assert.Greater(t, PSI(same, []float64{20, 21, 22, 23}, 5), 1.0)
}
