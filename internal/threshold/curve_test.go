package threshold

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCurve_SeparableScores(t *testing.T) {
	c, err := NewCurve([]int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.3, 0.1})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.9, 0.8, 0.3, 0.1}, c.Thresholds)
	assert.InDeltaSlice(t, []float64{0, 1, 1, 2.0 / 3.0, 0.5}, c.Precision, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 1, 1}, c.Recall, 1e-12)
	assert.Equal(t, len(c.Thresholds)+1, c.Len())
}

func TestNewCurve_TiedScoresShareOneCut(t *testing.T) {
	c, err := NewCurve([]int{1, 0, 1}, []float64{0.5, 0.5, 0.2})
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 0.2}, c.Thresholds)
	// precision rises again at the lower cut
	assert.InDeltaSlice(t, []float64{0, 0.5, 2.0 / 3.0}, c.Precision, 1e-12)
	assert.InDeltaSlice(t, []float64{0, 0.5, 1}, c.Recall, 1e-12)
}

func TestNewCurve_InputOrderDoesNotMatter(t *testing.T) {
	a, err := NewCurve([]int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.3, 0.1})
	require.NoError(t, err)
	b, err := NewCurve([]int{0, 1, 0, 1}, []float64{0.1, 0.8, 0.3, 0.9})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestNewCurve_SingleClassLabels(t *testing.T) {
	t.Run("no positives", func(t *testing.T) {
		c, err := NewCurve([]int{0, 0}, []float64{0.3, 0.7})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0}, c.Precision)
		assert.Equal(t, []float64{0, 0, 0}, c.Recall)
	})

	t.Run("no negatives", func(t *testing.T) {
		c, err := NewCurve([]int{1, 1}, []float64{0.3, 0.8})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 1}, c.Precision)
		assert.Equal(t, []float64{0, 0.5, 1}, c.Recall)
	})
}

func TestNewCurve_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		probs  []float64
	}{
		{"length mismatch", []int{1, 0, 1}, []float64{0.1, 0.2, 0.3, 0.4}},
		{"empty", []int{}, []float64{}},
		{"nil", nil, nil},
		{"label outside 0/1", []int{1, 2}, []float64{0.1, 0.2}},
		{"probability above 1", []int{1, 0}, []float64{1.5, 0.2}},
		{"negative probability", []int{1, 0}, []float64{0.5, -0.1}},
		{"NaN probability", []int{1, 0}, []float64{math.NaN(), 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCurve(tt.labels, tt.probs)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestThresholdAt(t *testing.T) {
	thresholds := []float64{0.9, 0.8, 0.3}

	tests := []struct {
		name    string
		index   int
		want    float64
		wantErr bool
	}{
		{"boundary point uses fallback", 0, 0.5, false},
		{"first cut", 1, 0.9, false},
		{"middle cut", 2, 0.8, false},
		{"last point", 3, 0.3, false},
		{"past the end", 4, 0, true},
		{"negative", -1, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ThresholdAt(thresholds, tt.index, 0.5)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThresholdAt_EmptyThresholds(t *testing.T) {
	got, err := ThresholdAt(nil, 0, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got)

	_, err = ThresholdAt(nil, 1, 0.5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
