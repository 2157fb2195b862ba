package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlab/internal/dataset"
)

func TestHour(t *testing.T) {
	testCases := []struct {
		name     string
		seconds  float64
		expected float64
	}{
		{"start", 0, 0},
		{"end of first hour", 3599, 0},
		{"second hour", 3600, 1},
		{"last second of day", 86399, 23},
		{"next day wraps", 86400, 0},
		{"second day afternoon", 86400 + 15*3600 + 12, 15},
		{"fractional seconds", 7199.5, 1},
		{"one second before start", -1, 23},
		{"one hour before start", -3600, 23},
		{"just past one hour before", -3601, 22},
		{"whole day before", -86400, 0},
		{"early morning of previous day", -86400 + 2*3600, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Hour(tc.seconds))
		})
	}
}

func TestIsNight_NegativeTime(t *testing.T) {
	assert.Equal(t, 0.0, IsNight(Hour(-1)))
	assert.Equal(t, 1.0, IsNight(Hour(-86400+2*3600)))
}

func TestIsNight(t *testing.T) {
	for h := 0; h < 24; h++ {
		want := 0.0
		if h <= 4 {
			want = 1
		}
		assert.Equal(t, want, IsNight(float64(h)), "hour %d", h)
	}
}

func TestLogAmount(t *testing.T) {
	assert.Equal(t, 0.0, LogAmount(0))
	assert.InDelta(t, math.Log(2), LogAmount(1), 1e-15)
	assert.InDelta(t, 5.0148, LogAmount(149.62), 1e-4)
}

func TestDerive(t *testing.T) {
	ds := &dataset.Dataset{
		Target:  dataset.DefaultTarget,
		Columns: []string{"Time", "V1", "Amount"},
		Rows: [][]float64{
			{0, -1.2, 0},
			{4*3600 + 59, 0.3, 1},
			{5 * 3600, 2.5, 99},
		},
		Labels: []int{0, 1, 0},
	}

	added, err := Derive(ds)
	require.NoError(t, err)

	assert.Equal(t, []string{ColHour, ColIsNight, ColLogAmount}, added)
	assert.Equal(t, []string{"Time", "V1", "Amount", "hour", "is_night", "log_amount"}, ds.Columns)

	hours, _ := ds.Column(ColHour)
	assert.Equal(t, []float64{0, 4, 5}, hours)
	night, _ := ds.Column(ColIsNight)
	assert.Equal(t, []float64{1, 1, 0}, night)
	logs, _ := ds.Column(ColLogAmount)
	assert.InDeltaSlice(t, []float64{0, math.Log(2), math.Log(100)}, logs, 1e-12)

	v1, _ := ds.Column("V1")
	assert.Equal(t, []float64{-1.2, 0.3, 2.5}, v1)
}

func TestDerive_MissingSourceColumns(t *testing.T) {
	ds := &dataset.Dataset{
		Target:  dataset.DefaultTarget,
		Columns: []string{"Amount"},
		Rows:    [][]float64{{10}},
		Labels:  []int{1},
	}

	added, err := Derive(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{ColLogAmount}, added)
	assert.Equal(t, -1, ds.ColumnIndex(ColHour))

	ds = &dataset.Dataset{Target: dataset.DefaultTarget, Columns: []string{"V1"}, Rows: [][]float64{{1}}, Labels: []int{0}}
	added, err = Derive(ds)
	require.NoError(t, err)
	assert.Empty(t, added)
	assert.Equal(t, []string{"V1"}, ds.Columns)
}

func TestDerive_Idempotent(t *testing.T) {
	ds := &dataset.Dataset{
		Target:  dataset.DefaultTarget,
		Columns: []string{"Time", "Amount"},
		Rows:    [][]float64{{7200, 5}},
		Labels:  []int{0},
	}

	_, err := Derive(ds)
	require.NoError(t, err)
	_, err = Derive(ds)
	require.NoError(t, err)

	assert.Len(t, ds.Columns, 5)
	assert.Equal(t, []float64{7200, 5, 2, 0, math.Log1p(5)}, ds.Rows[0])
}
