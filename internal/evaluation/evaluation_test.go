package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlab/internal/threshold"
)

func TestBinarize(t *testing.T) {
	got := Binarize([]float64{0.9, 0.5, 0.49, 0.0}, 0.5)
	assert.Equal(t, []int{1, 1, 0, 0}, got)
}

func TestConfusion(t *testing.T) {
	labels := []int{1, 1, 0, 0, 1, 0}
	preds := []int{1, 0, 0, 1, 1, 0}

	cm, err := Confusion(labels, preds)
	require.NoError(t, err)

	assert.Equal(t, ConfusionMatrix{TN: 2, FP: 1, FN: 1, TP: 2}, cm)
	assert.Equal(t, len(labels), cm.Total())
	assert.InDelta(t, 2.0/3.0, cm.Precision(), 1e-12)
	assert.InDelta(t, 2.0/3.0, cm.Recall(), 1e-12)
	assert.InDelta(t, 4.0/6.0, cm.Accuracy(), 1e-12)
	assert.Equal(t, [2][2]int{{2, 1}, {1, 2}}, cm.Rows())
}

func TestConfusion_InvalidInput(t *testing.T) {
	_, err := Confusion([]int{1, 0}, []int{1})
	assert.ErrorIs(t, err, threshold.ErrInvalidInput)

	_, err = Confusion([]int{1, 2}, []int{1, 0})
	assert.ErrorIs(t, err, threshold.ErrInvalidInput)
}

func TestConfusion_NothingFlagged(t *testing.T) {
	cm, err := Confusion([]int{1, 0, 0}, []int{0, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, 0.0, cm.Precision())
	assert.Equal(t, 0.0, cm.Recall())
}

func TestReport(t *testing.T) {
	labels := []int{0, 0, 0, 0, 0, 0, 1, 1, 1, 1}
	preds := []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 0}

	r, err := Report(labels, preds)
	require.NoError(t, err)

	// legit: tp=5 fp=1 fn=1, fraud: tp=3 fp=1 fn=1
	assert.InDelta(t, 5.0/6.0, r.Legit.Precision, 1e-12)
	assert.InDelta(t, 5.0/6.0, r.Legit.Recall, 1e-12)
	assert.Equal(t, 6, r.Legit.Support)
	assert.InDelta(t, 0.75, r.Fraud.Precision, 1e-12)
	assert.InDelta(t, 0.75, r.Fraud.Recall, 1e-12)
	assert.InDelta(t, 0.75, r.Fraud.F1, 1e-12)
	assert.Equal(t, 4, r.Fraud.Support)
	assert.InDelta(t, 0.8, r.Accuracy, 1e-12)
	assert.InDelta(t, (5.0/6.0+0.75)/2, r.Macro.Precision, 1e-12)
	assert.InDelta(t, 0.6*5.0/6.0+0.4*0.75, r.Weighted.Recall, 1e-12)
	assert.Equal(t, 10, r.Weighted.Support)

	text := r.String()
	assert.Contains(t, text, "precision")
	assert.Contains(t, text, "weighted avg")
	assert.Contains(t, text, "0.7500")
	assert.Equal(t, 8, strings.Count(text, "\n"))
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
		probs  []float64
		want   float64
	}{
		{"perfect separation", []int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.3, 0.1}, 1},
		{"reversed ranking", []int{0, 0, 1, 1}, []float64{0.9, 0.8, 0.3, 0.1}, 0},
		{"partial overlap", []int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8}, 0.75},
		{"all tied", []int{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ROCAUC(tt.labels, tt.probs)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestROC_EndPoints(t *testing.T) {
	c, err := ROC([]int{0, 0, 1, 1}, []float64{0.1, 0.4, 0.35, 0.8})
	require.NoError(t, err)

	require.NotEmpty(t, c.FPR)
	assert.Equal(t, len(c.FPR), len(c.TPR))
	assert.Equal(t, 0.0, c.FPR[0])
	assert.Equal(t, 0.0, c.TPR[0])
	assert.Equal(t, 1.0, c.FPR[len(c.FPR)-1])
	assert.Equal(t, 1.0, c.TPR[len(c.TPR)-1])
}

func TestROC_DoesNotReorderInput(t *testing.T) {
	probs := []float64{0.8, 0.1, 0.4}
	_, err := ROC([]int{1, 0, 0}, probs)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.8, 0.1, 0.4}, probs)
}

func TestROCAUC_SingleClass(t *testing.T) {
	_, err := ROCAUC([]int{0, 0, 0}, []float64{0.1, 0.2, 0.3})
	assert.ErrorIs(t, err, ErrUndefined)

	_, err = ROCAUC([]int{1, 1}, []float64{0.1, 0.2})
	assert.ErrorIs(t, err, ErrUndefined)
}

func TestPRAUC(t *testing.T) {
	got, err := PRAUC([]int{1, 1, 0, 0}, []float64{0.9, 0.8, 0.3, 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, got, 1e-12)

	// precision [1 1 0.5 2/3] over recall [0 0.5 0.5 1]
	got, err = PRAUC([]int{1, 0, 1}, []float64{0.9, 0.6, 0.3})
	require.NoError(t, err)
	assert.InDelta(t, 0.5+0.25*(0.5+2.0/3.0), got, 1e-12)

	_, err = PRAUC([]int{0, 0}, []float64{0.1, 0.2})
	assert.ErrorIs(t, err, ErrUndefined)
}
