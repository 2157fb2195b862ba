// Package evaluation scores binary fraud predictions: confusion matrix,
// per-class classification report, ROC curve and areas under the ROC and
// precision-recall curves.
package evaluation

import (
	"errors"
	"fmt"
	"strings"

	"fraudlab/internal/threshold"
)

// ErrUndefined is returned when a metric needs both classes and one is missing.
var ErrUndefined = errors.New("metric undefined")

// Binarize flags every probability at or above t as fraud.
func Binarize(probs []float64, t float64) []int {
	preds := make([]int, len(probs))
	for i, p := range probs {
		if p >= t {
			preds[i] = 1
		}
	}
	return preds
}

// ConfusionMatrix counts outcomes with fraud as the positive class.
type ConfusionMatrix struct {
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TP int `json:"tp"`
}

// Confusion tallies labels against predictions, both in {0, 1}.
func Confusion(labels, preds []int) (ConfusionMatrix, error) {
	if len(labels) != len(preds) {
		return ConfusionMatrix{}, fmt.Errorf("%w: %d labels but %d predictions", threshold.ErrInvalidInput, len(labels), len(preds))
	}
	var cm ConfusionMatrix
	for i := range labels {
		switch {
		case labels[i] == 1 && preds[i] == 1:
			cm.TP++
		case labels[i] == 0 && preds[i] == 1:
			cm.FP++
		case labels[i] == 1 && preds[i] == 0:
			cm.FN++
		case labels[i] == 0 && preds[i] == 0:
			cm.TN++
		default:
			return ConfusionMatrix{}, fmt.Errorf("%w: non-binary pair (%d, %d) at position %d",
				threshold.ErrInvalidInput, labels[i], preds[i], i)
		}
	}
	return cm, nil
}

// Total returns the number of tallied examples.
func (cm ConfusionMatrix) Total() int { return cm.TN + cm.FP + cm.FN + cm.TP }

// Precision for the fraud class.
func (cm ConfusionMatrix) Precision() float64 { return safeDiv(cm.TP, cm.TP+cm.FP) }

// Recall for the fraud class.
func (cm ConfusionMatrix) Recall() float64 { return safeDiv(cm.TP, cm.TP+cm.FN) }

// Accuracy over both classes.
func (cm ConfusionMatrix) Accuracy() float64 { return safeDiv(cm.TP+cm.TN, cm.Total()) }

// Rows returns the matrix as [[TN, FP], [FN, TP]], true class by row.
func (cm ConfusionMatrix) Rows() [2][2]int {
	return [2][2]int{{cm.TN, cm.FP}, {cm.FN, cm.TP}}
}

// ClassMetrics holds the report line for one class or average.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassReport mirrors the usual per-class classification report.
type ClassReport struct {
	Legit    ClassMetrics `json:"legit"`
	Fraud    ClassMetrics `json:"fraud"`
	Accuracy float64      `json:"accuracy"`
	Macro    ClassMetrics `json:"macro_avg"`
	Weighted ClassMetrics `json:"weighted_avg"`
}

// Report builds a ClassReport. Zero denominators yield 0.
func Report(labels, preds []int) (ClassReport, error) {
	cm, err := Confusion(labels, preds)
	if err != nil {
		return ClassReport{}, err
	}

	fraud := classMetrics(cm.TP, cm.FP, cm.FN)
	legit := classMetrics(cm.TN, cm.FN, cm.FP)
	total := cm.Total()

	r := ClassReport{
		Legit:    legit,
		Fraud:    fraud,
		Accuracy: cm.Accuracy(),
		Macro: ClassMetrics{
			Precision: (legit.Precision + fraud.Precision) / 2,
			Recall:    (legit.Recall + fraud.Recall) / 2,
			F1:        (legit.F1 + fraud.F1) / 2,
			Support:   total,
		},
		Weighted: ClassMetrics{Support: total},
	}
	if total > 0 {
		wl := float64(legit.Support) / float64(total)
		wf := float64(fraud.Support) / float64(total)
		r.Weighted.Precision = wl*legit.Precision + wf*fraud.Precision
		r.Weighted.Recall = wl*legit.Recall + wf*fraud.Recall
		r.Weighted.F1 = wl*legit.F1 + wf*fraud.F1
	}
	return r, nil
}

// String renders the report as a fixed-width table with four decimals.
func (r ClassReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%14s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	line := func(name string, m ClassMetrics) {
		fmt.Fprintf(&b, "%14s %10.4f %10.4f %10.4f %10d\n", name, m.Precision, m.Recall, m.F1, m.Support)
	}
	line("0", r.Legit)
	line("1", r.Fraud)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%14s %10s %10s %10.4f %10d\n", "accuracy", "", "", r.Accuracy, r.Macro.Support)
	line("macro avg", r.Macro)
	line("weighted avg", r.Weighted)
	return b.String()
}

func classMetrics(tp, fp, fn int) ClassMetrics {
	p := safeDiv(tp, tp+fp)
	rc := safeDiv(tp, tp+fn)
	return ClassMetrics{
		Precision: p,
		Recall:    rc,
		F1:        f1(p, rc),
		Support:   tp + fn,
	}
}

func f1(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

func safeDiv(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
