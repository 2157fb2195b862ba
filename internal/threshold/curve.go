// Package threshold picks a decision threshold for a binary fraud classifier.
// It builds the precision-recall curve of a held-out evaluation set and selects
// the operating point with the highest recall that still meets a precision floor.
//
// Curve layout: point 0 is the boundary where nothing is flagged (recall 0) and
// has no threshold of its own. Point i > 0 is the cut probability >= Thresholds[i-1],
// with thresholds sorted descending. A curve with M points therefore carries M-1
// thresholds, and ThresholdAt is the only place that translates between the two.
package threshold

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrInvalidInput is returned for inputs the curve cannot be computed from.
var ErrInvalidInput = errors.New("invalid input")

// Curve is a precision-recall curve ordered by descending threshold.
type Curve struct {
	Precision  []float64
	Recall     []float64
	Thresholds []float64
}

// Len returns the number of (precision, recall) points.
func (c Curve) Len() int { return len(c.Precision) }

// NewCurve builds the curve with precision 0 wherever nothing is flagged.
func NewCurve(labels []int, probs []float64) (Curve, error) {
	return buildCurve(labels, probs, 0)
}

// ThresholdAt maps curve index i to its decision threshold. Index 0 has no
// threshold entry and maps to fallback.
func ThresholdAt(thresholds []float64, i int, fallback float64) (float64, error) {
	if i < 0 || i > len(thresholds) {
		return 0, fmt.Errorf("%w: curve index %d outside [0, %d]", ErrInvalidInput, i, len(thresholds))
	}
	if i == 0 {
		return fallback, nil
	}
	return thresholds[i-1], nil
}

func validate(labels []int, probs []float64) error {
	if len(labels) != len(probs) {
		return fmt.Errorf("%w: %d labels but %d probabilities", ErrInvalidInput, len(labels), len(probs))
	}
	if len(labels) == 0 {
		return fmt.Errorf("%w: empty evaluation set", ErrInvalidInput)
	}
	for i, y := range labels {
		if y != 0 && y != 1 {
			return fmt.Errorf("%w: label %d at position %d is not 0 or 1", ErrInvalidInput, y, i)
		}
	}
	for i, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("%w: probability %v at position %d outside [0, 1]", ErrInvalidInput, p, i)
		}
	}
	return nil
}

func buildCurve(labels []int, probs []float64, zeroDivision float64) (Curve, error) {
	if err := validate(labels, probs); err != nil {
		return Curve{}, err
	}

	order := make([]int, len(probs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return probs[order[a]] > probs[order[b]]
	})

	positives := 0
	for _, y := range labels {
		positives += y
	}

	c := Curve{
		Precision:  []float64{zeroDivision},
		Recall:     []float64{0},
		Thresholds: make([]float64, 0, len(probs)),
	}

	tp, fp := 0, 0
	for k := 0; k < len(order); {
		cut := probs[order[k]]
		for k < len(order) && probs[order[k]] == cut {
			if labels[order[k]] == 1 {
				tp++
			} else {
				fp++
			}
			k++
		}
		c.Thresholds = append(c.Thresholds, cut)
		c.Precision = append(c.Precision, ratio(tp, tp+fp, zeroDivision))
		c.Recall = append(c.Recall, ratio(tp, positives, 0))
	}

	return c, nil
}

func ratio(num, den int, zero float64) float64 {
	if den == 0 {
		return zero
	}
	return float64(num) / float64(den)
}
