package evaluation

import (
	"fmt"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"fraudlab/internal/threshold"
)

// ROCCurve holds paired rates ordered by descending threshold, starting at
// (0, 0) and ending at (1, 1).
type ROCCurve struct {
	FPR        []float64
	TPR        []float64
	Thresholds []float64
}

// ROC computes the receiver operating characteristic of probs against labels.
func ROC(labels []int, probs []float64) (ROCCurve, error) {
	if err := bothClasses(labels, probs); err != nil {
		return ROCCurve{}, err
	}

	y := make([]float64, len(probs))
	copy(y, probs)
	classes := make([]bool, len(labels))
	for i, l := range labels {
		classes[i] = l == 1
	}
	stat.SortWeightedLabeled(y, classes, nil)

	tpr, fpr, thresh := stat.ROC(nil, y, classes, nil)
	return ROCCurve{FPR: fpr, TPR: tpr, Thresholds: thresh}, nil
}

// ROCAUC is the trapezoidal area under the ROC curve.
func ROCAUC(labels []int, probs []float64) (float64, error) {
	c, err := ROC(labels, probs)
	if err != nil {
		return 0, err
	}
	return integrate.Trapezoidal(c.FPR, c.TPR), nil
}

// PRAUC is the trapezoidal area under the precision-recall curve, with the
// boundary point counted as fully precise.
func PRAUC(labels []int, probs []float64) (float64, error) {
	if err := bothClasses(labels, probs); err != nil {
		return 0, err
	}
	c, err := threshold.Selector{ZeroDivision: 1}.Curve(labels, probs)
	if err != nil {
		return 0, err
	}
	return integrate.Trapezoidal(c.Recall, c.Precision), nil
}

func bothClasses(labels []int, probs []float64) error {
	if len(labels) != len(probs) {
		return fmt.Errorf("%w: %d labels but %d probabilities", threshold.ErrInvalidInput, len(labels), len(probs))
	}
	pos, neg := 0, 0
	for i, l := range labels {
		switch l {
		case 1:
			pos++
		case 0:
			neg++
		default:
			return fmt.Errorf("%w: label %d at position %d is not 0 or 1", threshold.ErrInvalidInput, l, i)
		}
	}
	if pos == 0 || neg == 0 {
		return fmt.Errorf("%w: need both classes, got %d fraud and %d legit", ErrUndefined, pos, neg)
	}
	return nil
}
