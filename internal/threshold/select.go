package threshold

import (
	"fmt"
	"math"
)

// DefaultFallbackThreshold is returned when the chosen point is the curve boundary.
const DefaultFallbackThreshold = 0.5

// OperatingPoint is the threshold chosen for deployment and reporting.
type OperatingPoint struct {
	Threshold     float64 `json:"threshold"`
	Precision     float64 `json:"precision"`
	Recall        float64 `json:"recall"`
	ConstraintMet bool    `json:"constraint_met"`
	Index         int     `json:"curve_index"`
}

// Selector holds the curve conventions used by Select.
//
// ZeroDivision is the precision reported where nothing is flagged; 0 by default,
// 1 reproduces the convention of reporting the boundary point as fully precise.
// A zero FallbackThreshold means DefaultFallbackThreshold.
type Selector struct {
	ZeroDivision      float64
	FallbackThreshold float64
}

// Select runs the default Selector.
func Select(labels []int, probs []float64, minPrecision float64) (OperatingPoint, error) {
	return Selector{}.Select(labels, probs, minPrecision)
}

// Curve builds the precision-recall curve under the selector's conventions.
func (s Selector) Curve(labels []int, probs []float64) (Curve, error) {
	if math.IsNaN(s.ZeroDivision) || s.ZeroDivision < 0 || s.ZeroDivision > 1 {
		return Curve{}, fmt.Errorf("%w: zero-division precision %v outside [0, 1]", ErrInvalidInput, s.ZeroDivision)
	}
	return buildCurve(labels, probs, s.ZeroDivision)
}

// Select returns the operating point with maximum recall among curve points whose
// precision is at least minPrecision. When no point qualifies it returns the point
// of highest precision with ConstraintMet false.
func (s Selector) Select(labels []int, probs []float64, minPrecision float64) (OperatingPoint, error) {
	if err := checkFloor(minPrecision); err != nil {
		return OperatingPoint{}, err
	}
	c, err := s.Curve(labels, probs)
	if err != nil {
		return OperatingPoint{}, err
	}
	return s.SelectFromCurve(c, minPrecision)
}

// SelectFromCurve applies the selection rule to a curve that was already built.
func (s Selector) SelectFromCurve(c Curve, minPrecision float64) (OperatingPoint, error) {
	if err := checkFloor(minPrecision); err != nil {
		return OperatingPoint{}, err
	}
	if c.Len() == 0 || len(c.Recall) != c.Len() || len(c.Thresholds) != c.Len()-1 {
		return OperatingPoint{}, fmt.Errorf("%w: malformed curve with %d precision, %d recall and %d threshold values",
			ErrInvalidInput, len(c.Precision), len(c.Recall), len(c.Thresholds))
	}

	i, met := feasibleMaxRecall(c, minPrecision)
	if !met {
		i = argmax(c.Precision)
	}

	t, err := ThresholdAt(c.Thresholds, i, s.fallback())
	if err != nil {
		return OperatingPoint{}, err
	}

	return OperatingPoint{
		Threshold:     t,
		Precision:     c.Precision[i],
		Recall:        c.Recall[i],
		ConstraintMet: met,
		Index:         i,
	}, nil
}

func (s Selector) fallback() float64 {
	if s.FallbackThreshold == 0 {
		return DefaultFallbackThreshold
	}
	return s.FallbackThreshold
}

// feasibleMaxRecall scans from the high-recall end so that equal recall
// resolves to the larger index.
func feasibleMaxRecall(c Curve, minPrecision float64) (int, bool) {
	best := -1
	for i := c.Len() - 1; i >= 0; i-- {
		if c.Precision[i] < minPrecision {
			continue
		}
		if best < 0 || c.Recall[i] > c.Recall[best] {
			best = i
		}
	}
	return best, best >= 0
}

// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func checkFloor(minPrecision float64) error {
	if math.IsNaN(minPrecision) || minPrecision < 0 || minPrecision > 1 {
		return fmt.Errorf("%w: minimum precision %v outside [0, 1]", ErrInvalidInput, minPrecision)
	}
	return nil
}
