package eda

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"fraudlab/internal/dataset"
)

// DriftMethod names a distribution comparison.
type DriftMethod string

const (
	KolmogorovSmirnovTest    DriftMethod = "kolmogorov_smirnov"
	PopulationStabilityIndex DriftMethod = "population_stability_index"
)

// DriftAlert flags a feature whose train and test distributions differ.
type DriftAlert struct {
	Feature   string      `json:"feature"`
	Method    DriftMethod `json:"method"`
	Score     float64     `json:"score"`
	Threshold float64     `json:"threshold"`
	Severity  string      `json:"severity"`
}

// DriftConfig configures SplitDrift. Zero fields take the defaults.
type DriftConfig struct {
	Bins         int
	PSIThreshold float64
	// KSCoefficient scales the two-sample critical value
	// c * sqrt((n+m) / (n*m)); 1.95 is the 0.1% level.
	KSCoefficient float64
}

// Default drift settings.
const (
	DefaultDriftBins     = 10
	DefaultPSIThreshold  = 0.2
	DefaultKSCoefficient = 1.95

	psiFloor = 1e-4
)

func (c DriftConfig) withDefaults() DriftConfig {
	if c.Bins <= 0 {
		c.Bins = DefaultDriftBins
	}
	if c.PSIThreshold <= 0 {
		c.PSIThreshold = DefaultPSIThreshold
	}
	if c.KSCoefficient <= 0 {
		c.KSCoefficient = DefaultKSCoefficient
	}
	return c
}

// SplitDrift compares every feature column of train and test and returns
// the alerts, ordered by column then method.
func SplitDrift(train, test *dataset.Dataset, c DriftConfig) ([]DriftAlert, error) {
	if train.Len() == 0 || test.Len() == 0 {
		return nil, fmt.Errorf("drift needs non-empty splits, got %d train and %d test rows", train.Len(), test.Len())
	}
	c = c.withDefaults()

	n, m := float64(train.Len()), float64(test.Len())
	ksThreshold := c.KSCoefficient * math.Sqrt((n+m)/(n*m))

	var alerts []DriftAlert
	for _, col := range train.Columns {
		a, ok := train.Column(col)
		if !ok {
			continue
		}
		b, ok := test.Column(col)
		if !ok {
			return nil, fmt.Errorf("%w: %s missing from test split", dataset.ErrMissingColumn, col)
		}
		sort.Float64s(a)
		sort.Float64s(b)
		fa, fb := finite(a), finite(b)
		if len(fa) < len(a) || len(fb) < len(b) {
			log.Warn().Str("column", col).
				Int("train", len(a)-len(fa)).
				Int("test", len(b)-len(fb)).
				Msg("Skipping non-finite values")
		}
		a, b = fa, fb
		if len(a) == 0 || len(b) == 0 {
			continue
		}

		if ks := stat.KolmogorovSmirnov(a, nil, b, nil); ks > ksThreshold {
			alerts = append(alerts, newAlert(col, KolmogorovSmirnovTest, ks, ksThreshold))
		}
		if psi := PSI(a, b, c.Bins); psi > c.PSIThreshold {
			alerts = append(alerts, newAlert(col, PopulationStabilityIndex, psi, c.PSIThreshold))
		}
	}
	return alerts, nil
}

// PSI is the population stability index of current against baseline over
// shared equal-width bins. Both inputs must be sorted; NaN and infinities
// are ignored. Empty bins count as psiFloor so disjoint ranges still score
// high.
func PSI(baseline, current []float64, bins int) float64 {
	baseline, current = finite(baseline), finite(current)
	if len(baseline) == 0 || len(current) == 0 {
		return 0
	}
	if baseline[0] == baseline[len(baseline)-1] && current[0] == current[len(current)-1] &&
		baseline[0] == current[0] {
		return 0
	}

	// Legit holds the baseline counts and Fraud the current ones.
	h := histogram(baseline, current, bins)
	nb, nc := float64(len(baseline)), float64(len(current))

	psi := 0.0
	for i := range h.Legit {
		pb := math.Max(h.Legit[i]/nb, psiFloor)
		pc := math.Max(h.Fraud[i]/nc, psiFloor)
		psi += (pc - pb) * math.Log(pc/pb)
	}
	return psi
}

func newAlert(feature string, method DriftMethod, score, threshold float64) DriftAlert {
	severity := "medium"
	if score > threshold*2 {
		severity = "high"
	}
	if score > threshold*3 {
		severity = "critical"
	}
	return DriftAlert{
		Feature:   feature,
		Method:    method,
		Score:     score,
		Threshold: threshold,
		Severity:  severity,
	}
}
