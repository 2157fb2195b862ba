// Package eda computes the exploratory summary of a transaction table:
// class balance, per-class amount distribution and fraud rate by hour.
package eda

import (
	"errors"
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"fraudlab/internal/dataset"
	"fraudlab/internal/features"
)

// DefaultBins matches the amount histogram resolution of the reports.
const DefaultBins = 60

// AmountStats describes one class' transaction amounts.
type AmountStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// Histogram shares its dividers between the two classes so the bars line up.
// Dividers has one more entry than each count slice.
type Histogram struct {
	Dividers []float64 `json:"dividers"`
	Legit    []float64 `json:"legit"`
	Fraud    []float64 `json:"fraud"`
}

// HourRate is the share of fraud among transactions in one hour of day.
type HourRate struct {
	Hour  int     `json:"hour"`
	Count int     `json:"count"`
	Rate  float64 `json:"rate"`
}

// Summary is the result of Analyze.
type Summary struct {
	Rows        int             `json:"rows"`
	Columns     int             `json:"columns"`
	Balance     dataset.Balance `json:"balance"`
	LegitAmount *AmountStats    `json:"legit_amount,omitempty"`
	FraudAmount *AmountStats    `json:"fraud_amount,omitempty"`
	Amounts     *Histogram      `json:"amounts,omitempty"`
	ByHour      []HourRate      `json:"by_hour,omitempty"`
}

// Analyze summarizes ds. Amount sections are skipped when the Amount column
// is absent and the hourly section when Time is absent.
func Analyze(ds *dataset.Dataset, bins int) (Summary, error) {
	if ds.Len() == 0 {
		return Summary{}, errors.New("dataset is empty")
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	s := Summary{
		Rows:    ds.Len(),
		Columns: len(ds.Columns) + 1,
		Balance: dataset.ClassBalance(ds.Labels),
	}

	if amounts, ok := ds.Column(features.ColAmount); ok {
		legit, fraud := splitByClass(amounts, ds.Labels)
		if dropped := len(amounts) - len(legit) - len(fraud); dropped > 0 {
			log.Warn().Int("rows", dropped).Str("column", features.ColAmount).
				Msg("Skipping non-finite values")
		}
		s.LegitAmount = describe(legit)
		s.FraudAmount = describe(fraud)
		s.Amounts = histogram(legit, fraud, bins)
	}

	if times, ok := ds.Column(features.ColTime); ok {
		s.ByHour = fraudRateByHour(times, ds.Labels)
	}

	return s, nil
}

func splitByClass(values []float64, labels []int) (legit, fraud []float64) {
	for i, v := range values {
		if labels[i] == 1 {
			fraud = append(fraud, v)
		} else {
			legit = append(legit, v)
		}
	}
	sort.Float64s(legit)
	sort.Float64s(fraud)
	return finite(legit), finite(fraud)
}

// finite trims NaN and infinities off a sorted slice. sort.Float64s puts NaN
// first, so they all sit at the ends.
func finite(sorted []float64) []float64 {
	lo, hi := 0, len(sorted)
	for lo < hi && (math.IsNaN(sorted[lo]) || math.IsInf(sorted[lo], -1)) {
		lo++
	}
	for hi > lo && math.IsInf(sorted[hi-1], 1) {
		hi--
	}
	return sorted[lo:hi]
}

// describe expects sorted input.
func describe(x []float64) *AmountStats {
	if len(x) == 0 {
		return &AmountStats{}
	}
	mean, std := stat.MeanStdDev(x, nil)
	if len(x) == 1 {
		std = 0
	}
	return &AmountStats{
		Count:  len(x),
		Mean:   mean,
		StdDev: std,
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		Max:    x[len(x)-1],
	}
}

func histogram(legit, fraud []float64, bins int) *Histogram {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range [][]float64{legit, fraud} {
		if len(x) == 0 {
			continue
		}
		lo = math.Min(lo, x[0])
		hi = math.Max(hi, x[len(x)-1])
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if hi == lo {
		hi = lo + 1
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// the top divider is exclusive, so nudge it above the maximum
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	return &Histogram{
		Dividers: dividers,
		Legit:    counts(legit, dividers),
		Fraud:    counts(fraud, dividers),
	}
}

func counts(sorted, dividers []float64) []float64 {
	if len(sorted) == 0 {
		return make([]float64, len(dividers)-1)
	}
	return stat.Histogram(nil, dividers, sorted, nil)
}

func fraudRateByHour(times []float64, labels []int) []HourRate {
	var total, fraud [24]int
	for i, t := range times {
		h := int(features.Hour(t))
		if h < 0 || h > 23 {
			continue
		}
		total[h]++
		fraud[h] += labels[i]
	}

	var out []HourRate
	for h := 0; h < 24; h++ {
		if total[h] == 0 {
			continue
		}
		out = append(out, HourRate{
			Hour:  h,
			Count: total[h],
			Rate:  float64(fraud[h]) / float64(total[h]),
		})
	}
	return out
}
