package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Split defaults used by every model run.
const (
	DefaultTestSize = 0.2
	DefaultSeed     = 42
)

// ErrInvalidSplit is returned for an unusable test fraction or a split that
// would leave one side empty.
var ErrInvalidSplit = errors.New("invalid split")

// Balance summarizes the label distribution.
type Balance struct {
	Legit    int     `json:"legit"`
	Fraud    int     `json:"fraud"`
	Total    int     `json:"total"`
	FraudPct float64 `json:"fraud_pct"`
}

// ClassBalance counts labels. FraudPct is rounded to four decimals.
func ClassBalance(labels []int) Balance {
	b := Balance{Total: len(labels)}
	for _, l := range labels {
		if l == 1 {
			b.Fraud++
		} else {
			b.Legit++
		}
	}
	if b.Total > 0 {
		b.FraudPct = math.Round(1e6*float64(b.Fraud)/float64(b.Total)) / 1e4
	}
	return b
}

// ScalePosWeight is the negative to positive ratio used to reweight the
// fraud class, with at least one positive assumed.
func ScalePosWeight(labels []int) float64 {
	b := ClassBalance(labels)
	return float64(b.Legit) / math.Max(float64(b.Fraud), 1)
}

// StratifiedSplit shuffles each class with a seeded source and moves
// round(testSize * count) of it to the test side. Both sides keep the
// original row order.
func StratifiedSplit(d *Dataset, testSize float64, seed int64) (train, test *Dataset, err error) {
	if math.IsNaN(testSize) || testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("%w: test size %v must be in (0, 1)", ErrInvalidSplit, testSize)
	}

	byClass := map[int][]int{}
	for i, l := range d.Labels {
		byClass[l] = append(byClass[l], i)
	}

	rng := rand.New(rand.NewSource(seed))
	var trainIdx, testIdx []int
	for _, class := range []int{0, 1} {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		n := int(math.Round(testSize * float64(len(idx))))
		testIdx = append(testIdx, idx[:n]...)
		trainIdx = append(trainIdx, idx[n:]...)
	}
	if len(trainIdx) == 0 || len(testIdx) == 0 {
		return nil, nil, fmt.Errorf("%w: %d rows give %d train and %d test", ErrInvalidSplit, d.Len(), len(trainIdx), len(testIdx))
	}

	sort.Ints(trainIdx)
	sort.Ints(testIdx)
	return d.Subset(trainIdx), d.Subset(testIdx), nil
}
