package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Components is the number of anonymized V columns in the credit-card data.
const Components = 28

// SyntheticColumns returns Time, V1..V28, Amount.
func SyntheticColumns() []string {
	cols := []string{"Time"}
	for k := 1; k <= Components; k++ {
		cols = append(cols, fmt.Sprintf("V%d", k))
	}
	return append(cols, "Amount")
}

// fraudShift moves a few components for fraudulent rows so models have
// something to find.
var fraudShift = map[int]float64{
	3:  -2.5,
	4:  1.8,
	10: -2.2,
	11: 1.5,
	12: -2.4,
	14: -3.0,
	17: -2.0,
}

// Synthetic generates rows transactions over two days shaped like the
// credit-card dataset: standard normal components, log-normal amounts,
// rare fraud concentrated at night. The same seed gives the same table.
func Synthetic(rows int, fraudRate float64, seed int64) (*Dataset, error) {
	if rows <= 0 {
		return nil, fmt.Errorf("row count must be positive, got %d", rows)
	}
	if math.IsNaN(fraudRate) || fraudRate < 0 || fraudRate > 1 {
		return nil, fmt.Errorf("fraud rate must be in [0, 1], got %v", fraudRate)
	}

	rng := rand.New(rand.NewSource(seed))
	const span = 2 * 86400.0

	type txn struct {
		row   []float64
		label int
	}
	txns := make([]txn, rows)
	for i := range txns {
		fraud := rng.Float64() < fraudRate
		row := make([]float64, Components+2)

		t := rng.Float64() * span
		if fraud && rng.Float64() < 0.5 {
			day := math.Floor(rng.Float64() * 2)
			t = day*86400 + rng.Float64()*5*3600
		}
		row[0] = math.Round(t)

		for k := 1; k <= Components; k++ {
			v := rng.NormFloat64()
			if fraud {
				v += fraudShift[k]
			}
			row[k] = math.Round(v*1e6) / 1e6
		}

		amount := math.Exp(3.5 + 1.2*rng.NormFloat64())
		if fraud {
			if rng.Float64() < 0.6 {
				amount = math.Exp(0.5 + rng.NormFloat64())
			} else {
				amount = math.Exp(5.5 + 0.8*rng.NormFloat64())
			}
		}
		row[Components+1] = math.Round(amount*100) / 100

		txns[i] = txn{row: row}
		if fraud {
			txns[i].label = 1
		}
	}

	sort.SliceStable(txns, func(i, j int) bool { return txns[i].row[0] < txns[j].row[0] })

	ds := &Dataset{
		Target:  DefaultTarget,
		Columns: SyntheticColumns(),
		Rows:    make([][]float64, rows),
		Labels:  make([]int, rows),
	}
	for i, t := range txns {
		ds.Rows[i] = t.row
		ds.Labels[i] = t.label
	}
	return ds, nil
}
