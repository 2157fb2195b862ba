package scoring

import (
	"context"
	"fmt"
	"math"
)

// HeuristicScorer is a fixed logistic score over the amount and time-of-day
// features. It never trains and is only meant as a fallback.
type HeuristicScorer struct{}

func (HeuristicScorer) Name() string { return "heuristic" }

func (HeuristicScorer) Score(ctx context.Context, job Job) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logAmount, amount, night, hour := -1, -1, -1, -1
	for i, c := range job.Columns {
		switch c {
		case "log_amount":
			logAmount = i
		case "Amount":
			amount = i
		case "is_night":
			night = i
		case "hour":
			hour = i
		}
	}
	if logAmount < 0 && amount < 0 {
		return nil, fmt.Errorf("heuristic scorer needs a log_amount or Amount column")
	}

	probs := make([]float64, len(job.TestX))
	for i, row := range job.TestX {
		var la float64
		if logAmount >= 0 {
			la = row[logAmount]
		} else {
			la = math.Log1p(math.Max(row[amount], 0))
		}
		var n float64
		switch {
		case night >= 0:
			n = row[night]
		case hour >= 0 && row[hour] <= 4:
			n = 1
		}
		probs[i] = sigmoid(score(la, n))
	}
	return probs, nil
}

// score rewards unusually small or large amounts and night activity.
func score(logAmount, night float64) float64 {
	amountWeight := 1.2
	nightWeight := 0.8
	bias := -3.0

	// typical amounts sit around log1p(22)
	deviation := math.Tanh(math.Abs(logAmount-3.1) / 2)

	return bias + amountWeight*deviation + nightWeight*night
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
