package features

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"fraudlab/internal/dataset"
)

// Source and derived column names.
const (
	ColTime      = "Time"
	ColAmount    = "Amount"
	ColHour      = "hour"
	ColIsNight   = "is_night"
	ColLogAmount = "log_amount"
)

const secondsPerDay = 24 * 3600

// Hour of day for a seconds offset from the first transaction. Negative
// offsets wrap into the previous day.
func Hour(seconds float64) float64 {
	s := math.Mod(seconds, secondsPerDay)
	if s < 0 {
		s += secondsPerDay
	}
	return math.Floor(s / 3600)
}

// IsNight reports 1 for hours 0 through 4.
func IsNight(hour float64) float64 {
	if hour >= 0 && hour <= 4 {
		return 1
	}
	return 0
}

// LogAmount is log(1 + amount).
func LogAmount(amount float64) float64 { return math.Log1p(amount) }

// Derive appends hour and is_night when Time exists and log_amount when
// Amount exists. Every other column is left untouched.
func Derive(ds *dataset.Dataset) ([]string, error) {
	var added []string

	if times, ok := ds.Column(ColTime); ok {
		hours := make([]float64, len(times))
		night := make([]float64, len(times))
		for i, t := range times {
			hours[i] = Hour(t)
			night[i] = IsNight(hours[i])
		}
		if err := ds.AddColumn(ColHour, hours); err != nil {
			return added, fmt.Errorf("failed to add %s: %w", ColHour, err)
		}
		if err := ds.AddColumn(ColIsNight, night); err != nil {
			return added, fmt.Errorf("failed to add %s: %w", ColIsNight, err)
		}
		added = append(added, ColHour, ColIsNight)
	} else {
		log.Warn().Str("column", ColTime).Msg("Column missing, skipping time features")
	}

	if amounts, ok := ds.Column(ColAmount); ok {
		logs := make([]float64, len(amounts))
		for i, a := range amounts {
			logs[i] = LogAmount(a)
		}
		if err := ds.AddColumn(ColLogAmount, logs); err != nil {
			return added, fmt.Errorf("failed to add %s: %w", ColLogAmount, err)
		}
		added = append(added, ColLogAmount)
	} else {
		log.Warn().Str("column", ColAmount).Msg("Column missing, skipping amount features")
	}

	return added, nil
}
