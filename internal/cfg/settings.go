package cfg

import (
	"fmt"
	"math"
	"net/url"
	"time"

	"fraudlab/internal/common"
)

// Settings is the resolved configuration of a fraudlab run.
type Settings struct {
	LogLevel string

	RawPath       string
	ProcessedPath string
	ReportsDir    string
	FiguresDir    string
	Target        string

	Seed          int64
	TestSize      float64
	MinPrecision  float64
	Model         string
	HistogramBins int

	Scorer         string
	ScorerFallback bool
	TrainerScript  string
	ScorerTimeout  time.Duration
	ModelURL       string
	ModelRate      float64
	BreakerTrip    int
	BreakerTimeout time.Duration
	ScoresPath     string

	MetricsFile string
}

// validateSettings performs range checks on the resolved configuration
func validateSettings(settings *Settings) error {
	// Paths
	if settings.RawPath == "" || settings.ProcessedPath == "" {
		return fmt.Errorf("raw and processed dataset paths are required")
	}
	if settings.ReportsDir == "" || settings.FiguresDir == "" {
		return fmt.Errorf("reports and figures directories are required")
	}
	if settings.Target == "" {
		return fmt.Errorf("target column cannot be empty")
	}

	// Split and selection
	if math.IsNaN(settings.TestSize) || settings.TestSize <= 0 || settings.TestSize >= 1 {
		return fmt.Errorf("test size must be in (0, 1), got %f", settings.TestSize)
	}
	if math.IsNaN(settings.MinPrecision) || settings.MinPrecision < 0 || settings.MinPrecision > 1 {
		return fmt.Errorf("min precision must be in [0, 1], got %f", settings.MinPrecision)
	}
	if settings.HistogramBins <= 0 || settings.HistogramBins > common.MaxHistogramBins {
		return fmt.Errorf("histogram bins must be between 1 and %d, got %d", common.MaxHistogramBins, settings.HistogramBins)
	}
	switch settings.Model {
	case "xgboost", "logistic":
	default:
		return fmt.Errorf("unknown model %q (want xgboost or logistic)", settings.Model)
	}

	// Scoring
	switch settings.Scorer {
	case common.ScorerProcess:
		if settings.TrainerScript == "" {
			return fmt.Errorf("process scorer needs a trainer script")
		}
	case common.ScorerHTTP:
		u, err := url.Parse(settings.ModelURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("model URL must be an absolute http(s) URL, got %q", settings.ModelURL)
		}
	case common.ScorerFile:
		if settings.ScoresPath == "" {
			return fmt.Errorf("file scorer needs a scores path")
		}
	case common.ScorerHeuristic:
	default:
		return fmt.Errorf("unknown scorer %q", settings.Scorer)
	}
	if settings.ScorerTimeout < common.MinScorerTimeout || settings.ScorerTimeout > common.MaxScorerTimeout {
		return fmt.Errorf("scorer timeout must be between %v and %v, got %v",
			common.MinScorerTimeout, common.MaxScorerTimeout, settings.ScorerTimeout)
	}
	if settings.ModelRate <= 0 {
		return fmt.Errorf("model rate limit must be positive, got %f", settings.ModelRate)
	}
	if settings.BreakerTrip <= 0 || settings.BreakerTrip > common.MaxBreakerTrip {
		return fmt.Errorf("breaker failures must be between 1 and %d, got %d", common.MaxBreakerTrip, settings.BreakerTrip)
	}
	if settings.BreakerTimeout <= 0 {
		return fmt.Errorf("breaker timeout must be positive, got %v", settings.BreakerTimeout)
	}

	return nil
}
