package common

import "time"

// Environment variable keys
const (
	EnvConfigFile     = "CONFIG_FILE"
	EnvLogLevel       = "LOG_LEVEL"
	EnvRawPath        = "RAW_PATH"
	EnvProcessedPath  = "PROCESSED_PATH"
	EnvReportsDir     = "REPORTS_DIR"
	EnvFiguresDir     = "FIGURES_DIR"
	EnvTarget         = "TARGET_COLUMN"
	EnvSeed           = "SEED"
	EnvTestSize       = "TEST_SIZE"
	EnvMinPrecision   = "MIN_PRECISION"
	EnvModel          = "MODEL"
	EnvHistogramBins  = "HISTOGRAM_BINS"
	EnvScorer         = "SCORER"
	EnvScorerFallback = "SCORER_FALLBACK"
	EnvPythonScript   = "TRAINER_SCRIPT"
	EnvScorerTimeout  = "SCORER_TIMEOUT"
	EnvModelURL       = "MODEL_URL"
	EnvModelRate      = "MODEL_RATE_LIMIT"
	EnvBreakerTrip    = "BREAKER_FAILURES"
	EnvBreakerTimeout = "BREAKER_TIMEOUT"
	EnvScoresPath     = "SCORES_PATH"
	EnvMetricsFile    = "METRICS_FILE"
)

// Scorer kinds
const (
	ScorerProcess   = "process"
	ScorerHTTP      = "http"
	ScorerFile      = "file"
	ScorerHeuristic = "heuristic"
)

// Configuration defaults
const (
	DefaultLogLevel       = "info"
	DefaultRawPath        = "data/raw/creditcard.csv"
	DefaultProcessedPath  = "data/processed/cc_processed.csv"
	DefaultReportsDir     = "reports"
	DefaultFiguresDir     = "reports/figures"
	DefaultTarget         = "Class"
	DefaultSeed           = 42
	DefaultTestSize       = 0.2
	DefaultMinPrecision   = 0.90
	DefaultModel          = "xgboost"
	DefaultHistogramBins  = 60
	DefaultScorer         = ScorerProcess
	DefaultPythonScript   = "scripts/trainer.py"
	DefaultScorerTimeout  = 10 * time.Minute
	DefaultModelURL       = "http://localhost:8000/score"
	DefaultModelRate      = 2.0
	DefaultBreakerTrip    = 3
	DefaultBreakerTimeout = 30 * time.Second
	DefaultMetricsFile    = "reports/fraudlab.prom"
)

// Validation limits
const (
	MinScorerTimeout = time.Second
	MaxScorerTimeout = 2 * time.Hour
	MaxHistogramBins = 1000
	MaxBreakerTrip   = 100
)
