package cfg

import (
	"math"
	"testing"
	"time"
)

// createValidSettings creates a valid Settings struct for testing
func createValidSettings() *Settings {
	return &Settings{
		LogLevel:       "info",
		RawPath:        "data/raw/creditcard.csv",
		ProcessedPath:  "data/processed/cc_processed.csv",
		ReportsDir:     "reports",
		FiguresDir:     "reports/figures",
		Target:         "Class",
		Seed:           42,
		TestSize:       0.2,
		MinPrecision:   0.9,
		Model:          "xgboost",
		HistogramBins:  60,
		Scorer:         "process",
		TrainerScript:  "scripts/trainer.py",
		ScorerTimeout:  time.Minute,
		ModelURL:       "http://localhost:8000/score",
		ModelRate:      2,
		BreakerTrip:    3,
		BreakerTimeout: 30 * time.Second,
		MetricsFile:    "reports/fraudlab.prom",
	}
}

func TestValidateSettings_ValidConfig(t *testing.T) {
	settings := createValidSettings()

	err := validateSettings(settings)
	if err != nil {
		t.Errorf("Expected valid config to pass, got error: %v", err)
	}
}

func TestValidateSettings_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"empty raw path", func(s *Settings) { s.RawPath = "" }},
		{"empty reports dir", func(s *Settings) { s.ReportsDir = "" }},
		{"empty target", func(s *Settings) { s.Target = "" }},
		{"test size zero", func(s *Settings) { s.TestSize = 0 }},
		{"test size one", func(s *Settings) { s.TestSize = 1 }},
		{"test size NaN", func(s *Settings) { s.TestSize = math.NaN() }},
		{"min precision negative", func(s *Settings) { s.MinPrecision = -0.01 }},
		{"min precision above one", func(s *Settings) { s.MinPrecision = 1.01 }},
		{"zero bins", func(s *Settings) { s.HistogramBins = 0 }},
		{"unknown model", func(s *Settings) { s.Model = "forest" }},
		{"process scorer without script", func(s *Settings) { s.TrainerScript = "" }},
		{"http scorer with relative URL", func(s *Settings) {
			s.Scorer = "http"
			s.ModelURL = "localhost:8000"
		}},
		{"file scorer without path", func(s *Settings) { s.Scorer = "file" }},
		{"unknown scorer", func(s *Settings) { s.Scorer = "onnx" }},
		{"timeout too short", func(s *Settings) { s.ScorerTimeout = 100 * time.Millisecond }},
		{"timeout too long", func(s *Settings) { s.ScorerTimeout = 3 * time.Hour }},
		{"zero rate", func(s *Settings) { s.ModelRate = 0 }},
		{"zero breaker failures", func(s *Settings) { s.BreakerTrip = 0 }},
		{"negative breaker timeout", func(s *Settings) { s.BreakerTimeout = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)

			if err := validateSettings(settings); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestValidateSettings_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"min precision zero", func(s *Settings) { s.MinPrecision = 0 }},
		{"min precision one", func(s *Settings) { s.MinPrecision = 1 }},
		{"heuristic scorer", func(s *Settings) {
			s.Scorer = "heuristic"
			s.TrainerScript = ""
		}},
		{"https model URL", func(s *Settings) {
			s.Scorer = "http"
			s.ModelURL = "https://models.internal/score"
		}},
		{"file scorer with path", func(s *Settings) {
			s.Scorer = "file"
			s.ScoresPath = "scores.csv"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := createValidSettings()
			tt.mutate(settings)

			if err := settings.Validate(); err != nil {
				t.Errorf("Expected %s to pass, got error: %v", tt.name, err)
			}
		})
	}
}
