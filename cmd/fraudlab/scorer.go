package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"fraudlab/internal/cfg"
	"fraudlab/internal/common"
	"fraudlab/internal/scoring"
)

// addScoringFlags registers the model and scorer flags on a scoring command.
func addScoringFlags(cmd *cobra.Command, defaultModel string) {
	f := cmd.Flags()
	f.String("model", defaultModel, "Model: xgboost or logistic")
	f.String("scorer", "", "Scorer: process, http, file or heuristic (default from config)")
	f.Bool("fallback", false, "Fall back to the heuristic scorer when the model fails")
	f.String("trainer", "", "Trainer script for the process scorer")
	f.String("model-url", "", "Model service URL for the http scorer")
	f.String("scores", "", "Precomputed scores CSV for the file scorer")
}

func applyScoringFlags(cmd *cobra.Command, s *cfg.Settings) {
	flags := cmd.Flags()
	if flags.Lookup("scorer") == nil {
		return
	}
	if model, _ := flags.GetString("model"); model != "" {
		s.Model = model
	}
	if flags.Changed("scorer") {
		s.Scorer, _ = flags.GetString("scorer")
	}
	if flags.Changed("fallback") {
		s.ScorerFallback, _ = flags.GetBool("fallback")
	}
	if flags.Changed("trainer") {
		s.TrainerScript, _ = flags.GetString("trainer")
	}
	if flags.Changed("model-url") {
		s.ModelURL, _ = flags.GetString("model-url")
	}
	if flags.Changed("scores") {
		s.ScoresPath, _ = flags.GetString("scores")
		if !flags.Changed("scorer") {
			s.Scorer = common.ScorerFile
		}
	}
}

// buildScorer wires the configured scorer, wrapped with the heuristic
// fallback when enabled.
func buildScorer(s cfg.Settings, m scoring.MetricsInterface) (scoring.Scorer, error) {
	var (
		primary scoring.Scorer
		err     error
	)

	switch s.Scorer {
	case common.ScorerProcess:
		primary, err = scoring.NewPythonScorer(s.TrainerScript, s.ScorerTimeout, m)
	case common.ScorerHTTP:
		primary, err = scoring.NewHTTPScorer(scoring.HTTPConfig{
			URL:            s.ModelURL,
			Timeout:        s.ScorerTimeout,
			RatePerSecond:  s.ModelRate,
			FailuresToTrip: uint32(s.BreakerTrip),
			OpenTimeout:    s.BreakerTimeout,
		}, m)
	case common.ScorerFile:
		primary = scoring.NewFileScorer(s.ScoresPath, "")
	default:
		return scoring.HeuristicScorer{}, nil
	}

	if err != nil {
		if !s.ScorerFallback {
			return nil, err
		}
		log.Warn().Err(err).Str("scorer", s.Scorer).Msg("Scorer unavailable, using heuristic")
		return scoring.HeuristicScorer{}, nil
	}

	if s.ScorerFallback {
		return scoring.WithFallback(primary, scoring.HeuristicScorer{}, m), nil
	}
	return primary, nil
}
