package scoring

import (
	"context"

	"github.com/rs/zerolog/log"
)

type fallbackScorer struct {
	primary  Scorer
	fallback Scorer
	metrics  MetricsInterface
}

// WithFallback scores with primary and switches to fallback when primary
// fails. Context cancellation is returned as is.
func WithFallback(primary, fallback Scorer, metrics MetricsInterface) Scorer {
	return &fallbackScorer{primary: primary, fallback: fallback, metrics: metrics}
}

func (s *fallbackScorer) Name() string { return s.primary.Name() }

func (s *fallbackScorer) Score(ctx context.Context, job Job) ([]float64, error) {
	probs, err := s.primary.Score(ctx, job)
	if err == nil {
		return probs, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	log.Warn().
		Err(err).
		Str("primary", s.primary.Name()).
		Str("fallback", s.fallback.Name()).
		Msg("Primary scorer failed, falling back")
	if s.metrics != nil {
		s.metrics.ScoringFallbackInc()
	}
	return s.fallback.Score(ctx, job)
}
