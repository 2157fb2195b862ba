package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// HTTPConfig configures an HTTPScorer.
type HTTPConfig struct {
	URL     string
	Timeout time.Duration
	// RatePerSecond limits outgoing jobs; zero disables the limiter.
	RatePerSecond float64
	// FailuresToTrip consecutive failures open the breaker for OpenTimeout.
	FailuresToTrip uint32
	OpenTimeout    time.Duration
}

// HTTPScorer posts jobs to a model service.
type HTTPScorer struct {
	url     string
	rest    *resty.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	metrics MetricsInterface
}

// NewHTTPScorer builds a rate-limited client guarded by a circuit breaker.
func NewHTTPScorer(c HTTPConfig, metrics MetricsInterface) (*HTTPScorer, error) {
	if c.URL == "" {
		return nil, errors.New("model service URL is empty")
	}

	r := resty.New()
	if c.Timeout > 0 {
		r.SetTimeout(c.Timeout)
	} else {
		r.SetTimeout(2 * time.Minute)
	}
	r.SetHeader("Content-Type", "application/json")

	trip := c.FailuresToTrip
	if trip == 0 {
		trip = 3
	}
	st := gobreaker.Settings{Name: "model-service"}
	st.Timeout = c.OpenTimeout
	if st.Timeout <= 0 {
		st.Timeout = 30 * time.Second
	}
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= trip
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
	}

	var limiter *rate.Limiter
	if c.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.RatePerSecond), 1)
	}

	return &HTTPScorer{
		url:     c.URL,
		rest:    r,
		breaker: gobreaker.NewCircuitBreaker(st),
		limiter: limiter,
		metrics: metrics,
	}, nil
}

// Name identifies the scorer by its service URL.
func (s *HTTPScorer) Name() string { return "http:" + s.url }

// Score posts the job and validates the returned probabilities.
func (s *HTTPScorer) Score(ctx context.Context, job Job) ([]float64, error) {
	start := time.Now()
	if s.metrics != nil {
		s.metrics.ScoringRequestsInc()
		defer func() { s.metrics.ScoringLatencyObserve(time.Since(start).Seconds()) }()
	}

	probs, err := s.post(ctx, job)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ScoringFailuresInc()
			if errors.Is(err, context.DeadlineExceeded) {
				s.metrics.ScoringTimeoutsInc()
			}
		}
		return nil, err
	}
	observeScores(s.metrics, probs)
	return probs, nil
}

func (s *HTTPScorer) post(ctx context.Context, job Job) ([]float64, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	out, err := s.breaker.Execute(func() (interface{}, error) {
		resp := &Response{}
		res, err := s.rest.R().
			SetContext(ctx).
			SetBody(job).
			SetResult(resp).
			SetError(resp).
			Post(s.url)
		if err != nil {
			return nil, err
		}
		if res.IsError() {
			if resp.Error != "" {
				return nil, fmt.Errorf("model service: %d %s", res.StatusCode(), resp.Error)
			}
			return nil, fmt.Errorf("model service: %s", res.Status())
		}
		if resp.Error != "" {
			return nil, fmt.Errorf("model service: %s", resp.Error)
		}
		return resp.Probabilities, nil
	})
	if err != nil {
		return nil, fmt.Errorf("score via %s: %w", s.url, err)
	}

	probs := out.([]float64)
	if err := Validate(probs, len(job.TestX)); err != nil {
		return nil, err
	}
	return probs, nil
}
