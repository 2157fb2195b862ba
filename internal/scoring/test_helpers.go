package scoring

import (
	"context"
	"sync"
)

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu         sync.Mutex
	requests   int
	failures   int
	latencySum float64
	timeouts   int
	fallbacks  int
	scores     []float64
}

func (m *MockMetrics) ScoringRequestsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
}

func (m *MockMetrics) ScoringFailuresInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

func (m *MockMetrics) ScoringLatencyObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySum += v
}

func (m *MockMetrics) ScoringTimeoutsInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts++
}

func (m *MockMetrics) ScoringFallbackInc() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallbacks++
}

func (m *MockMetrics) ScoreObserve(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, v)
}

// Counts returns requests, failures, timeouts and fallbacks.
func (m *MockMetrics) Counts() (requests, failures, timeouts, fallbacks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests, m.failures, m.timeouts, m.fallbacks
}

// Scores returns every observed probability.
func (m *MockMetrics) Scores() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.scores...)
}

// StaticScorer returns fixed probabilities, or Err when set.
type StaticScorer struct {
	Probs []float64
	Err   error
	Calls int
}

func (s *StaticScorer) Name() string { return "static" }

func (s *StaticScorer) Score(ctx context.Context, job Job) ([]float64, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	if err := Validate(s.Probs, len(job.TestX)); err != nil {
		return nil, err
	}
	return append([]float64(nil), s.Probs...), nil
}
