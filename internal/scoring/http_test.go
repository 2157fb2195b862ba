package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPScorer_Success(t *testing.T) {
	var got Job
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{Probabilities: []float64{0.2, 0.4, 0.6}})
	}))
	defer srv.Close()

	metrics := &MockMetrics{}
	s, err := NewHTTPScorer(HTTPConfig{URL: srv.URL, Timeout: 5 * time.Second, RatePerSecond: 100}, metrics)
	require.NoError(t, err)

	probs, err := s.Score(context.Background(), testJob(3))
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.4, 0.6}, probs)
	assert.Equal(t, ModelXGBoost, got.Model)
	assert.Len(t, got.TestX, 3)

	requests, failures, _, _ := metrics.Counts()
	assert.Equal(t, 1, requests)
	assert.Equal(t, 0, failures)
}

func TestHTTPScorer_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(Response{Error: "unknown model"})
	}))
	defer srv.Close()

	s, err := NewHTTPScorer(HTTPConfig{URL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), testJob(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestHTTPScorer_InvalidScores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{Probabilities: []float64{0.2}})
	}))
	defer srv.Close()

	s, err := NewHTTPScorer(HTTPConfig{URL: srv.URL}, nil)
	require.NoError(t, err)

	_, err = s.Score(context.Background(), testJob(2))
	assert.ErrorIs(t, err, ErrInvalidScores)
}

func TestHTTPScorer_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	metrics := &MockMetrics{}
	s, err := NewHTTPScorer(HTTPConfig{URL: srv.URL, FailuresToTrip: 2, OpenTimeout: time.Minute}, metrics)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := s.Score(context.Background(), testJob(1))
		require.Error(t, err)
	}
	_, err = s.Score(context.Background(), testJob(1))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())

	_, failures, _, _ := metrics.Counts()
	assert.Equal(t, 3, failures)
}

func TestHTTPScorer_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	metrics := &MockMetrics{}
	s, err := NewHTTPScorer(HTTPConfig{URL: srv.URL}, metrics)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = s.Score(ctx, testJob(1))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, _, timeouts, _ := metrics.Counts()
	assert.Equal(t, 1, timeouts)
}

func TestNewHTTPScorer_RequiresURL(t *testing.T) {
	_, err := NewHTTPScorer(HTTPConfig{}, nil)
	assert.Error(t, err)
}
