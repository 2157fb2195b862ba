package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudlab/internal/scoring"
)

var _ scoring.MetricsInterface = (*Metrics)(nil)

func TestScoringCounters(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.ScoringRequestsInc()
	m.ScoringRequestsInc()
	m.ScoringFailuresInc()
	m.ScoringTimeoutsInc()
	m.ScoringFallbackInc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ScoringRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoringFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoringTimeouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScoringFallbacks))
}

func TestHistograms(t *testing.T) {
	m := New()

	m.ScoreObserve(0.05)
	m.ScoreObserve(0.95)
	m.ScoringLatencyObserve(1.5)
	m.ObserveStage("predict", time.Now().Add(-time.Second))
	m.ObserveStage("baseline", time.Now())

	assert.Equal(t, 1, testutil.CollectAndCount(m.Scores))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StageDuration))

	path := filepath.Join(t.TempDir(), "m.prom")
	require.NoError(t, m.WriteTextfile(path))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "fraudlab_fraud_probability_count 2")
	assert.Contains(t, string(raw), "fraudlab_scoring_latency_seconds_count 1")
}

func TestRecordSelection(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())

	m.RecordSelection("xgboost", 0.83, 0.91, 0.78, true)
	m.RecordSelection("logistic", 0.5, 0.4, 0.2, false)
	m.RecordAUC("xgboost", 0.97, 0.85)
	m.SetRows("test", 56962)
	m.DriftAlert("kolmogorov_smirnov", "critical")
	m.DriftAlert("kolmogorov_smirnov", "critical")

	assert.Equal(t, 0.83, testutil.ToFloat64(m.Threshold.WithLabelValues("xgboost")))
	assert.Equal(t, 0.91, testutil.ToFloat64(m.Precision.WithLabelValues("xgboost")))
	assert.Equal(t, 0.78, testutil.ToFloat64(m.Recall.WithLabelValues("xgboost")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConstraintMet.WithLabelValues("xgboost")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ConstraintMet.WithLabelValues("logistic")))
	assert.Equal(t, 0.97, testutil.ToFloat64(m.ROCAUC.WithLabelValues("xgboost")))
	assert.Equal(t, 0.85, testutil.ToFloat64(m.PRAUC.WithLabelValues("xgboost")))
	assert.Equal(t, 56962.0, testutil.ToFloat64(m.RowsLoaded.WithLabelValues("test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DriftAlerts.WithLabelValues("kolmogorov_smirnov", "critical")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordAUC("xgboost", 0.97, 0.85)
	m.ErrorsTotal.Inc()

	path := filepath.Join(t.TempDir(), "reports", "fraudlab.prom")
	require.NoError(t, m.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `fraudlab_roc_auc{model="xgboost"} 0.97`)
	assert.Contains(t, string(raw), "fraudlab_errors_total 1")
}

type registererOnly struct{ prometheus.Registerer }

func TestWriteTextfile_NeedsGatherer(t *testing.T) {
	m := NewWithRegistry(registererOnly{prometheus.NewRegistry()})
	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}
