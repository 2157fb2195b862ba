// Package metrics provides Prometheus metrics for fraudlab runs.
// A run records scoring calls, the selected operating point and the
// evaluation areas, then writes everything to a node-exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fraudlab"

// Metrics holds all Prometheus metrics for a run.
type Metrics struct {
	// Data metrics
	RowsLoaded    *prometheus.GaugeVec     // Rows per loaded table, by split
	StageDuration *prometheus.HistogramVec // Wall time of pipeline stages
	DriftAlerts   *prometheus.CounterVec   // Train/test drift alerts, by method and severity

	// Scoring metrics
	ScoringRequests  prometheus.Counter   // Total number of scoring jobs sent
	ScoringFailures  prometheus.Counter   // Total number of failed scoring jobs
	ScoringTimeouts  prometheus.Counter   // Total number of scoring timeouts
	ScoringFallbacks prometheus.Counter   // Total number of fallback scorer uses
	ScoringLatency   prometheus.Histogram // End-to-end scoring latency
	Scores           prometheus.Histogram // Distribution of fraud probabilities

	// Evaluation metrics, by model
	Threshold     *prometheus.GaugeVec
	Precision     *prometheus.GaugeVec
	Recall        *prometheus.GaugeVec
	ConstraintMet *prometheus.GaugeVec
	ROCAUC        *prometheus.GaugeVec
	PRAUC         *prometheus.GaugeVec

	ErrorsTotal prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates metrics on a private registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
// WriteTextfile needs the registerer to also be a Gatherer.
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	m := &Metrics{
		RowsLoaded: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_loaded",
			Help:      "Number of rows in each loaded table",
		}, []string{"split"}),
		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"stage"}),
		DriftAlerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_drift_alerts_total",
			Help:      "Features whose train and test distributions differ",
		}, []string{"method", "severity"}),
		ScoringRequests: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_requests_total",
			Help:      "Total number of scoring jobs sent to a model",
		}),
		ScoringFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_failures_total",
			Help:      "Total number of failed scoring jobs",
		}),
		ScoringTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_timeouts_total",
			Help:      "Total number of scoring jobs that timed out",
		}),
		ScoringFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_fallback_use_total",
			Help:      "Total number of times the fallback scorer was used",
		}),
		ScoringLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_latency_seconds",
			Help:      "Scoring latency in seconds (end-to-end, including training)",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}),
		Scores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fraud_probability",
			Help:      "Distribution of predicted fraud probabilities",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		Threshold: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_threshold",
			Help:      "Decision threshold picked by the selector",
		}, []string{"model"}),
		Precision: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_precision",
			Help:      "Precision at the selected threshold",
		}, []string{"model"}),
		Recall: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "selected_recall",
			Help:      "Recall at the selected threshold",
		}, []string{"model"}),
		ConstraintMet: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "precision_target_met",
			Help:      "1 when the minimum precision target was reachable",
		}, []string{"model"}),
		ROCAUC: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roc_auc",
			Help:      "Area under the ROC curve on the test split",
		}, []string{"model"}),
		PRAUC: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pr_auc",
			Help:      "Area under the precision-recall curve on the test split",
		}, []string{"model"}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors encountered",
		}),
	}
	if g, ok := registerer.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

func (m *Metrics) ScoringRequestsInc()               { m.ScoringRequests.Inc() }
func (m *Metrics) ScoringFailuresInc()               { m.ScoringFailures.Inc() }
func (m *Metrics) ScoringLatencyObserve(sec float64) { m.ScoringLatency.Observe(sec) }
func (m *Metrics) ScoringTimeoutsInc()               { m.ScoringTimeouts.Inc() }
func (m *Metrics) ScoringFallbackInc()               { m.ScoringFallbacks.Inc() }
func (m *Metrics) ScoreObserve(p float64)            { m.Scores.Observe(p) }

// SetRows records the size of a loaded table.
func (m *Metrics) SetRows(split string, n int) {
	m.RowsLoaded.WithLabelValues(split).Set(float64(n))
}

// DriftAlert counts one drifted feature.
func (m *Metrics) DriftAlert(method, severity string) {
	m.DriftAlerts.WithLabelValues(method, severity).Inc()
}

// ObserveStage records how long a stage took since start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordSelection stores the operating point chosen for model.
func (m *Metrics) RecordSelection(model string, threshold, precision, recall float64, met bool) {
	m.Threshold.WithLabelValues(model).Set(threshold)
	m.Precision.WithLabelValues(model).Set(precision)
	m.Recall.WithLabelValues(model).Set(recall)
	v := 0.0
	if met {
		v = 1
	}
	m.ConstraintMet.WithLabelValues(model).Set(v)
}

// RecordAUC stores the ROC and precision-recall areas for model.
func (m *Metrics) RecordAUC(model string, roc, pr float64) {
	m.ROCAUC.WithLabelValues(model).Set(roc)
	m.PRAUC.WithLabelValues(model).Set(pr)
}

// WriteTextfile writes every gathered metric in the text exposition format
// for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("metrics registry cannot be gathered")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
