// Package metrics exposes analysis run metrics to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"opinionmap/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements ports.AnalysisMetrics on a dedicated registry
type PrometheusMetrics struct {
	registry *prometheus.Registry

	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	selected       *prometheus.GaugeVec
	lookupRows     *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
}

var _ ports.AnalysisMetrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics creates the collectors and registers them on a fresh registry
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repness_runs_total",
				Help: "Analysis runs by final status.",
			},
			[]string{"status"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repness_run_duration_seconds",
				Help:    "Wall time of analysis runs.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		selected: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "repness_selected_statements",
				Help: "Representative statements selected for each group in the latest run.",
			},
			[]string{"group"},
		),
		lookupRows: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "repness_vote_rows_total",
				Help: "Vote rows returned by batched group lookups.",
			},
			[]string{"group"},
		),
		lookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "repness_vote_lookup_duration_seconds",
				Help:    "Duration of batched group vote lookups.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"group"},
		),
	}
}

// RecordRun counts a finished run
func (pm *PrometheusMetrics) RecordRun(status string, duration time.Duration) {
	pm.runs.WithLabelValues(status).Inc()
	pm.runDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordGroupSelection sets the size of a group's representative list
func (pm *PrometheusMetrics) RecordGroupSelection(group string, selected int) {
	pm.selected.WithLabelValues(group).Set(float64(selected))
}

// RecordVoteLookup records one batched lookup
func (pm *PrometheusMetrics) RecordVoteLookup(group string, rows int, duration time.Duration) {
	pm.lookupRows.WithLabelValues(group).Add(float64(rows))
	pm.lookupDuration.WithLabelValues(group).Observe(duration.Seconds())
}

// Registry returns the underlying registry
func (pm *PrometheusMetrics) Registry() *prometheus.Registry {
	return pm.registry
}

// Handler serves the registry in the Prometheus exposition format
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{})
}
