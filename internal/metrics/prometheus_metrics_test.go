package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Records(t *testing.T) {
	pm := NewPrometheusMetrics()

	pm.RecordRun("ok", 120*time.Millisecond)
	pm.RecordRun("ok", 80*time.Millisecond)
	pm.RecordRun("superseded", time.Millisecond)
	pm.RecordGroupSelection("A", 7)
	pm.RecordGroupSelection("A", 5)
	pm.RecordVoteLookup("B", 40, 3*time.Millisecond)
	pm.RecordVoteLookup("B", 2, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(pm.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pm.runs.WithLabelValues("superseded")))
	assert.Equal(t, 5.0, testutil.ToFloat64(pm.selected.WithLabelValues("A")))
	assert.Equal(t, 42.0, testutil.ToFloat64(pm.lookupRows.WithLabelValues("B")))
}

func TestPrometheusMetrics_IndependentRegistries(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()

	a.RecordRun("ok", time.Second)
	assert.Equal(t, 0.0, testutil.ToFloat64(b.runs.WithLabelValues("ok")))
}

func TestPrometheusMetrics_Handler(t *testing.T) {
	pm := NewPrometheusMetrics()
	pm.RecordRun("ok", time.Second)

	rec := httptest.NewRecorder()
	pm.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `repness_runs_total{status="ok"} 1`)
}
