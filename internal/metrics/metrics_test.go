package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveFit(t *testing.T) {
	r := New()
	r.ObserveFit(Fit{Duration: 20 * time.Millisecond, Success: true, Nfev: 42, Ndata: 100, Redchi: 1.5, RSquared: 0.99})
	r.ObserveFit(Fit{Duration: time.Second, Success: false, Nfev: 7, Ndata: 100})
	r.ObserveError()

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues(StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runsTotal.WithLabelValues(StatusError)))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.nfev))
	assert.Equal(t, 100.0, testutil.ToFloat64(r.ndata), "gauge keeps the last value")
}

func TestObserveFailure(t *testing.T) {
	r := New()
	r.ObserveFailure()
	r.ObserveFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.runsTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.runsTotal.WithLabelValues(StatusError)))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.nfev), "a failed solve leaves the fit gauges alone")
}

func TestWriteFile(t *testing.T) {
	r := New()
	r.ObserveStage("fit", 3*time.Millisecond)
	r.ObserveFit(Fit{Duration: time.Millisecond, Success: true, Nfev: 10, Ndata: 5})

	path := filepath.Join(t.TempDir(), "spectrafit.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "spectrafit_runs_total{status=\"success\"} 1")
	assert.Contains(t, text, "spectrafit_function_evaluations 10")
	assert.Contains(t, text, "spectrafit_stage_duration_seconds_count{stage=\"fit\"} 1")
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.ObserveError()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.runsTotal.WithLabelValues(StatusError)))
}
