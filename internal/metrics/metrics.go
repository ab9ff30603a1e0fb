// Package metrics records per-run fitting metrics and exports them in the
// Prometheus text format for node-exporter style collection.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run status label values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

// Recorder holds the metrics of one process on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	fitDuration  prometheus.Histogram
	runsTotal    *prometheus.CounterVec
	stageSeconds *prometheus.HistogramVec
	nfev         prometheus.Gauge
	ndata        prometheus.Gauge
	redchi       prometheus.Gauge
	rsquared     prometheus.Gauge
}

// New returns a recorder with every metric registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		fitDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "spectrafit_fit_duration_seconds",
				Help:    "Time taken by the solver",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 60},
			},
		),
		runsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spectrafit_runs_total",
				Help: "Total number of fitting runs",
			},
			[]string{"status"}, // success, failed or error
		),
		stageSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spectrafit_stage_duration_seconds",
				Help:    "Time taken by individual pipeline stages",
				Buckets: []float64{0.001, 0.01, 0.1, 1, 10},
			},
			[]string{"stage"}, // load, preprocess, compose, fit, report, write
		),
		nfev: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "spectrafit_function_evaluations",
				Help: "Number of model evaluations in the last fit",
			},
		),
		ndata: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "spectrafit_data_points",
				Help: "Number of fitted data points in the last fit",
			},
		),
		redchi: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "spectrafit_reduced_chisquare",
				Help: "Reduced chi-square of the last fit",
			},
		),
		rsquared: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "spectrafit_rsquared",
				Help: "Coefficient of determination of the last fit",
			},
		),
	}
}

// Fit holds the numbers observed for one finished fit.
type Fit struct {
	Duration time.Duration
	Success  bool
	Nfev     int
	Ndata    int
	Redchi   float64
	RSquared float64
}

// ObserveFit records a finished solve.
func (r *Recorder) ObserveFit(f Fit) {
	r.fitDuration.Observe(f.Duration.Seconds())
	r.nfev.Set(float64(f.Nfev))
	r.ndata.Set(float64(f.Ndata))
	r.redchi.Set(f.Redchi)
	r.rsquared.Set(f.RSquared)
	if f.Success {
		r.runsTotal.WithLabelValues(StatusSuccess).Inc()
	} else {
		r.runsTotal.WithLabelValues(StatusFailed).Inc()
	}
}

// ObserveError counts a run that ended with an error before a result existed.
func (r *Recorder) ObserveError() {
	r.runsTotal.WithLabelValues(StatusError).Inc()
}

// ObserveFailure counts a run whose solve did not converge or hit a
// numerical error.
func (r *Recorder) ObserveFailure() {
	r.runsTotal.WithLabelValues(StatusFailed).Inc()
}

// ObserveStage records the duration of a named pipeline stage.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.registry }

// WriteFile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
