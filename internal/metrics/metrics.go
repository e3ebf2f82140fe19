// Package metrics counts capture attempts, captures and pages of a run and
// exports them in the Prometheus text format for the node-exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	url2pdf "github.com/alnah/go-url2pdf"
)

// Label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	ResultCaptured  = "captured"
	ResultExhausted = "exhausted"

	ResultRendered    = "rendered"
	ResultPlaceholder = "placeholder"
	ResultSkipped     = "skipped"
)

// Metrics bundles the collectors of one run. It implements url2pdf.Observer.
type Metrics struct {
	registry *prometheus.Registry

	AttemptsTotal   *prometheus.CounterVec
	AttemptDuration prometheus.Histogram
	CapturesTotal   *prometheus.CounterVec
	PagesTotal      *prometheus.CounterVec
	LastRunSeconds  prometheus.Gauge
}

var _ url2pdf.Observer = (*Metrics)(nil)

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		AttemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "url2pdf_capture_attempts_total",
			Help: "Total number of screenshot attempts.",
		}, []string{"outcome"}),
		AttemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "url2pdf_capture_attempt_duration_seconds",
			Help:    "Duration of one screenshot attempt, browser launch included.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}),
		CapturesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "url2pdf_captures_total",
			Help: "Total number of URLs processed, by final result.",
		}, []string{"result"}),
		PagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "url2pdf_pages_total",
			Help: "Total number of PDF entries, by result.",
		}, []string{"result"}),
		LastRunSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "url2pdf_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.AttemptsTotal,
		m.AttemptDuration,
		m.CapturesTotal,
		m.PagesTotal,
		m.LastRunSeconds,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) AttemptFinished(_ string, _ int, elapsed time.Duration, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.AttemptsTotal.WithLabelValues(outcome).Inc()
	m.AttemptDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CaptureFinished(_ string, _ int, err error) {
	result := ResultCaptured
	if err != nil {
		result = ResultExhausted
	}
	m.CapturesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) PageFinished(_ string, placeholder bool, err error) {
	result := ResultRendered
	switch {
	case err != nil:
		result = ResultSkipped
	case placeholder:
		result = ResultPlaceholder
	}
	m.PagesTotal.WithLabelValues(result).Inc()
}

// WriteTextfile stamps the run end time and writes every metric to path.
// The file is replaced atomically by the Prometheus client.
func (m *Metrics) WriteTextfile(path string, finished time.Time) error {
	m.LastRunSeconds.Set(float64(finished.Unix()))
	return prometheus.WriteToTextfile(path, m.registry)
}
