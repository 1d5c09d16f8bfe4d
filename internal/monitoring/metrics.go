// Package monitoring exposes prometheus metrics for venue analyses and
// probes the upstream services' health routes.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fallbacks     *prometheus.CounterVec
	analyses      *prometheus.CounterVec
	overallScore  prometheus.Histogram
	upstreamUp    *prometheus.GaugeVec
}

// NewMetrics registers the venue collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venue_upstream_fetches_total",
				Help: "Upstream fetches by service and outcome",
			},
			[]string{"service", "outcome"},
		),
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "venue_upstream_fetch_duration_seconds",
				Help:    "Duration of upstream fetches in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"service"},
		),
		fallbacks: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venue_metric_fallbacks_total",
				Help: "Metrics scored with a randomized estimate instead of live data",
			},
			[]string{"metric"},
		),
		analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "venue_analyses_total",
				Help: "Completed location analyses by business type",
			},
			[]string{"business_type"},
		),
		overallScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "venue_overall_score",
				Help:    "Distribution of overall location scores",
				Buckets: prometheus.LinearBuckets(10, 10, 9),
			},
		),
		upstreamUp: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "venue_upstream_up",
				Help: "1 if the upstream service's last health probe succeeded",
			},
			[]string{"service"},
		),
	}
}

// Fetch outcome labels.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeTransient = "transient_error"
)

// ObserveFetch records one upstream call.
func (m *Metrics) ObserveFetch(service, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(service, outcome).Inc()
	m.fetchDuration.WithLabelValues(service).Observe(d.Seconds())
}

// ObserveFallback records a metric that had to be estimated.
func (m *Metrics) ObserveFallback(metric string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(metric).Inc()
}

// ObserveAnalysis records a finished analysis.
func (m *Metrics) ObserveAnalysis(businessType string, overall int) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(businessType).Inc()
	m.overallScore.Observe(float64(overall))
}

// SetUpstream records the result of a health probe.
func (m *Metrics) SetUpstream(service string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.upstreamUp.WithLabelValues(service).Set(v)
}
