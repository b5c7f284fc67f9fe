package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for joint analyses and the HTTP API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Analyses by outcome: pass, fail or the error code
	Analyses *prometheus.CounterVec

	// Failure mode results by mode and status
	ModeResults *prometheus.CounterVec

	AnalyzeLatency prometheus.Histogram

	// Governing margins of successful analyses
	GoverningMargin prometheus.Histogram

	BatchLatency prometheus.Histogram
	BatchSize    prometheus.Histogram

	Requests *prometheus.CounterVec
}

// New registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fastener_analyses_total",
			Help: "Total joint analyses by outcome",
		}, []string{"outcome"}),

		ModeResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fastener_mode_results_total",
			Help: "Failure mode results by mode and status",
		}, []string{"mode", "status"}),

		AnalyzeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fastener_analyze_duration_seconds",
			Help:    "Duration of a single joint analysis",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),

		GoverningMargin: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fastener_governing_margin",
			Help:    "Governing margin of safety of analysed joints",
			Buckets: []float64{-0.5, -0.1, 0, 0.1, 0.25, 0.5, 1, 2, 5},
		}),

		BatchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fastener_batch_duration_seconds",
			Help:    "Duration of batch analyses",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}),

		BatchSize: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "fastener_batch_joints",
			Help:    "Number of joints per batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),

		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fastener_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}
}

// ObserveAnalysis records one finished analysis. governing is nil when no
// mode applied.
func (m *Metrics) ObserveAnalysis(outcome string, governing *float64, d time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues(outcome).Inc()
	m.AnalyzeLatency.Observe(d.Seconds())
	if governing != nil {
		m.GoverningMargin.Observe(*governing)
	}
}

func (m *Metrics) IncrementMode(mode, status string) {
	if m != nil {
		m.ModeResults.WithLabelValues(mode, status).Inc()
	}
}

func (m *Metrics) ObserveBatch(size int, d time.Duration) {
	if m != nil {
		m.BatchSize.Observe(float64(size))
		m.BatchLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementRequest(route string, code int) {
	if m != nil {
		m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	}
}
