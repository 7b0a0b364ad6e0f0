package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eca"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	analysesTotal        *prometheus.CounterVec
	riskBandTotal        *prometheus.CounterVec
	defaultedFieldsTotal *prometheus.CounterVec
	transcriptChars      *prometheus.HistogramVec
	rejectedTotal        *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "requests_total",
			Help:      "Total analysis requests by endpoint and outcome.",
		},
		[]string{"service", "endpoint", "outcome"},
	)
	riskBandTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "risk_band_total",
			Help:      "Completed analyses by gauge band of the risk score.",
		},
		[]string{"service", "band"},
	)
	defaultedFieldsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "defaulted_fields_total",
			Help:      "Parsed fields that fell back to their default value.",
		},
		[]string{"service", "field"},
	)
	transcriptChars := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "transcript_chars",
			Help:      "Distribution of transcript sizes in characters.",
			Buckets:   []float64{0, 1_000, 10_000, 25_000, 50_000, 100_000, 250_000, 500_000, 1_000_000, 1_500_000},
		},
		[]string{"service"},
	)
	rejectedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rejected_total",
			Help:      "Requests rejected by traffic control before reaching the handler.",
		},
		[]string{"service", "reason"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		analysesTotal,
		riskBandTotal,
		defaultedFieldsTotal,
		transcriptChars,
		rejectedTotal,
	)

	return &HTTPServerMetrics{
		registry:             registry,
		requestTotal:         requestTotal,
		requestDuration:      requestDuration,
		requestInFlight:      requestInFlight,
		analysesTotal:        analysesTotal,
		riskBandTotal:        riskBandTotal,
		defaultedFieldsTotal: defaultedFieldsTotal,
		transcriptChars:      transcriptChars,
		rejectedTotal:        rejectedTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registerer lets other collectors share the /metrics endpoint.
func (m *HTTPServerMetrics) Registerer() prometheus.Registerer {
	return m.registry
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

var knownPaths = map[string]struct{}{
	"/":                   {},
	"/analyze":            {},
	"/v1/analyses/text":   {},
	"/v1/responses/parse": {},
	"/healthz":            {},
	"/metrics":            {},
	"/openapi.yaml":       {},
	"/favicon.ico":        {},
}

// normalizePath keeps the path label bounded: unknown paths share one label.
func normalizePath(path string) string {
	if _, ok := knownPaths[path]; ok {
		return path
	}
	return "other"
}

func (m *HTTPServerMetrics) RecordAnalysisOutcome(service, endpoint, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.analysesTotal.WithLabelValues(service, endpoint, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordParsedAnalysis(service, band string, defaulted []string, transcriptChars int) {
	if band == "" {
		band = "unknown"
	}
	m.riskBandTotal.WithLabelValues(service, band).Inc()
	for _, field := range defaulted {
		m.defaultedFieldsTotal.WithLabelValues(service, field).Inc()
	}
	if transcriptChars >= 0 {
		m.transcriptChars.WithLabelValues(service).Observe(float64(transcriptChars))
	}
}

func (m *HTTPServerMetrics) RecordRejected(service, reason string) {
	m.rejectedTotal.WithLabelValues(service, reason).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
