package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records per-stage timings of the analysis pipeline
// (extract, model, parse).
type PipelineMetrics struct {
	service string

	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

func NewPipelineMetrics(service string, registerer prometheus.Registerer) *PipelineMetrics {
	stageTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_total",
			Help:      "Total pipeline stage executions by status.",
		},
		[]string{"service", "stage", "status"},
	)
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service", "stage"},
	)

	if registerer != nil {
		registerer.MustRegister(stageTotal, stageDuration)
	}

	return &PipelineMetrics{
		service:       service,
		stageTotal:    stageTotal,
		stageDuration: stageDuration,
	}
}

func (m *PipelineMetrics) ObserveStage(stage string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.stageTotal.WithLabelValues(m.service, stage, status).Inc()
	if duration >= 0 {
		m.stageDuration.WithLabelValues(m.service, stage).Observe(duration.Seconds())
	}
}
