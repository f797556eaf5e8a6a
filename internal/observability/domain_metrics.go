package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelineRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockquery_pipeline_requests_total",
			Help: "Total number of question pipeline runs by outcome.",
		},
		[]string{"outcome"},
	)
	pipelineStageFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dockquery_pipeline_stage_failures_total",
			Help: "Total number of pipeline failures by stage.",
		},
		[]string{"stage"},
	)
	generationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dockquery_generation_duration_seconds",
			Help:    "Text-generation backend call latency by phase.",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
		},
		[]string{"phase"},
	)
	queryExecutionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dockquery_query_execution_duration_seconds",
			Help:    "Database execution latency for synthesized statements.",
			Buckets: prometheus.DefBuckets,
		},
	)
	summaryDegradedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dockquery_summary_degraded_total",
			Help: "Total number of responses that fell back to a placeholder description.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		pipelineRequestsTotal,
		pipelineStageFailuresTotal,
		generationDurationSeconds,
		queryExecutionDurationSeconds,
		summaryDegradedTotal,
	)
}

func ObservePipelineSuccess() {
	pipelineRequestsTotal.WithLabelValues("success").Inc()
}

func ObservePipelineFailure(stage string) {
	pipelineRequestsTotal.WithLabelValues("error").Inc()
	pipelineStageFailuresTotal.WithLabelValues(stage).Inc()
}

func ObserveGeneration(phase string, elapsed time.Duration) {
	generationDurationSeconds.WithLabelValues(phase).Observe(elapsed.Seconds())
}

func ObserveQueryExecution(elapsed time.Duration) {
	queryExecutionDurationSeconds.Observe(elapsed.Seconds())
}

func IncrementSummaryDegraded() {
	summaryDegradedTotal.Inc()
}
