// Package metrics exposes Prometheus collectors for the workflow service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	workflowRunsTotal       *prometheus.CounterVec
	extractionAttemptsTotal *prometheus.CounterVec
	summarizerCallsTotal    *prometheus.CounterVec
	notificationsTotal      *prometheus.CounterVec
	passDurationSeconds     prometheus.Histogram
	workflowsDueGauge       prometheus.Gauge
	httpRequestDuration     *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call repeatedly.
func Init() {
	once.Do(func() {
		workflowRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aera_workflow_runs_total",
				Help: "Total workflow executions, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		extractionAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aera_extractions_total",
				Help: "Extraction outcomes, labeled by winning method (or 'none').",
			},
			[]string{"method", "outcome"},
		)
		summarizerCallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aera_summarizer_calls_total",
				Help: "Summarizer outcomes, labeled by source (provider or local fallback).",
			},
			[]string{"source", "outcome"},
		)
		notificationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aera_notifications_total",
				Help: "Email notification attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		passDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "aera_pass_duration_seconds",
				Help:    "Duration of one full scheduling pass.",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		)
		workflowsDueGauge = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "aera_workflows_due",
				Help: "Number of workflows found due in the latest pass.",
			},
		)
		httpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aera_http_request_duration_seconds",
				Help:    "HTTP request latency, labeled by method, route, and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		)
	})
}

// ObserveRun records one workflow execution outcome.
func ObserveRun(success bool) {
	if workflowRunsTotal == nil {
		return
	}
	workflowRunsTotal.WithLabelValues(outcome(success)).Inc()
}

// ObserveExtraction records a cascade outcome with the winning method.
func ObserveExtraction(method string, success bool) {
	if extractionAttemptsTotal == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	extractionAttemptsTotal.WithLabelValues(method, outcome(success)).Inc()
}

// ObserveSummarization records where a summary came from.
func ObserveSummarization(source string, success bool) {
	if summarizerCallsTotal == nil {
		return
	}
	summarizerCallsTotal.WithLabelValues(source, outcome(success)).Inc()
}

// ObserveNotification records an email delivery attempt.
func ObserveNotification(success bool) {
	if notificationsTotal == nil {
		return
	}
	notificationsTotal.WithLabelValues(outcome(success)).Inc()
}

// ObservePass records a completed scheduling pass.
func ObservePass(duration time.Duration, due int) {
	if passDurationSeconds == nil {
		return
	}
	passDurationSeconds.Observe(duration.Seconds())
	workflowsDueGauge.Set(float64(due))
}

// ObserveHTTPRequest records one API request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if httpRequestDuration == nil {
		return
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
