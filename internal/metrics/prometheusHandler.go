package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of document jobs waiting for a worker",
})

var dispatcherSignalCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var documentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_processed_total",
	Help: "Documents that reached a terminal state, by status",
}, []string{"status"})

var jobRetries = promauto.NewCounter(prometheus.CounterOpts{
	Name: "document_job_retries_total",
	Help: "Document jobs requeued after a retryable failure",
})

var notificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notifications_sent_total",
	Help: "Reminder and digest emails, by kind and outcome",
}, []string{"kind", "outcome"})

var grantsScraped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "grants_scraped_total",
	Help: "Grants written by the scraper, by outcome",
}, []string{"outcome"})

// HttpStatusRecorder remembers the status code a handler wrote.
type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CaptureDocumentOutcome(status string) {
	documentsProcessed.WithLabelValues(status).Inc()
}

func IncrementJobRetries() {
	jobRetries.Inc()
}

func CaptureNotification(kind string, outcome string) {
	notificationsSent.WithLabelValues(kind, outcome).Inc()
}

func CaptureScrapedGrant(outcome string) {
	grantsScraped.WithLabelValues(outcome).Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_document_duration_seconds",
	Help:    "Total time spent processing one document job.",
	Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
