package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	EnrolmentsCompleted *prometheus.CounterVec
	StepSubmissions     *prometheus.CounterVec
	RemoteCalls         *prometheus.CounterVec
	RequestDuration     *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		EnrolmentsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizdir_enrolments_completed_total",
			Help: "Total number of enrolment flows that reached completion",
		}, []string{"flow"}),
		StepSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizdir_step_submissions_total",
			Help: "Wizard step submissions by flow, step and result",
		}, []string{"flow", "step", "result"}),
		RemoteCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "bizdir_remote_calls_total",
			Help: "Remote collaborator calls by service and outcome class",
		}, []string{"service", "outcome"}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "bizdir_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// ObserveRequest records one HTTP request's latency.
func (m *Metrics) ObserveRequest(route, method string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// IncRemoteCall records one remote collaborator call.
func (m *Metrics) IncRemoteCall(service, outcome string) {
	if m == nil {
		return
	}
	m.RemoteCalls.WithLabelValues(service, outcome).Inc()
}

// IncStepSubmission records one wizard step submission.
func (m *Metrics) IncStepSubmission(flow, step, result string) {
	if m == nil {
		return
	}
	m.StepSubmissions.WithLabelValues(flow, step, result).Inc()
}

// IncEnrolmentCompleted records one completed enrolment.
func (m *Metrics) IncEnrolmentCompleted(flow string) {
	if m == nil {
		return
	}
	m.EnrolmentsCompleted.WithLabelValues(flow).Inc()
}
