package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	analysesTotal        *prometheus.CounterVec
	interviewsCreated    prometheus.Counter
	eventClientsActive   prometheus.Gauge
	eventsPublishedTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viva_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "viva_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viva_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		analysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viva_analyses_total",
			Help: "Authenticity analyses completed, labelled by parse path.",
		}, []string{"mode"})

		interviewsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viva_interviews_created_total",
			Help: "Voice interviews provisioned on the interview platform.",
		})

		eventClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "viva_event_clients_active",
			Help: "Websocket clients currently subscribed to analysis events.",
		})

		eventsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viva_events_published_total",
			Help: "Analysis events published to subscribers.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			analysesTotal,
			interviewsCreated,
			eventClientsActive,
			eventsPublishedTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// Analyses exposes the per-parse-path analysis counter.
func Analyses() *prometheus.CounterVec {
	RegisterMetrics()
	return analysesTotal
}

// InterviewsCreated exposes the interview provisioning counter.
func InterviewsCreated() prometheus.Counter {
	RegisterMetrics()
	return interviewsCreated
}

// EventClientsActive exposes the websocket subscriber gauge.
func EventClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return eventClientsActive
}

// EventsPublished exposes the published event counter.
func EventsPublished() prometheus.Counter {
	RegisterMetrics()
	return eventsPublishedTotal
}
