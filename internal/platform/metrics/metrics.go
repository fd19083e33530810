package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RisksCreated    prometheus.Counter
	RisksUpdated    prometheus.Counter
	AuditsPlanned   prometheus.Counter
	ReportsStored   prometheus.Counter
	EventsPublished *prometheus.CounterVec
	HandlerFailures prometheus.Counter
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RisksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskboard_risks_created_total",
			Help: "Total number of risks created",
		}),
		RisksUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskboard_risks_updated_total",
			Help: "Total number of risk updates applied",
		}),
		AuditsPlanned: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskboard_audits_planned_total",
			Help: "Total number of audit engagements planned, including auto-planned focused reviews",
		}),
		ReportsStored: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskboard_reports_stored_total",
			Help: "Total number of aggregated report snapshots persisted",
		}),
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "riskboard_events_published_total",
			Help: "Domain events published on the in-process bus",
		}, []string{"event"}),
		HandlerFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "riskboard_event_handler_failures_total",
			Help: "Event subscriber panics recovered by the bus",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "riskboard_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}
