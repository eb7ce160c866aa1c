package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mooveit_parcels", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mooveit_parcels",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ParcelTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mooveit_parcels", Name: "parcel_transitions_total", Help: "Parcel delivery status transitions by target status"},
		[]string{"status"},
	)
	TransitionConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mooveit_parcels", Name: "transition_conflicts_total", Help: "Conditional writes that lost a race or hit a stale precondition"},
		[]string{"operation"},
	)
	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{Namespace: "mooveit_parcels", Name: "payments_recorded_total", Help: "Payments written to the ledger"})
	CashoutsRecorded = promauto.NewCounter(prometheus.CounterOpts{Namespace: "mooveit_parcels", Name: "cashouts_recorded_total", Help: "Rider cashouts written to the ledger"})
	EventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "mooveit_parcels", Name: "event_publish_errors_total", Help: "Parcel events a publisher failed to deliver"},
		[]string{"publisher"},
	)
)
