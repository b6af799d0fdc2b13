package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workslot_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "workslot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsAdmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workslot_bookings_admitted_total",
			Help: "Total number of bookings admitted",
		},
		[]string{"status"},
	)

	AdmissionsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workslot_admissions_rejected_total",
			Help: "Total number of booking requests rejected by the admission check",
		},
		[]string{"reason"},
	)

	AdmissionRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workslot_admission_retries_total",
			Help: "Total number of admission transactions retried after lock contention",
		},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workslot_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workslot_cache_requests_total",
			Help: "Total number of read-through cache lookups",
		},
		[]string{"namespace", "result"},
	)

	WorkshopsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workslot_workshops_created_total",
			Help: "Total number of workshops created",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordAdmission(status string) {
	BookingsAdmittedTotal.WithLabelValues(status).Inc()
}

func RecordAdmissionRejected(reason string) {
	AdmissionsRejectedTotal.WithLabelValues(reason).Inc()
}

func RecordAdmissionRetry() {
	AdmissionRetriesTotal.Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordCacheLookup(namespace, result string) {
	CacheRequestsTotal.WithLabelValues(namespace, result).Inc()
}

func RecordWorkshopCreated() {
	WorkshopsCreatedTotal.Inc()
}
