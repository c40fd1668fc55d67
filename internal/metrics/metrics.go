package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parilka",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	registrations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parilka",
			Name:      "registrations_total",
			Help:      "Registration saga outcomes.",
		},
		[]string{"result"},
	)

	logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parilka",
			Name:      "logins_total",
			Help:      "Sign-in outcomes.",
		},
		[]string{"result"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "parilka",
			Name:      "bookings_total",
			Help:      "Booking admission outcomes.",
		},
		[]string{"result"},
	)

	compensationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parilka",
			Name:      "compensation_failures_total",
			Help:      "Failed saga compensations leaving orphaned accounts.",
		},
	)

	recoverySweeps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parilka",
			Name:      "recovery_sweeps_total",
			Help:      "Recovery worker sweep runs.",
		},
	)

	recoveredAccounts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "parilka",
			Name:      "recovered_accounts_total",
			Help:      "Orphaned accounts removed by the recovery worker.",
		},
	)

	outboundDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "parilka",
			Name:      "outbound_request_seconds",
			Help:      "Outbound HTTP call latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"target"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			registrations,
			logins,
			bookings,
			compensationFailures,
			recoverySweeps,
			recoveredAccounts,
			outboundDuration,
		)
	})
}

// IncHTTP increments the counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

func IncRegistration(result string) {
	registrations.WithLabelValues(result).Inc()
}

func IncLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

func IncBooking(result string) {
	bookings.WithLabelValues(result).Inc()
}

func IncCompensationFailure() {
	compensationFailures.Inc()
}

func IncRecoverySweep() {
	recoverySweeps.Inc()
}

func IncRecoveredAccount() {
	recoveredAccounts.Inc()
}

// ObserveOutbound records one outbound call duration in seconds.
func ObserveOutbound(target string, seconds float64) {
	outboundDuration.WithLabelValues(target).Observe(seconds)
}
