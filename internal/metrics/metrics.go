package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "estatehub"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	bookingAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_attempts_total",
			Help:      "Booking attempts by outcome (ok or rejection reason).",
		},
		[]string{"outcome"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status changes by target status and outcome.",
		},
		[]string{"status", "outcome"},
	)

	dashboardDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dashboard_duration_seconds",
			Help:      "Time spent computing a dashboard snapshot.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_sync_tasks_total",
			Help:      "Spreadsheet mirror tasks by result.",
		},
		[]string{"result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingAttempts, bookingTransitions, dashboardDuration, syncTasks)
	})
}

func IncHTTP(route string, code int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// IncBookingAttempt records an AttemptBooking outcome.
func IncBookingAttempt(outcome string) {
	bookingAttempts.WithLabelValues(outcome).Inc()
}

func IncTransition(status, outcome string) {
	bookingTransitions.WithLabelValues(status, outcome).Inc()
}

func ObserveDashboard(role string, started time.Time) {
	dashboardDuration.WithLabelValues(role).Observe(time.Since(started).Seconds())
}

func IncSyncTask(result string) {
	syncTasks.WithLabelValues(result).Inc()
}
