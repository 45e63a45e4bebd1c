package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "church_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	notificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_notifications_sent_total",
			Help: "Total number of notifications delivered",
		},
		[]string{"kind"},
	)

	notificationsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_notifications_failed_total",
			Help: "Total number of notification deliveries that failed",
		},
		[]string{"kind", "error_type"},
	)

	notificationSendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "church_notification_send_duration_seconds",
			Help:    "Notification send duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"kind"},
	)

	notificationRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_notification_retries_total",
			Help: "Total number of notification retry attempts",
		},
		[]string{"kind"},
	)

	notificationsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_notifications_dropped_total",
			Help: "Notifications dead-lettered or dropped after giving up",
		},
		[]string{"kind", "reason"},
	)

	idempotencyHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "church_notification_idempotency_hits_total",
			Help: "Duplicate notifications skipped",
		},
	)

	notifyQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "church_notification_queue_depth",
			Help: "Notifications waiting in the in-process queue",
		},
	)

	registrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "church_event_registrations_total",
			Help: "Event registration attempts by outcome",
		},
		[]string{"outcome"},
	)
)

func RecordHTTPRequest(method, route, status string, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordNotificationSent(kind string, d time.Duration) {
	notificationsSentTotal.WithLabelValues(kind).Inc()
	notificationSendDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func RecordNotificationFailed(kind, errorType string) {
	notificationsFailedTotal.WithLabelValues(kind, errorType).Inc()
}

func RecordNotificationRetry(kind string) {
	notificationRetriesTotal.WithLabelValues(kind).Inc()
}

// RecordNotificationDropped counts a notification that will not be retried again.
func RecordNotificationDropped(kind, reason string) {
	notificationsDroppedTotal.WithLabelValues(kind, reason).Inc()
}

func RecordIdempotencyHit() {
	idempotencyHitsTotal.Inc()
}

func SetNotifyQueueDepth(n int) {
	notifyQueueDepth.Set(float64(n))
}

// RecordRegistration takes "ok", "full", "duplicate" or "error".
func RecordRegistration(outcome string) {
	registrationsTotal.WithLabelValues(outcome).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
