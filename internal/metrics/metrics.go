package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mawid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mawid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mawid_bookings_created_total",
			Help: "Total number of bookings created",
		},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mawid_booking_transitions_total",
			Help: "Total number of booking status transitions",
		},
		[]string{"from", "to"},
	)

	BookingsAutoRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mawid_bookings_auto_rejected_total",
			Help: "Total number of bookings rejected by the pending sweep",
		},
	)

	SweepRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mawid_sweep_runs_total",
			Help: "Total number of auto-rejection sweep passes",
		},
	)

	PaymentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mawid_payments_total",
			Help: "Total number of payment records by gateway and status",
		},
		[]string{"gateway", "status"},
	)

	PaymentCapturedCents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mawid_payment_captured_cents_total",
			Help: "Captured amount in halalas by gateway",
		},
		[]string{"gateway"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mawid_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mawid_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	PayoutCreditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mawid_payout_credits_total",
			Help: "Total number of provider payout credits",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordTransition(from, to string) {
	BookingTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordPayment(gateway, status string) {
	PaymentsTotal.WithLabelValues(gateway, status).Inc()
}

func RecordCapture(gateway string, amountCents int64) {
	PaymentsTotal.WithLabelValues(gateway, "CAPTURED").Inc()
	PaymentCapturedCents.WithLabelValues(gateway).Add(float64(amountCents))
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
