package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordTransition(t *testing.T) {
	before := testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("PENDING", "REJECTED"))

	RecordTransition("PENDING", "REJECTED")

	after := testutil.ToFloat64(BookingTransitionsTotal.WithLabelValues("PENDING", "REJECTED"))
	assert.Equal(t, before+1, after)
}

func TestRecordCaptureCountsBoth(t *testing.T) {
	countBefore := testutil.ToFloat64(PaymentsTotal.WithLabelValues("moyasar", "CAPTURED"))
	centsBefore := testutil.ToFloat64(PaymentCapturedCents.WithLabelValues("moyasar"))

	RecordCapture("moyasar", 15000)

	assert.Equal(t, countBefore+1, testutil.ToFloat64(PaymentsTotal.WithLabelValues("moyasar", "CAPTURED")))
	assert.Equal(t, centsBefore+15000, testutil.ToFloat64(PaymentCapturedCents.WithLabelValues("moyasar")))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/bookings", "200"))

	RecordHTTPRequest("GET", "/bookings", "200", 0.042)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/bookings", "200")))
}

func TestRecordEmail(t *testing.T) {
	before := testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_requested", "queued"))

	RecordEmail("booking_requested", "queued")

	assert.Equal(t, before+1, testutil.ToFloat64(EmailsSentTotal.WithLabelValues("booking_requested", "queued")))
}
