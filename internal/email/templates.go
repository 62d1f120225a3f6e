package email

import (
	"context"
	"fmt"
	"time"
)

const timeLayout = "Jan 2, 2006 at 3:04 PM"

// SendBookingRequested goes to the provider when a client requests a slot.
func (s *Service) SendBookingRequested(ctx context.Context, to, providerName, clientName, serviceName string, startAt time.Time) error {
	subject := "New Booking Request - " + serviceName
	body := fmt.Sprintf(`Hi %s,

%s has requested a booking:

Service: %s
Time: %s

The request expires automatically if not answered within 24 hours.

- Mawid Team`, providerName, clientName, serviceName, startAt.Format(timeLayout))

	return s.enqueue(ctx, EmailJob{To: to, Name: providerName, Subject: subject, Body: body, Type: "booking_requested", Created: time.Now()})
}

// SendBookingReceived is the client's receipt for a new request.
func (s *Service) SendBookingReceived(ctx context.Context, to, clientName, serviceName string, startAt time.Time) error {
	subject := "Booking Request Sent - " + serviceName
	body := fmt.Sprintf(`Hi %s,

Your booking request was sent:

Service: %s
Time: %s

You will hear back once the provider responds.

- Mawid Team`, clientName, serviceName, startAt.Format(timeLayout))

	return s.enqueue(ctx, EmailJob{To: to, Name: clientName, Subject: subject, Body: body, Type: "booking_received", Created: time.Now()})
}

func (s *Service) SendBookingAccepted(ctx context.Context, to, clientName, serviceName string, startAt time.Time) error {
	subject := "Booking Accepted - " + serviceName
	body := fmt.Sprintf(`Hi %s,

Good news! Your booking was accepted:

Service: %s
Time: %s

- Mawid Team`, clientName, serviceName, startAt.Format(timeLayout))

	return s.enqueue(ctx, EmailJob{To: to, Name: clientName, Subject: subject, Body: body, Type: "booking_accepted", Created: time.Now()})
}

func (s *Service) SendBookingRejected(ctx context.Context, to, clientName, serviceName string) error {
	subject := "Booking Declined - " + serviceName
	body := fmt.Sprintf(`Hi %s,

Unfortunately your booking request for %s was declined.
Any authorized payment will not be captured.

- Mawid Team`, clientName, serviceName)

	return s.enqueue(ctx, EmailJob{To: to, Name: clientName, Subject: subject, Body: body, Type: "booking_rejected", Created: time.Now()})
}

// SendBookingExpired goes to both parties when the pending sweep rejects a request.
func (s *Service) SendBookingExpired(ctx context.Context, to, name, serviceName string, startAt time.Time) error {
	subject := "Booking Request Expired - " + serviceName
	body := fmt.Sprintf(`Hi %s,

The booking request below was not answered within 24 hours and has been
automatically cancelled:

Service: %s
Time: %s

- Mawid Team`, name, serviceName, startAt.Format(timeLayout))

	return s.enqueue(ctx, EmailJob{To: to, Name: name, Subject: subject, Body: body, Type: "booking_expired", Created: time.Now()})
}

func (s *Service) SendBookingCancelled(ctx context.Context, to, name, serviceName, cancelledBy string) error {
	subject := "Booking Cancelled - " + serviceName
	body := fmt.Sprintf(`Hi %s,

The following booking has been cancelled by the %s:

Service: %s

- Mawid Team`, name, cancelledBy, serviceName)

	return s.enqueue(ctx, EmailJob{To: to, Name: name, Subject: subject, Body: body, Type: "booking_cancelled", Created: time.Now()})
}

func (s *Service) SendPaymentReceipt(ctx context.Context, to, clientName, serviceName string, amountCents int64, currency string) error {
	subject := "Payment Received - " + serviceName
	body := fmt.Sprintf(`Hi %s,

We received your payment of %.2f %s for %s.

- Mawid Team`, clientName, float64(amountCents)/100, currency, serviceName)

	return s.enqueue(ctx, EmailJob{To: to, Name: clientName, Subject: subject, Body: body, Type: "payment_receipt", Created: time.Now()})
}

func (s *Service) SendRefundNotice(ctx context.Context, to, clientName, serviceName string, amountCents int64, currency string) error {
	subject := "Refund Issued - " + serviceName
	body := fmt.Sprintf(`Hi %s,

A refund of %.2f %s for %s has been issued. Depending on your bank it may
take a few days to appear.

- Mawid Team`, clientName, float64(amountCents)/100, currency, serviceName)

	return s.enqueue(ctx, EmailJob{To: to, Name: clientName, Subject: subject, Body: body, Type: "refund_notice", Created: time.Now()})
}
