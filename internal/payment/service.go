package payment

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mawid/internal/booking"
	"mawid/internal/logger"
	"mawid/internal/metrics"
	"mawid/internal/payment/gateway"
	"mawid/internal/payout"
)

var (
	ErrUnknownGateway   = errors.New("unknown payment gateway")
	ErrNotPayable       = errors.New("booking is not in a payable status")
	ErrAlreadyCaptured  = errors.New("booking already has a captured payment")
	ErrNotRefundable    = errors.New("payment is not in a refundable status")
	ErrRefundTooLarge   = errors.New("refund exceeds the remaining captured amount")
	ErrNotBookingClient = errors.New("only the booking client can pay")
)

type ReceiptEmailService interface {
	SendPaymentReceipt(ctx context.Context, to, clientName, serviceName string, amountCents int64, currency string) error
	SendRefundNotice(ctx context.Context, to, clientName, serviceName string, amountCents int64, currency string) error
}

type CheckoutResult struct {
	Payment *Payment        `json:"payment"`
	Intent  *gateway.Intent `json:"intent"`
}

// Service owns payment reconciliation: it is the only writer of payment
// status, fee fields, payout ledger moves and the payment-driven booking
// confirmation. Adapters stay stateless underneath it.
type Service struct {
	db       *sqlx.DB
	payments Repository
	bookings booking.Repository
	payouts  payout.Repository
	adapters map[string]gateway.Adapter
	email    ReceiptEmailService
	feeBps   int64
}

func NewService(db *sqlx.DB, payments Repository, bookings booking.Repository, payouts payout.Repository,
	adapters map[string]gateway.Adapter, email ReceiptEmailService, platformFeeBps int64) *Service {
	return &Service{
		db:       db,
		payments: payments,
		bookings: bookings,
		payouts:  payouts,
		adapters: adapters,
		email:    email,
		feeBps:   platformFeeBps,
	}
}

func (s *Service) adapter(name string) (gateway.Adapter, error) {
	a, ok := s.adapters[name]
	if !ok {
		return nil, ErrUnknownGateway
	}
	return a, nil
}

// CreateCheckout opens a new payment attempt for a booking. Each attempt is
// its own row with a fresh order id; stale attempts just never capture.
func (s *Service) CreateCheckout(ctx context.Context, gatewayName string, bookingID, clientID int) (*CheckoutResult, error) {
	adapter, err := s.adapter(gatewayName)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByIDWithParties(ctx, bookingID)
	if err != nil {
		return nil, booking.ErrBookingNotFound
	}
	if b.ClientID != clientID {
		return nil, ErrNotBookingClient
	}
	if b.Status.Terminal() {
		return nil, ErrNotPayable
	}

	captured, err := s.payments.HasCapturedForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if captured {
		return nil, ErrAlreadyCaptured
	}

	p, err := s.payments.Create(ctx, &Payment{
		BookingID:      bookingID,
		Gateway:        gatewayName,
		AmountCents:    b.PriceCents,
		Currency:       "SAR",
		OrderID:        uuid.NewString(),
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	intent, err := adapter.CreateIntent(ctx, gateway.IntentRequest{
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		OrderID:     p.OrderID,
		Description: b.ServiceName,
		Metadata: map[string]string{
			"booking_id": strconv.Itoa(bookingID),
			"order_id":   p.OrderID,
		},
	})
	if err != nil {
		// The row stays CREATED with no gateway ref; it can never capture.
		metrics.RecordPayment(gatewayName, "intent_error")
		return nil, err
	}

	if err := s.payments.SetGatewayRef(ctx, p.ID, intent.Reference); err != nil {
		return nil, err
	}
	p.GatewayRef = intent.Reference

	metrics.RecordPayment(gatewayName, StatusCreated)
	logger.Info("Checkout created", "payment_id", p.ID, "booking_id", bookingID, "gateway", gatewayName, "gateway_ref", intent.Reference)

	return &CheckoutResult{Payment: p, Intent: intent}, nil
}

// HandleGatewayEvent is the webhook entry point: it asks the gateway for its
// current view of the payment and reconciles our row against it. Unknown
// references are logged and swallowed so gateways do not retry forever.
func (s *Service) HandleGatewayEvent(ctx context.Context, gatewayName, reference string) error {
	adapter, err := s.adapter(gatewayName)
	if err != nil {
		return err
	}

	p, err := s.payments.GetByGatewayRef(ctx, gatewayName, reference)
	if err != nil {
		logger.Info("Webhook for unknown payment reference", "gateway", gatewayName, "reference", reference)
		return nil
	}

	conf, err := adapter.ConfirmOrAuthorize(ctx, reference)
	if err != nil {
		return err
	}

	switch conf.State {
	case gateway.StateCaptured:
		_, err = s.RecordCapture(ctx, p.ID, conf.AuthorizationID, conf.CaptureID, 0)
		return err
	case gateway.StateAuthorized:
		applied, err := s.payments.MarkAuthorized(ctx, p.ID, conf.AuthorizationID)
		if err != nil {
			return err
		}
		if applied {
			metrics.RecordPayment(gatewayName, StatusAuthorized)
		}
		return nil
	case gateway.StateFailed:
		return s.RecordFailure(ctx, p.ID)
	default:
		return nil
	}
}

// RecordCapture settles a payment in one transaction: the conditional status
// flip, the fee split, the payout credit and the PENDING booking promotion
// all commit together or not at all. A replay affects zero rows and returns
// applied=false with no side effects.
func (s *Service) RecordCapture(ctx context.Context, paymentID int, authorizationID, captureID string, gatewayFeeCents int64) (bool, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return false, err
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return false, err
	}

	platformFee := p.AmountCents * s.feeBps / 10000
	providerAmount := p.AmountCents - platformFee - gatewayFeeCents

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	applied, err := s.payments.CaptureTx(ctx, tx, paymentID, authorizationID, captureID, platformFee, gatewayFeeCents, providerAmount)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	if err := s.payouts.Credit(ctx, tx, b.ProviderID, providerAmount, p.OrderID); err != nil {
		return false, err
	}

	// Paying confirms a still-pending request. Any other status is left
	// alone; zero rows here is not an error.
	promoted, err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, booking.StatusPending, booking.StatusAccepted)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}

	metrics.RecordCapture(p.Gateway, p.AmountCents)
	metrics.PayoutCreditsTotal.Inc()
	if promoted {
		metrics.RecordTransition(string(booking.StatusPending), string(booking.StatusAccepted))
	}
	logger.Info("Payment captured", "payment_id", paymentID, "booking_id", b.ID,
		"amount", p.AmountCents, "provider_amount", providerAmount, "promoted", promoted)

	go s.notifyReceipt(p.BookingID, p.AmountCents)

	return true, nil
}

func (s *Service) RecordFailure(ctx context.Context, paymentID int) error {
	applied, err := s.payments.MarkFailed(ctx, paymentID)
	if err != nil {
		return err
	}
	if applied {
		p, err := s.payments.GetByID(ctx, paymentID)
		if err == nil {
			metrics.RecordPayment(p.Gateway, StatusFailed)
		}
		logger.Info("Payment failed", "payment_id", paymentID)
	}
	return nil
}

// RecordRefund reverses a captured payment, fully or in part: gateway refund
// first, then the ledger transaction that accumulates the refunded amount and
// debits the provider's proportional share. Only a refund that exhausts the
// capture flips the payment to REFUNDED and moves the booking.
func (s *Service) RecordRefund(ctx context.Context, paymentID int, amountCents int64) (*Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCaptured {
		return nil, ErrNotRefundable
	}

	remaining := p.AmountCents - p.RefundedCents
	amount := amountCents
	if amount == 0 {
		amount = remaining
	}
	if amount < 0 || amount > remaining {
		return nil, ErrRefundTooLarge
	}

	adapter, err := s.adapter(p.Gateway)
	if err != nil {
		return nil, err
	}

	reference := p.GatewayRef
	if p.Gateway == gateway.GatewayPayPal && p.CaptureID != "" {
		// PayPal refunds run against the capture, not the order.
		reference = p.CaptureID
	}

	refund, err := adapter.Refund(ctx, reference, amount)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}

	// The provider gives back their share of this slice only. The running
	// totals telescope, so debits across partial refunds always sum to the
	// exact amount credited at capture.
	debit := p.ProviderAmountCents*(p.RefundedCents+amount)/p.AmountCents -
		p.ProviderAmountCents*p.RefundedCents/p.AmountCents
	exhausted := p.RefundedCents+amount == p.AmountCents

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	applied, err := s.payments.RefundTx(ctx, tx, paymentID, refund.RefundID, amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrNotRefundable
	}

	if debit > 0 {
		if err := s.payouts.Debit(ctx, tx, b.ProviderID, debit, p.OrderID); err != nil {
			return nil, err
		}
	}

	if exhausted && !b.Status.Terminal() {
		if _, err := s.bookings.UpdateStatusTx(ctx, tx, b.ID, b.Status, booking.StatusRefunded); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordPayment(p.Gateway, StatusRefunded)
	logger.Info("Payment refunded", "payment_id", paymentID, "booking_id", b.ID,
		"refund_id", refund.RefundID, "amount", amount, "exhausted", exhausted)

	go s.notifyRefund(p.BookingID, amount)

	p.RefundedCents += amount
	p.RefundID = refund.RefundID
	if exhausted {
		p.Status = StatusRefunded
	}
	return p, nil
}

func (s *Service) notifyReceipt(bookingID int, amountCents int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := s.bookings.GetByIDWithParties(ctx, bookingID)
	if err != nil {
		logger.Errorf("Failed to load booking %d for receipt: %v", bookingID, err)
		return
	}

	if err := s.email.SendPaymentReceipt(ctx, b.ClientEmail, b.ClientName, b.ServiceName, amountCents, "SAR"); err != nil {
		logger.Errorf("Failed to send receipt for booking %d: %v", bookingID, err)
	}
}

func (s *Service) notifyRefund(bookingID int, amountCents int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := s.bookings.GetByIDWithParties(ctx, bookingID)
	if err != nil {
		logger.Errorf("Failed to load booking %d for refund notice: %v", bookingID, err)
		return
	}

	if err := s.email.SendRefundNotice(ctx, b.ClientEmail, b.ClientName, b.ServiceName, amountCents, "SAR"); err != nil {
		logger.Errorf("Failed to send refund notice for booking %d: %v", bookingID, err)
	}
}
