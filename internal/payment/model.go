package payment

import "time"

const (
	StatusCreated    = "CREATED"
	StatusAuthorized = "AUTHORIZED"
	StatusCaptured   = "CAPTURED"
	StatusFailed     = "FAILED"
	StatusVoided     = "VOIDED"
	StatusRefunded   = "REFUNDED"
)

// Payment is one attempt to pay for a booking. Retries get new rows with
// fresh order ids; the capture constraint lives in the conditional update,
// not here.
type Payment struct {
	ID        int    `db:"id" json:"id"`
	BookingID int    `db:"booking_id" json:"booking_id"`
	Gateway   string `db:"gateway" json:"gateway"`
	Status    string `db:"status" json:"status"`

	AmountCents int64  `db:"amount_cents" json:"amount_cents"`
	Currency    string `db:"currency" json:"currency"`

	// OrderID is ours (a UUID handed to the gateway as merchant reference).
	// GatewayRef is theirs.
	OrderID         string `db:"order_id" json:"order_id"`
	GatewayRef      string `db:"gateway_ref" json:"gateway_ref"`
	AuthorizationID string `db:"authorization_id" json:"authorization_id,omitempty"`
	CaptureID       string `db:"capture_id" json:"capture_id,omitempty"`
	RefundID        string `db:"refund_id" json:"refund_id,omitempty"`
	IdempotencyKey  string `db:"idempotency_key" json:"idempotency_key"`

	// RefundedCents accumulates partial refunds; the row only becomes
	// REFUNDED once it reaches AmountCents.
	RefundedCents int64 `db:"refunded_cents" json:"refunded_cents"`

	// Fee fields are written exactly once, at capture, and never touched
	// again.
	PlatformFeeCents    int64 `db:"platform_fee_cents" json:"platform_fee_cents"`
	GatewayFeeCents     int64 `db:"gateway_fee_cents" json:"gateway_fee_cents"`
	ProviderAmountCents int64 `db:"provider_amount_cents" json:"provider_amount_cents"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
