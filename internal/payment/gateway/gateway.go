package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Normalized gateway-side payment states. Adapters translate each provider's
// vocabulary into these; they never touch booking or payment rows.
const (
	StateInitiated  = "INITIATED"
	StateAuthorized = "AUTHORIZED"
	StateCaptured   = "CAPTURED"
	StateFailed     = "FAILED"
	StateRefunded   = "REFUNDED"
)

const (
	GatewayMoyasar = "MOYASAR"
	GatewayPayPal  = "PAYPAL"
	GatewayStripe  = "STRIPE"
)

var ErrFXRateUnavailable = errors.New("SAR to USD rate is not configured")

// GatewayError preserves what the provider actually said, so handlers can
// surface the raw rejection instead of a generic 500.
type GatewayError struct {
	Gateway    string
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Gateway, e.StatusCode, e.Body)
}

type IntentRequest struct {
	// AmountCents is always in SAR halalas. Adapters that settle in another
	// currency convert internally.
	AmountCents int64
	Currency    string
	OrderID     string
	Description string
	Metadata    map[string]string
}

type Intent struct {
	Gateway     string `json:"gateway"`
	Reference   string `json:"reference"`
	State       string `json:"state"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

type Confirmation struct {
	Gateway         string `json:"gateway"`
	Reference       string `json:"reference"`
	State           string `json:"state"`
	AuthorizationID string `json:"authorization_id,omitempty"`
	CaptureID       string `json:"capture_id,omitempty"`
	AmountMinor     int64  `json:"amount_minor"`
	Currency        string `json:"currency"`
}

type RefundResult struct {
	Gateway     string `json:"gateway"`
	Reference   string `json:"reference"`
	RefundID    string `json:"refund_id"`
	State       string `json:"state"`
	AmountMinor int64  `json:"amount_minor"`
}

// Adapter is the shared surface of the three gateway clients. Adapters never
// retry; callers decide what a failure means.
type Adapter interface {
	// CreateIntent registers the payment with the gateway and returns its
	// reference. amountCents is in halalas regardless of gateway.
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)

	// ConfirmOrAuthorize resolves the gateway's current view of a payment
	// into a normalized state plus the ids the ledger needs. A missing
	// required id or a non-2xx answer is a GatewayError.
	ConfirmOrAuthorize(ctx context.Context, reference string) (*Confirmation, error)

	// Refund reverses a payment. amountCents == 0 means a full refund.
	Refund(ctx context.Context, reference string, amountCents int64) (*RefundResult, error)
}

// FXSource supplies the SAR to USD rate for gateways that settle in USD.
// There is deliberately no fallback: a missing rate must fail loudly rather
// than silently charge 1:1.
type FXSource interface {
	SARToUSD() (decimal.Decimal, error)
}

type fixedFXSource struct {
	rate decimal.Decimal
}

// NewFixedFXSource wraps a configured SAR_USD rate. A zero or negative rate
// yields ErrFXRateUnavailable on every lookup.
func NewFixedFXSource(rate float64) FXSource {
	return &fixedFXSource{rate: decimal.NewFromFloat(rate)}
}

func (f *fixedFXSource) SARToUSD() (decimal.Decimal, error) {
	if f.rate.Sign() <= 0 {
		return decimal.Decimal{}, ErrFXRateUnavailable
	}
	return f.rate, nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}
