package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mawid/internal/logger"
)

// Stripe talks form-encoded to the PaymentIntents API. Amounts stay in the
// settlement currency's smallest unit, which for SAR is the halala.
type Stripe struct {
	secretKey string
	baseURL   string
	client    *http.Client
}

func NewStripe(secretKey, baseURL string) *Stripe {
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}
	return &Stripe{
		secretKey: secretKey,
		baseURL:   baseURL,
		client:    newHTTPClient(),
	}
}

type stripeIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ClientSecret string `json:"client_secret"`
	LatestCharge string `json:"latest_charge"`
}

func (s *Stripe) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{Gateway: GatewayStripe, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func (s *Stripe) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	currency := req.Currency
	if currency == "" {
		currency = "sar"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("description", req.Description)
	for k, v := range req.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	if req.OrderID != "" {
		form.Set("metadata[order_id]", req.OrderID)
	}

	var intent stripeIntent
	if err := s.do(ctx, http.MethodPost, "/v1/payment_intents", form, &intent); err != nil {
		return nil, err
	}
	if intent.ID == "" {
		return nil, &GatewayError{Gateway: GatewayStripe, StatusCode: http.StatusOK, Body: "intent response missing id"}
	}

	logger.Info("Stripe payment intent created", "intent_id", intent.ID, "amount", intent.Amount)

	return &Intent{
		Gateway:     GatewayStripe,
		Reference:   intent.ID,
		State:       StateInitiated,
		CheckoutURL: intent.ClientSecret,
		AmountMinor: intent.Amount,
		Currency:    strings.ToUpper(intent.Currency),
	}, nil
}

func (s *Stripe) ConfirmOrAuthorize(ctx context.Context, reference string) (*Confirmation, error) {
	var intent stripeIntent
	if err := s.do(ctx, http.MethodGet, "/v1/payment_intents/"+reference, nil, &intent); err != nil {
		return nil, err
	}
	if intent.ID == "" {
		return nil, &GatewayError{Gateway: GatewayStripe, StatusCode: http.StatusOK, Body: "intent response missing id"}
	}

	conf := &Confirmation{
		Gateway:     GatewayStripe,
		Reference:   intent.ID,
		AmountMinor: intent.Amount,
		Currency:    strings.ToUpper(intent.Currency),
	}

	switch intent.Status {
	case "succeeded":
		if intent.LatestCharge == "" {
			return nil, &GatewayError{Gateway: GatewayStripe, StatusCode: http.StatusOK, Body: "succeeded intent missing latest_charge"}
		}
		conf.State = StateCaptured
		conf.CaptureID = intent.LatestCharge
	case "requires_capture":
		conf.State = StateAuthorized
		conf.AuthorizationID = intent.ID
	case "processing", "requires_payment_method", "requires_confirmation", "requires_action":
		conf.State = StateInitiated
	default:
		conf.State = StateFailed
	}

	return conf, nil
}

func (s *Stripe) Refund(ctx context.Context, reference string, amountCents int64) (*RefundResult, error) {
	form := url.Values{}
	form.Set("payment_intent", reference)
	if amountCents > 0 {
		form.Set("amount", strconv.FormatInt(amountCents, 10))
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount int64  `json:"amount"`
	}
	if err := s.do(ctx, http.MethodPost, "/v1/refunds", form, &out); err != nil {
		return nil, err
	}

	return &RefundResult{
		Gateway:     GatewayStripe,
		Reference:   reference,
		RefundID:    out.ID,
		State:       StateRefunded,
		AmountMinor: out.Amount,
	}, nil
}

var _ Adapter = (*Stripe)(nil)
