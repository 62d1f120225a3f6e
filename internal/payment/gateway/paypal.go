package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"mawid/internal/logger"
)

// PayPal settles in USD, so every order runs through the FX source first.
// Prices at rest stay in halalas; conversion happens only at the wire.
type PayPal struct {
	clientID string
	secret   string
	baseURL  string
	fx       FXSource
	client   *http.Client
}

func NewPayPal(clientID, secret, baseURL string, fx FXSource) *PayPal {
	if baseURL == "" {
		baseURL = "https://api-m.paypal.com"
	}
	return &PayPal{
		clientID: clientID,
		secret:   secret,
		baseURL:  baseURL,
		fx:       fx,
		client:   newHTTPClient(),
	}
}

// OrderMeta is what the mobile client needs to render a PayPal sheet: the
// converted amount and the rate used, so the displayed USD figure matches
// what the order will actually charge.
type OrderMeta struct {
	AmountUSD string `json:"amount_usd"`
	FXRate    string `json:"fx_rate"`
	Currency  string `json:"currency"`
}

func (p *PayPal) token(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &GatewayError{Gateway: GatewayPayPal, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &GatewayError{Gateway: GatewayPayPal, StatusCode: resp.StatusCode, Body: "token response missing access_token"}
	}
	return out.AccessToken, nil
}

func (p *PayPal) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	token, err := p.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{Gateway: GatewayPayPal, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil && len(respBody) > 0 {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

// Meta computes the USD amount and rate for a halala price without creating
// an order. An unconfigured rate is a hard error.
func (p *PayPal) Meta(amountCents int64) (*OrderMeta, error) {
	rate, err := p.fx.SARToUSD()
	if err != nil {
		return nil, err
	}

	usd := HalalasToUSD(amountCents, rate)
	return &OrderMeta{
		AmountUSD: usd.StringFixed(2),
		FXRate:    rate.String(),
		Currency:  "USD",
	}, nil
}

type paypalOrder struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID     string `json:"id"`
				Status string `json:"status"`
				Amount struct {
					Value        string `json:"value"`
					CurrencyCode string `json:"currency_code"`
				} `json:"amount"`
			} `json:"captures"`
			Authorizations []struct {
				ID string `json:"id"`
			} `json:"authorizations"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (p *PayPal) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	meta, err := p.Meta(req.AmountCents)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{{
			"custom_id":   req.OrderID,
			"description": req.Description,
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         meta.AmountUSD,
			},
		}},
	}

	var order paypalOrder
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders", payload, &order); err != nil {
		return nil, err
	}
	if order.ID == "" {
		return nil, &GatewayError{Gateway: GatewayPayPal, StatusCode: http.StatusOK, Body: "order response missing id"}
	}

	logger.Info("PayPal order created", "order_id", order.ID, "amount_usd", meta.AmountUSD, "fx_rate", meta.FXRate)

	usd, _ := decimal.NewFromString(meta.AmountUSD)

	return &Intent{
		Gateway:     GatewayPayPal,
		Reference:   order.ID,
		State:       StateInitiated,
		AmountMinor: usd.Mul(hundred).Round(0).IntPart(),
		Currency:    "USD",
	}, nil
}

func (p *PayPal) ConfirmOrAuthorize(ctx context.Context, reference string) (*Confirmation, error) {
	var order paypalOrder
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders/"+reference+"/capture", map[string]string{}, &order); err != nil {
		return nil, err
	}

	conf := &Confirmation{
		Gateway:   GatewayPayPal,
		Reference: order.ID,
		Currency:  "USD",
	}

	for _, unit := range order.PurchaseUnits {
		for _, auth := range unit.Payments.Authorizations {
			conf.AuthorizationID = auth.ID
		}
		for _, capture := range unit.Payments.Captures {
			conf.CaptureID = capture.ID
			amount, err := decimal.NewFromString(capture.Amount.Value)
			if err == nil {
				conf.AmountMinor = amount.Mul(hundred).Round(0).IntPart()
			}
		}
	}

	switch order.Status {
	case "COMPLETED":
		if conf.CaptureID == "" {
			return nil, &GatewayError{Gateway: GatewayPayPal, StatusCode: http.StatusOK, Body: "completed order missing capture id"}
		}
		conf.State = StateCaptured
	case "APPROVED", "SAVED":
		conf.State = StateAuthorized
	case "CREATED", "PAYER_ACTION_REQUIRED":
		conf.State = StateInitiated
	default:
		conf.State = StateFailed
	}

	return conf, nil
}

func (p *PayPal) Refund(ctx context.Context, reference string, amountCents int64) (*RefundResult, error) {
	payload := map[string]interface{}{}
	if amountCents > 0 {
		rate, err := p.fx.SARToUSD()
		if err != nil {
			return nil, err
		}
		payload["amount"] = map[string]string{
			"currency_code": "USD",
			"value":         HalalasToUSD(amountCents, rate).StringFixed(2),
		}
	}

	var out struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	// reference here is the capture id, not the order id.
	if err := p.do(ctx, http.MethodPost, "/v2/payments/captures/"+reference+"/refund", payload, &out); err != nil {
		return nil, err
	}

	return &RefundResult{
		Gateway:     GatewayPayPal,
		Reference:   reference,
		RefundID:    out.ID,
		State:       StateRefunded,
		AmountMinor: amountCents,
	}, nil
}

var _ Adapter = (*PayPal)(nil)
