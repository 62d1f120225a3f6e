package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"mawid/internal/logger"
)

// Moyasar is the primary SAR gateway. Hosted checkout happens through
// invoices; amounts are always halalas on the wire.
type Moyasar struct {
	apiKey      string
	baseURL     string
	callbackURL string
	client      *http.Client
}

func NewMoyasar(apiKey, baseURL, callbackURL string) *Moyasar {
	if baseURL == "" {
		baseURL = "https://api.moyasar.com"
	}
	return &Moyasar{
		apiKey:      apiKey,
		baseURL:     baseURL,
		callbackURL: callbackURL,
		client:      newHTTPClient(),
	}
}

type moyasarInvoiceReq struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type moyasarInvoice struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	URL      string `json:"url"`
}

type moyasarPayment struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Source   struct {
		TransactionURL string `json:"transaction_url"`
	} `json:"source"`
}

type moyasarRefund struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Refunded int64  `json:"refunded"`
}

func (m *Moyasar) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(m.apiKey, "")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &GatewayError{Gateway: GatewayMoyasar, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		return json.Unmarshal(respBody, out)
	}
	return nil
}

func (m *Moyasar) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	payload := moyasarInvoiceReq{
		Amount:      req.AmountCents,
		Currency:    "SAR",
		Description: req.Description,
		CallbackURL: m.callbackURL,
		Metadata:    req.Metadata,
	}

	var inv moyasarInvoice
	if err := m.do(ctx, http.MethodPost, "/v1/invoices", payload, &inv); err != nil {
		return nil, err
	}
	if inv.ID == "" {
		return nil, &GatewayError{Gateway: GatewayMoyasar, StatusCode: http.StatusOK, Body: "invoice response missing id"}
	}

	logger.Info("Moyasar invoice created", "invoice_id", inv.ID, "amount", inv.Amount)

	return &Intent{
		Gateway:     GatewayMoyasar,
		Reference:   inv.ID,
		State:       StateInitiated,
		CheckoutURL: inv.URL,
		AmountMinor: inv.Amount,
		Currency:    inv.Currency,
	}, nil
}

func (m *Moyasar) ConfirmOrAuthorize(ctx context.Context, reference string) (*Confirmation, error) {
	var p moyasarPayment
	if err := m.do(ctx, http.MethodGet, "/v1/payments/"+reference, nil, &p); err != nil {
		return nil, err
	}
	if p.ID == "" {
		return nil, &GatewayError{Gateway: GatewayMoyasar, StatusCode: http.StatusOK, Body: "payment response missing id"}
	}

	state := StateFailed
	conf := &Confirmation{
		Gateway:     GatewayMoyasar,
		Reference:   p.ID,
		AmountMinor: p.Amount,
		Currency:    p.Currency,
	}

	switch p.Status {
	case "paid", "captured":
		state = StateCaptured
		conf.CaptureID = p.ID
	case "authorized":
		state = StateAuthorized
		conf.AuthorizationID = p.ID
	case "initiated":
		state = StateInitiated
	case "refunded":
		state = StateRefunded
	}
	conf.State = state

	return conf, nil
}

func (m *Moyasar) Refund(ctx context.Context, reference string, amountCents int64) (*RefundResult, error) {
	payload := map[string]int64{}
	if amountCents > 0 {
		payload["amount"] = amountCents
	}

	var r moyasarRefund
	if err := m.do(ctx, http.MethodPost, "/v1/payments/"+reference+"/refund", payload, &r); err != nil {
		return nil, err
	}

	refunded := r.Refunded
	if refunded == 0 {
		refunded = r.Amount
	}

	return &RefundResult{
		Gateway:     GatewayMoyasar,
		Reference:   reference,
		RefundID:    r.ID,
		State:       StateRefunded,
		AmountMinor: refunded,
	}, nil
}

// FetchPayment proxies the raw gateway payment object for the client app.
func (m *Moyasar) FetchPayment(ctx context.Context, reference string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/v1/payments/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(m.apiKey, "")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{Gateway: GatewayMoyasar, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return json.RawMessage(respBody), nil
}

// InitiateApplePaySession performs Apple Pay merchant validation through
// Moyasar so the client never sees the merchant certificate.
func (m *Moyasar) InitiateApplePaySession(ctx context.Context, validationURL, displayName, domainName string) (json.RawMessage, error) {
	payload := map[string]string{
		"validation_url": validationURL,
		"display_name":   displayName,
		"domain_name":    domainName,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/applepay/initiate", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(m.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{Gateway: GatewayMoyasar, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	logger.Info("Apple Pay session initiated", "domain", domainName)
	return json.RawMessage(respBody), nil
}

var _ Adapter = (*Moyasar)(nil)
