package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedFXSourceUnsetIsHardError(t *testing.T) {
	_, err := NewFixedFXSource(0).SARToUSD()
	assert.ErrorIs(t, err, ErrFXRateUnavailable)

	_, err = NewFixedFXSource(-1).SARToUSD()
	assert.ErrorIs(t, err, ErrFXRateUnavailable)

	rate, err := NewFixedFXSource(0.2666).SARToUSD()
	require.NoError(t, err)
	assert.Equal(t, "0.2666", rate.String())
}

func TestPayPalMetaWithoutRateFailsNotDefaults(t *testing.T) {
	p := NewPayPal("id", "secret", "http://unused", NewFixedFXSource(0))

	_, err := p.Meta(10000)
	assert.ErrorIs(t, err, ErrFXRateUnavailable)

	// CreateIntent must fail before any network call is attempted.
	_, err = p.CreateIntent(context.Background(), IntentRequest{AmountCents: 10000})
	assert.ErrorIs(t, err, ErrFXRateUnavailable)
}

func TestPayPalMetaConversion(t *testing.T) {
	p := NewPayPal("id", "secret", "http://unused", NewFixedFXSource(0.2666))

	meta, err := p.Meta(10000)
	require.NoError(t, err)
	assert.Equal(t, "26.66", meta.AmountUSD)
	assert.Equal(t, "0.2666", meta.FXRate)
	assert.Equal(t, "USD", meta.Currency)
}

func TestMoyasarCreateIntentSendsHalalasAndBasicAuth(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/invoices", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "inv_123",
			"status":   "initiated",
			"amount":   14950,
			"currency": "SAR",
			"url":      "https://checkout.example/inv_123",
		})
	}))
	defer srv.Close()

	m := NewMoyasar("sk_test_key", srv.URL, "https://app.example/callback")

	intent, err := m.CreateIntent(context.Background(), IntentRequest{
		AmountCents: 14950,
		OrderID:     "order-1",
		Description: "Deep Clean",
	})
	require.NoError(t, err)

	assert.Equal(t, "inv_123", intent.Reference)
	assert.Equal(t, StateInitiated, intent.State)
	assert.Equal(t, "https://checkout.example/inv_123", intent.CheckoutURL)
	assert.Equal(t, int64(14950), intent.AmountMinor)

	assert.Equal(t, float64(14950), gotBody["amount"])
	assert.Equal(t, "SAR", gotBody["currency"])

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("sk_test_key:"))
	assert.Equal(t, wantAuth, gotAuth)
}

func TestMoyasarErrorPreservesGatewayBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"amount must be a positive integer"}`))
	}))
	defer srv.Close()

	m := NewMoyasar("sk_test_key", srv.URL, "")

	_, err := m.CreateIntent(context.Background(), IntentRequest{AmountCents: -1})
	require.Error(t, err)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, GatewayMoyasar, gwErr.Gateway)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Contains(t, gwErr.Body, "amount must be a positive integer")
}

func TestMoyasarConfirmNormalizesStatuses(t *testing.T) {
	status := "paid"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/v1/payments/"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "pay_1",
			"status":   status,
			"amount":   14950,
			"currency": "SAR",
		})
	}))
	defer srv.Close()

	m := NewMoyasar("sk", srv.URL, "")

	conf, err := m.ConfirmOrAuthorize(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, StateCaptured, conf.State)
	assert.Equal(t, "pay_1", conf.CaptureID)

	status = "authorized"
	conf, err = m.ConfirmOrAuthorize(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, StateAuthorized, conf.State)
	assert.Equal(t, "pay_1", conf.AuthorizationID)
	assert.Empty(t, conf.CaptureID)

	status = "failed"
	conf, err = m.ConfirmOrAuthorize(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, conf.State)
}

func TestPayPalCaptureMissingCaptureIDIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
			return
		}
		// COMPLETED but no capture id in purchase_units.
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "ord_1",
			"status": "COMPLETED",
		})
	}))
	defer srv.Close()

	p := NewPayPal("id", "secret", srv.URL, NewFixedFXSource(0.2666))

	_, err := p.ConfirmOrAuthorize(context.Background(), "ord_1")
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, GatewayPayPal, gwErr.Gateway)
}

func TestStripeCreateIntentFormEncoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "14950", r.PostForm.Get("amount"))
		assert.Equal(t, "sar", r.PostForm.Get("currency"))
		assert.Equal(t, "order-1", r.PostForm.Get("metadata[order_id]"))
		assert.Equal(t, "Bearer sk_stripe", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":            "pi_1",
			"status":        "requires_payment_method",
			"amount":        14950,
			"currency":      "sar",
			"client_secret": "pi_1_secret",
		})
	}))
	defer srv.Close()

	s := NewStripe("sk_stripe", srv.URL)

	intent, err := s.CreateIntent(context.Background(), IntentRequest{
		AmountCents: 14950,
		OrderID:     "order-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", intent.Reference)
	assert.Equal(t, StateInitiated, intent.State)
	assert.Equal(t, "SAR", intent.Currency)
}
