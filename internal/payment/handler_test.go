package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mawid/internal/booking"
	"mawid/internal/payment/gateway"
)

func newWebhookRouter(t *testing.T, secret string) (*gin.Engine, *MockPaymentRepo, *MockBookingRepo, *MockPayoutRepo, *MockAdapter, sqlmock.Sqlmock) {
	gin.SetMode(gin.TestMode)

	svc, payments, bookings, payouts, adapter, emails, mockDB := newTestService(t)
	allowReceipts(bookings, emails)

	h := NewHandler(svc, payments, bookings, nil, nil, secret, "", "")

	router := gin.New()
	router.POST("/webhooks/moyasar", h.MoyasarWebhook)

	return router, payments, bookings, payouts, adapter, mockDB
}

func postWebhook(router *gin.Engine, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/moyasar", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Webhook-Signature", signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhookReplayIsSafe(t *testing.T) {
	router, payments, bookings, payouts, adapter, mockDB := newWebhookRouter(t, "")

	body := `{"type":"payment_paid","data":{"id":"pay_1"}}`

	payments.On("GetByGatewayRef", mock.Anything, gateway.GatewayMoyasar, "pay_1").
		Return(&Payment{ID: 1, BookingID: 5, Gateway: gateway.GatewayMoyasar, AmountCents: 10000, OrderID: "ord-1"}, nil)
	adapter.On("ConfirmOrAuthorize", mock.Anything, "pay_1").
		Return(&gateway.Confirmation{Gateway: gateway.GatewayMoyasar, Reference: "pay_1",
			State: gateway.StateCaptured, CaptureID: "pay_1"}, nil)
	payments.On("GetByID", mock.Anything, 1).
		Return(&Payment{ID: 1, BookingID: 5, Gateway: gateway.GatewayMoyasar, AmountCents: 10000, OrderID: "ord-1"}, nil)
	bookings.On("GetByID", mock.Anything, 5).
		Return(&booking.Booking{ID: 5, ProviderID: 2, Status: booking.StatusPending}, nil)

	// First delivery applies the capture.
	mockDB.ExpectBegin()
	payments.On("CaptureTx", mock.Anything, mock.Anything, 1, "", "pay_1",
		mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Once()
	payouts.On("Credit", mock.Anything, mock.Anything, 2, mock.Anything, "ord-1").Return(nil).Once()
	bookings.On("UpdateStatusTx", mock.Anything, mock.Anything, 5, booking.StatusPending, booking.StatusAccepted).
		Return(true, nil).Once()
	mockDB.ExpectCommit()

	// Replay: conditional update matches nothing, everything else is skipped.
	mockDB.ExpectBegin()
	payments.On("CaptureTx", mock.Anything, mock.Anything, 1, "", "pay_1",
		mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	mockDB.ExpectRollback()

	first := postWebhook(router, body, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"received": true}`, first.Body.String())

	second := postWebhook(router, body, "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `{"received": true}`, second.Body.String())

	payouts.AssertNumberOfCalls(t, "Credit", 1)
	bookings.AssertNumberOfCalls(t, "UpdateStatusTx", 1)
}

func TestWebhookUnknownPayloadStillAcks(t *testing.T) {
	router, _, _, _, adapter, _ := newWebhookRouter(t, "")

	w := postWebhook(router, `{"hello":"world"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received": true}`, w.Body.String())
	adapter.AssertNotCalled(t, "ConfirmOrAuthorize", mock.Anything, mock.Anything)
}

func TestWebhookBadSignatureAcksWithoutProcessing(t *testing.T) {
	router, payments, _, _, _, _ := newWebhookRouter(t, "whsec")

	body := `{"id":"pay_1"}`

	w := postWebhook(router, body, "deadbeef")
	require.Equal(t, http.StatusOK, w.Code)
	payments.AssertNotCalled(t, "GetByGatewayRef", mock.Anything, mock.Anything, mock.Anything)

	// A correct signature goes through to the lookup.
	payments.On("GetByGatewayRef", mock.Anything, gateway.GatewayMoyasar, "pay_1").
		Return(nil, ErrPaymentNotFound)
	w = postWebhook(router, body, sign("whsec", body))
	require.Equal(t, http.StatusOK, w.Code)
	payments.AssertCalled(t, "GetByGatewayRef", mock.Anything, gateway.GatewayMoyasar, "pay_1")
}
