package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"mawid/internal/api"
	"mawid/internal/auth"
	"mawid/internal/booking"
	"mawid/internal/logger"
	"mawid/internal/payment/gateway"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service       *Service
	payments      Repository
	bookings      booking.Repository
	moyasar       *gateway.Moyasar
	paypal        *gateway.PayPal
	webhookSecret string
	applePayName  string
	applePayHost  string
}

func NewHandler(service *Service, payments Repository, bookings booking.Repository,
	moyasar *gateway.Moyasar, paypal *gateway.PayPal, webhookSecret, applePayName, applePayHost string) *Handler {
	return &Handler{
		service:       service,
		payments:      payments,
		bookings:      bookings,
		moyasar:       moyasar,
		paypal:        paypal,
		webhookSecret: webhookSecret,
		applePayName:  applePayName,
		applePayHost:  applePayHost,
	}
}

type createCheckoutRequest struct {
	BookingID int `json:"booking_id" binding:"required"`
}

func (h *Handler) createCheckout(c *gin.Context, gatewayName string) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateCheckout(c.Request.Context(), gatewayName, req.BookingID, userID)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *Handler) writePaymentError(c *gin.Context, err error) {
	var gwErr *gateway.GatewayError
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, ErrNotBookingClient):
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the booking client can pay"})
	case errors.Is(err, ErrNotPayable), errors.Is(err, ErrAlreadyCaptured), errors.Is(err, ErrNotRefundable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrRefundTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrFXRateUnavailable):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Currency conversion is not configured"})
	case errors.As(err, &gwErr):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":          "Payment gateway rejected the request",
			"gateway":        gwErr.Gateway,
			"gateway_status": gwErr.StatusCode,
			"gateway_body":   gwErr.Body,
		})
	case errors.Is(err, ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment operation failed"})
	}
}

// CreateMoyasarPayment godoc
// @Summary      Create Moyasar hosted checkout
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      createCheckoutRequest  true  "Booking to pay for"
// @Success      201      {object}  CheckoutResult
// @Failure      409      {object}  gin.H
// @Router       /payments/moyasar [post]
func (h *Handler) CreateMoyasarPayment(c *gin.Context) {
	h.createCheckout(c, gateway.GatewayMoyasar)
}

// CreatePayPalOrder godoc
// @Summary      Create PayPal order
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      createCheckoutRequest  true  "Booking to pay for"
// @Success      201      {object}  CheckoutResult
// @Failure      409      {object}  gin.H
// @Router       /payments/paypal [post]
func (h *Handler) CreatePayPalOrder(c *gin.Context) {
	h.createCheckout(c, gateway.GatewayPayPal)
}

// CreateStripeIntent godoc
// @Summary      Create Stripe PaymentIntent
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      createCheckoutRequest  true  "Booking to pay for"
// @Success      201      {object}  CheckoutResult
// @Failure      409      {object}  gin.H
// @Router       /payments/stripe [post]
func (h *Handler) CreateStripeIntent(c *gin.Context) {
	h.createCheckout(c, gateway.GatewayStripe)
}

// GetMoyasarPayment godoc
// @Summary      Fetch a Moyasar payment
// @Description  Proxies the raw gateway payment object.
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Moyasar payment ID"
// @Success      200  {object}  object
// @Router       /payments/moyasar/{id} [get]
func (h *Handler) GetMoyasarPayment(c *gin.Context) {
	raw, err := h.moyasar.FetchPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", raw)
}

type refundRequest struct {
	// Amount is in SAR. Zero or absent means a full refund.
	Amount float64 `json:"amount"`
}

// RefundMoyasarPayment godoc
// @Summary      Refund a Moyasar payment
// @Description  Admin only. Amount is in SAR and converted to halalas.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string         true   "Moyasar payment ID"
// @Param        request  body      refundRequest  false  "Refund amount"
// @Success      200      {object}  Payment
// @Failure      409      {object}  gin.H
// @Router       /payments/moyasar/{id}/refund [post]
func (h *Handler) RefundMoyasarPayment(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.payments.GetByGatewayRef(c.Request.Context(), gateway.GatewayMoyasar, c.Param("id"))
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	amountCents := int64(0)
	if req.Amount > 0 {
		amountCents = gateway.SARFloatToHalalas(req.Amount)
	}

	refunded, err := h.service.RecordRefund(c.Request.Context(), p.ID, amountCents)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, refunded)
}

type applePaySessionRequest struct {
	ValidationURL string `json:"validation_url" binding:"required"`
}

// ApplePaySession godoc
// @Summary      Apple Pay merchant validation
// @Description  Proxies merchant validation through Moyasar so the client never holds the certificate.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      applePaySessionRequest  true  "Apple validation URL"
// @Success      200      {object}  object
// @Router       /payments/moyasar/apple-pay-session [post]
func (h *Handler) ApplePaySession(c *gin.Context) {
	var req applePaySessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.moyasar.InitiateApplePaySession(c.Request.Context(), req.ValidationURL, h.applePayName, h.applePayHost)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.Data(http.StatusOK, "application/json", session)
}

// PayPalOrderMeta godoc
// @Summary      PayPal order metadata
// @Description  Returns the USD amount and FX rate for a booking's price. Fails hard when no rate is configured.
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        booking_id  query     int  true  "Booking ID"
// @Success      200         {object}  gateway.OrderMeta
// @Failure      500         {object}  gin.H
// @Router       /payments/paypal/order-meta [get]
func (h *Handler) PayPalOrderMeta(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Query("booking_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking_id"})
		return
	}

	b, err := h.bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	meta, err := h.paypal.Meta(b.PriceCents)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, meta)
}

// verifySignature checks the HMAC-SHA256 hex signature over the raw body.
// An unset secret disables verification (local development).
func (h *Handler) verifySignature(body []byte, signature string) bool {
	if h.webhookSecret == "" {
		return true
	}

	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// webhook is the shared webhook flow. Gateways retry aggressively on non-2xx,
// so every outcome acks; failures are logged, never returned.
func (h *Handler) webhook(c *gin.Context, gatewayName string, extractRef func([]byte) string) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, api.WebhookAck{Received: true})
		return
	}

	if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
		logger.Error("Webhook signature mismatch", "gateway", gatewayName)
		c.JSON(http.StatusOK, api.WebhookAck{Received: true})
		return
	}

	reference := extractRef(body)
	if reference == "" {
		logger.Info("Webhook without payment reference", "gateway", gatewayName)
		c.JSON(http.StatusOK, api.WebhookAck{Received: true})
		return
	}

	if err := h.service.HandleGatewayEvent(c.Request.Context(), gatewayName, reference); err != nil {
		logger.Errorf("Webhook processing failed for %s %s: %v", gatewayName, reference, err)
	}

	c.JSON(http.StatusOK, api.WebhookAck{Received: true})
}

// MoyasarWebhook godoc
// @Summary      Moyasar webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.WebhookAck
// @Router       /webhooks/moyasar [post]
func (h *Handler) MoyasarWebhook(c *gin.Context) {
	h.webhook(c, gateway.GatewayMoyasar, func(body []byte) string {
		var payload struct {
			ID   string `json:"id"`
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return ""
		}
		if payload.Data.ID != "" {
			return payload.Data.ID
		}
		return payload.ID
	})
}

// PayPalWebhook godoc
// @Summary      PayPal webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.WebhookAck
// @Router       /webhooks/paypal [post]
func (h *Handler) PayPalWebhook(c *gin.Context) {
	h.webhook(c, gateway.GatewayPayPal, func(body []byte) string {
		var payload struct {
			Resource struct {
				ID                string `json:"id"`
				SupplementaryData struct {
					RelatedIDs struct {
						OrderID string `json:"order_id"`
					} `json:"related_ids"`
				} `json:"supplementary_data"`
			} `json:"resource"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return ""
		}
		if payload.Resource.SupplementaryData.RelatedIDs.OrderID != "" {
			return payload.Resource.SupplementaryData.RelatedIDs.OrderID
		}
		return payload.Resource.ID
	})
}

// StripeWebhook godoc
// @Summary      Stripe webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  api.WebhookAck
// @Router       /webhooks/stripe [post]
func (h *Handler) StripeWebhook(c *gin.Context) {
	h.webhook(c, gateway.GatewayStripe, func(body []byte) string {
		var payload struct {
			Data struct {
				Object struct {
					ID string `json:"id"`
				} `json:"object"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return ""
		}
		return payload.Data.Object.ID
	})
}

// ListBookingPayments godoc
// @Summary      List payments for a booking
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {array}   Payment
// @Router       /bookings/{bookingID}/payments [get]
func (h *Handler) ListBookingPayments(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	payments, err := h.payments.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
