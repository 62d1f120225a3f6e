package booking

import (
	"errors"
	"net/http"
	"strconv"

	"mawid/internal/auth"
	"mawid/internal/provider"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// actionTargets maps the URL action verbs to lifecycle statuses. Cancel is
// handled separately because the target depends on who is cancelling.
var actionTargets = map[string]Status{
	"accept":   StatusAccepted,
	"reject":   StatusRejected,
	"start":    StatusInProgress,
	"complete": StatusCompleted,
	"no-show":  StatusNoShow,
	"dispute":  StatusDisputed,
}

// Create godoc
// @Summary      Request a booking
// @Description  Creates a PENDING booking for an active service offering. The provider has 24 hours to respond.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateRequest  true  "Booking request"
// @Success      201      {object}  Booking
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTimeRange), errors.Is(err, ErrPastBooking), errors.Is(err, ErrOfferingInactive):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, provider.ErrOfferingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, b)
}

// Transition godoc
// @Summary      Move a booking through its lifecycle
// @Description  Applies one of accept, reject, start, complete, no-show, dispute or cancel to a booking.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int     true  "Booking ID"
// @Param        action     path      string  true  "Lifecycle action"
// @Success      200        {object}  Booking
// @Failure      403        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Failure      409        {object}  gin.H
// @Router       /bookings/{bookingID}/{action} [post]
func (h *Handler) Transition(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetUserRole(c)

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	action := c.Param("action")
	target, ok := actionTargets[action]
	if action == "cancel" {
		ok = true
		if role == auth.RoleProvider {
			target = StatusCancelledByProvider
		} else {
			target = StatusCancelledByClient
		}
	}
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
		return
	}

	b, err := h.service.Transition(c.Request.Context(), bookingID, target, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed to perform this action"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking cannot move to " + string(target) + " from its current status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// Get godoc
// @Summary      Get a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  BookingWithParties
// @Failure      403        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /bookings/{bookingID} [get]
func (h *Handler) Get(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	role, _ := auth.GetUserRole(c)

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	b, err := h.service.Get(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		case errors.Is(err, ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this booking"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		}
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListMine godoc
// @Summary      List my bookings as a client
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithParties
// @Router       /bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookings, err := h.service.ListForClient(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListForProvider godoc
// @Summary      List bookings for my provider profile
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithParties
// @Failure      404  {object}  gin.H
// @Router       /providers/me/bookings [get]
func (h *Handler) ListForProvider(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookings, err := h.service.ListForProviderUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, provider.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Provider profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}
