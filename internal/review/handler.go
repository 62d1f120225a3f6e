package review

import (
	"errors"
	"net/http"
	"strconv"

	"mawid/internal/auth"
	"mawid/internal/booking"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo     Repository
	bookings booking.Repository
}

func NewHandler(repo Repository, bookings booking.Repository) *Handler {
	return &Handler{repo: repo, bookings: bookings}
}

// Create godoc
// @Summary      Review a completed booking
// @Description  One review per booking, written by the client after completion.
// @Tags         reviews
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int            true  "Booking ID"
// @Param        request    body      CreateRequest  true  "Review"
// @Success      201        {object}  Review
// @Failure      403        {object}  gin.H
// @Failure      409        {object}  gin.H
// @Router       /bookings/{bookingID}/review [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	if b.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the booking client can review"})
		return
	}
	if b.Status != booking.StatusCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "Only completed bookings can be reviewed"})
		return
	}

	created, err := h.repo.Create(c.Request.Context(), &Review{
		BookingID:  bookingID,
		ClientID:   userID,
		ProviderID: b.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			c.JSON(http.StatusConflict, gin.H{"error": "Booking already has a review"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListForProvider godoc
// @Summary      List a provider's reviews
// @Tags         reviews
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {object}  gin.H
// @Router       /providers/{providerID}/reviews [get]
func (h *Handler) ListForProvider(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider ID"})
		return
	}

	reviews, err := h.repo.ListByProvider(c.Request.Context(), providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	summary, err := h.repo.ProviderSummary(c.Request.Context(), providerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary, "reviews": reviews})
}
