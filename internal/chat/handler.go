package chat

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

// OpenThread godoc
// @Summary      Open the chat thread for a booking
// @Description  Returns the booking's thread, creating it on first use. Participants only.
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Thread
// @Failure      403        {object}  gin.H
// @Router       /bookings/{bookingID}/chat [post]
func (h *Handler) OpenThread(c *gin.Context) {
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

	// Authorize before any row exists; strangers must not be able to
	// materialize threads for other people's bookings.
	ok, err := h.repo.IsBookingParticipant(c.Request.Context(), bookingID, userID)
	if err != nil || !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this booking"})
		return
	}

	thread, err := h.repo.GetOrCreateThread(c.Request.Context(), bookingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open chat"})
		return
	}

	c.JSON(http.StatusOK, thread)
}

// ListThreads godoc
// @Summary      List my chat threads
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   ThreadWithBooking
// @Router       /chats [get]
func (h *Handler) ListThreads(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	threads, err := h.repo.ListThreadsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	c.JSON(http.StatusOK, threads)
}

func (h *Handler) threadForParticipant(c *gin.Context) (int, int, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, 0, false
	}

	threadID, err := strconv.Atoi(c.Param("threadID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid thread ID"})
		return 0, 0, false
	}

	if _, err := h.repo.GetThread(c.Request.Context(), threadID); err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Chat not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat"})
		}
		return 0, 0, false
	}

	ok, err := h.repo.IsParticipant(c.Request.Context(), threadID, userID)
	if err != nil || !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this chat"})
		return 0, 0, false
	}

	return threadID, userID, true
}

// ListMessages godoc
// @Summary      List messages in a thread
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        threadID  path      int  true  "Thread ID"
// @Success      200       {array}   MessageWithSender
// @Failure      403       {object}  gin.H
// @Router       /chats/{threadID}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	threadID, _, ok := h.threadForParticipant(c)
	if !ok {
		return
	}

	messages, err := h.repo.ListMessages(c.Request.Context(), threadID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage godoc
// @Summary      Send a message
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        threadID  path      int                 true  "Thread ID"
// @Param        request   body      SendMessageRequest  true  "Message"
// @Success      201       {object}  Message
// @Failure      403       {object}  gin.H
// @Router       /chats/{threadID}/messages [post]
func (h *Handler) SendMessage(c *gin.Context) {
	threadID, userID, ok := h.threadForParticipant(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message, err := h.repo.CreateMessage(c.Request.Context(), threadID, userID, req.Body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusCreated, message)
}
