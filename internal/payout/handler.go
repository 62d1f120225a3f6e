package payout

import (
	"errors"
	"net/http"

	"mawid/internal/auth"
	"mawid/internal/provider"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo      Repository
	providers provider.Repository
}

func NewHandler(repo Repository, providers provider.Repository) *Handler {
	return &Handler{repo: repo, providers: providers}
}

// Balance godoc
// @Summary      Get payout balance
// @Description  Returns the authenticated provider's earnings balance.
// @Tags         payouts
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Account
// @Failure      404  {object}  gin.H
// @Router       /payouts/balance [get]
func (h *Handler) Balance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	profile, err := h.providers.GetProfileByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider profile not found"})
		return
	}

	account, err := h.repo.GetAccount(c.Request.Context(), profile.ID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// No captures yet: present an empty balance instead of a 404.
			c.JSON(http.StatusOK, Account{ProviderID: profile.ID})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch balance"})
		return
	}

	c.JSON(http.StatusOK, account)
}

// Transactions godoc
// @Summary      List payout transactions
// @Tags         payouts
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Transaction
// @Failure      404  {object}  gin.H
// @Router       /payouts/transactions [get]
func (h *Handler) Transactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	profile, err := h.providers.GetProfileByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider profile not found"})
		return
	}

	txs, err := h.repo.ListTransactions(c.Request.Context(), profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		return
	}

	c.JSON(http.StatusOK, txs)
}
