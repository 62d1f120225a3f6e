package provider

import (
	"net/http"
	"strconv"

	"mawid/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateProfile godoc
// @Summary      Create provider profile
// @Description  Creates the public listing for the authenticated provider.
// @Tags         providers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateProfileRequest  true  "Profile data"
// @Success      201      {object}  Profile
// @Failure      400      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /providers [post]
func (h *Handler) CreateProfile(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if existing, err := h.repo.GetProfileByUserID(c.Request.Context(), userID); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Provider profile already exists"})
		return
	}

	profile, err := h.repo.CreateProfile(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create profile"})
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// ListProfiles godoc
// @Summary      List providers
// @Description  Lists provider profiles, optionally filtered by city and category.
// @Tags         providers
// @Produce      json
// @Param        city         query     string  false  "City filter"
// @Param        category_id  query     int     false  "Category filter"
// @Success      200          {array}   ProfileWithCategory
// @Failure      500          {object}  gin.H
// @Router       /providers [get]
func (h *Handler) ListProfiles(c *gin.Context) {
	city := c.Query("city")
	categoryID, _ := strconv.Atoi(c.DefaultQuery("category_id", "0"))

	profiles, err := h.repo.ListProfiles(c.Request.Context(), city, categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch providers"})
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetProfile godoc
// @Summary      Get provider
// @Tags         providers
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {object}  Profile
// @Failure      404         {object}  gin.H
// @Router       /providers/{providerID} [get]
func (h *Handler) GetProfile(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider ID"})
		return
	}

	profile, err := h.repo.GetProfileByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// CreateOffering godoc
// @Summary      Add service offering
// @Description  Adds a bookable service to the authenticated provider's catalog.
// @Tags         providers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateOfferingRequest  true  "Offering data"
// @Success      201      {object}  Offering
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Router       /providers/me/services [post]
func (h *Handler) CreateOffering(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.repo.GetProfileByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Create a provider profile first"})
		return
	}

	offering, err := h.repo.CreateOffering(c.Request.Context(), profile.ID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create offering"})
		return
	}

	c.JSON(http.StatusCreated, offering)
}

// ListOfferings godoc
// @Summary      List provider's services
// @Tags         providers
// @Produce      json
// @Param        providerID  path      int  true  "Provider ID"
// @Success      200         {array}   Offering
// @Failure      400         {object}  gin.H
// @Router       /providers/{providerID}/services [get]
func (h *Handler) ListOfferings(c *gin.Context) {
	providerID, err := strconv.Atoi(c.Param("providerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid provider ID"})
		return
	}

	offerings, err := h.repo.ListOfferingsByProvider(c.Request.Context(), providerID, true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, offerings)
}

// DeactivateOffering godoc
// @Summary      Deactivate service offering
// @Tags         providers
// @Security     BearerAuth
// @Produce      json
// @Param        serviceID  path      int  true  "Service ID"
// @Success      200        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /providers/me/services/{serviceID} [delete]
func (h *Handler) DeactivateOffering(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	serviceID, err := strconv.Atoi(c.Param("serviceID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID"})
		return
	}

	profile, err := h.repo.GetProfileByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider profile not found"})
		return
	}

	if err := h.repo.DeactivateOffering(c.Request.Context(), profile.ID, serviceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found or already inactive"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Service deactivated"})
}

// CreateCategory godoc
// @Summary      Create category
// @Description  Admin only.
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateCategoryRequest  true  "Category data"
// @Success      201      {object}  Category
// @Failure      400      {object}  gin.H
// @Router       /admin/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.repo.CreateCategory(c.Request.Context(), req.Name, req.Slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	c.JSON(http.StatusCreated, category)
}

// ListCategories godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}   Category
// @Router       /categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.repo.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, categories)
}
