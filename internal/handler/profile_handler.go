package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
	"github.com/crewlink/crewlink-api/pkg/response"
)

type profileService interface {
	Register(ctx context.Context, req dto.RegisterProfileRequest, actor *models.JWTClaims) (*models.Profile, error)
	Get(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, query dto.ProfileQuery) ([]models.Profile, *models.Pagination, error)
	SetAvailability(ctx context.Context, id string, status models.AvailabilityStatus, actor *models.JWTClaims) (*models.Profile, error)
}

// ProfileHandler exposes the directory profile endpoints.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Register godoc
// @Summary Register a new profile
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body dto.RegisterProfileRequest true "Profile data"
// @Success 201 {object} response.Envelope
// @Router /profiles [post]
func (h *ProfileHandler) Register(c *gin.Context) {
	var req dto.RegisterProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid profile payload"))
		return
	}

	profile, err := h.service.Register(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Get godoc
// @Summary Fetch a profile by id
// @Tags Profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// List godoc
// @Summary List profiles
// @Tags Profiles
// @Produce json
// @Param role query string false "Filter by role"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles [get]
func (h *ProfileHandler) List(c *gin.Context) {
	query := dto.ProfileQuery{
		Role:     c.Query("role"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}

	profiles, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profiles, pagination)
}

// SetAvailability godoc
// @Summary Toggle a seafarer's availability
// @Tags Profiles
// @Accept json
// @Produce json
// @Param id path string true "Profile ID"
// @Param payload body dto.SetAvailabilityRequest true "New availability"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /profiles/{id}/availability [patch]
func (h *ProfileHandler) SetAvailability(c *gin.Context) {
	var req dto.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid availability payload"))
		return
	}

	profile, err := h.service.SetAvailability(c.Request.Context(), c.Param("id"), req.AvailabilityStatus, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
