package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
	"github.com/crewlink/crewlink-api/pkg/response"
)

type contactService interface {
	Request(ctx context.Context, requesterID, seafarerID string, actor *models.JWTClaims) (*models.ContactRequest, error)
	Review(ctx context.Context, requestID string, outcome models.RequestStatus, actor *models.JWTClaims) (*models.ContactRequest, error)
	List(ctx context.Context, actor *models.JWTClaims) ([]models.ContactRequest, error)
}

// ContactHandler exposes the contact request broker endpoints.
type ContactHandler struct {
	service contactService
}

// NewContactHandler constructs the handler.
func NewContactHandler(service contactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Create godoc
// @Summary Request access to a seafarer's contact details
// @Tags Contacts
// @Accept json
// @Produce json
// @Param payload body dto.CreateContactRequest true "Target seafarer"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /contact-requests [post]
func (h *ContactHandler) Create(c *gin.Context) {
	var req dto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid contact request payload"))
		return
	}

	actor := claimsFromContext(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.service.Request(c.Request.Context(), actor.UserID, req.SeafarerID, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// List godoc
// @Summary List contact requests visible to the caller
// @Tags Contacts
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /contact-requests [get]
func (h *ContactHandler) List(c *gin.Context) {
	requests, err := h.service.List(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Review godoc
// @Summary Approve or reject a pending contact request
// @Tags Contacts
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body dto.ReviewContactRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /contact-requests/{id}/review [post]
func (h *ContactHandler) Review(c *gin.Context) {
	var req dto.ReviewContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
		return
	}

	request, err := h.service.Review(c.Request.Context(), c.Param("id"), req.Outcome, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
