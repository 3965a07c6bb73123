package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/crewlink/crewlink-api/internal/dto"
	"github.com/crewlink/crewlink-api/internal/models"
	appErrors "github.com/crewlink/crewlink-api/pkg/errors"
	"github.com/crewlink/crewlink-api/pkg/response"
)

type employmentService interface {
	Submit(ctx context.Context, req dto.SubmitEmploymentRequest, actor *models.JWTClaims) (*models.EmploymentRecord, error)
	List(ctx context.Context, query dto.EmploymentQuery) ([]models.EmploymentRecord, error)
	ListPending(ctx context.Context) ([]models.EmploymentRecord, error)
	ExportCSV(ctx context.Context, query dto.EmploymentQuery) ([]byte, error)
}

type verificationService interface {
	Decide(ctx context.Context, recordID string, outcome models.VerificationStatus, reason string, actor *models.JWTClaims) (*models.EmploymentRecord, error)
}

// EmploymentHandler exposes the employment ledger and verification endpoints.
type EmploymentHandler struct {
	ledger       employmentService
	verification verificationService
}

// NewEmploymentHandler constructs the handler.
func NewEmploymentHandler(ledger employmentService, verification verificationService) *EmploymentHandler {
	return &EmploymentHandler{ledger: ledger, verification: verification}
}

// Submit godoc
// @Summary Report a sign-on or sign-off event
// @Tags Employment
// @Accept json
// @Produce json
// @Param payload body dto.SubmitEmploymentRequest true "Employment event"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /employment-records [post]
func (h *EmploymentHandler) Submit(c *gin.Context) {
	var req dto.SubmitEmploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid employment record payload"))
		return
	}

	record, err := h.ledger.Submit(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List ledger entries in submission order
// @Tags Employment
// @Produce json
// @Param seafarer_id query string false "Filter by seafarer"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /employment-records [get]
func (h *EmploymentHandler) List(c *gin.Context) {
	query := dto.EmploymentQuery{
		SeafarerID: c.Query("seafarer_id"),
		Limit:      intQuery(c, "limit", 0),
		Offset:     intQuery(c, "offset", 0),
	}

	records, err := h.ledger.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// ListPending godoc
// @Summary List the pending verification queue
// @Tags Employment
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /employment-records/pending [get]
func (h *EmploymentHandler) ListPending(c *gin.Context) {
	records, err := h.ledger.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Export godoc
// @Summary Export the ledger as CSV
// @Tags Employment
// @Produce text/csv
// @Param seafarer_id query string false "Filter by seafarer"
// @Success 200 {string} string "CSV payload"
// @Security BearerAuth
// @Router /employment-records/export [get]
func (h *EmploymentHandler) Export(c *gin.Context) {
	query := dto.EmploymentQuery{
		SeafarerID: c.Query("seafarer_id"),
		Limit:      intQuery(c, "limit", 0),
	}

	payload, err := h.ledger.ExportCSV(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("employment-records-%s.csv", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv", payload)
}

// Decide godoc
// @Summary Verify or flag a pending employment record
// @Tags Employment
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body dto.DecideEmploymentRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /employment-records/{id}/decision [post]
func (h *EmploymentHandler) Decide(c *gin.Context) {
	var req dto.DecideEmploymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}

	record, err := h.verification.Decide(c.Request.Context(), c.Param("id"), req.Outcome, req.Reason, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}
