package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crewlink/crewlink-api/internal/models"
	"github.com/crewlink/crewlink-api/pkg/response"
)

type statsService interface {
	Snapshot(ctx context.Context) (*models.SystemStats, bool, error)
}

// StatsHandler exposes the dashboard counters endpoint.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

// Get godoc
// @Summary Fetch system-wide dashboard counters
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, cacheHit, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cache_hit": cacheHit})
}
