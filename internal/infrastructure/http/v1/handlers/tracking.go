package handlers

import (
	"github.com/gin-gonic/gin"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/tracking"
)

// TrackingHandler exposes progress statistics.
type TrackingHandler struct {
	*BaseHandler
	service *tracking.Service
}

// NewTrackingHandler creates a new tracking handler.
func NewTrackingHandler(service *tracking.Service) *TrackingHandler {
	return &TrackingHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
	}
}

// JobProgress handles GET /inventories/:id/progress.
// Optional warehouseId query narrows the statistics to one warehouse.
func (h *TrackingHandler) JobProgress(c *gin.Context) {
	inventoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var warehouseID *id.ID
	if raw := c.Query("warehouseId"); raw != "" {
		parsed, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id format").WithDetail("param", "warehouseId"))
			return
		}
		warehouseID = &parsed
	}

	progress, err := h.service.JobProgress(c.Request.Context(), inventoryID, warehouseID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, progress)
}
