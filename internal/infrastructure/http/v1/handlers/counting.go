package handlers

import (
	"github.com/gin-gonic/gin"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/workflow"
	"countflow/internal/infrastructure/http/v1/dto"
)

// CountingHandler exposes dynamic counting pass sequencing.
type CountingHandler struct {
	*BaseHandler
	sequencer *workflow.Sequencer
}

// NewCountingHandler creates a new counting handler.
func NewCountingHandler(sequencer *workflow.Sequencer) *CountingHandler {
	return &CountingHandler{
		BaseHandler: NewBaseHandler(),
		sequencer:   sequencer,
	}
}

// LaunchNext handles POST /countings/launch-next.
// Launches the next counting pass (order 3 and beyond) for a job/location.
func (h *CountingHandler) LaunchNext(c *gin.Context) {
	var req dto.LaunchCountingRequest
	if !h.BindJSON(c, &req) {
		return
	}

	jobID, err := id.Parse(req.JobID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "jobId"))
		return
	}
	locationID, err := id.Parse(req.LocationID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "locationId"))
		return
	}
	operatorID, err := id.Parse(req.OperatorID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "operatorId"))
		return
	}

	result, err := h.sequencer.LaunchNextCounting(c.Request.Context(), jobID, locationID, operatorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
