package handlers

import (
	"github.com/gin-gonic/gin"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/workflow"
	"countflow/internal/infrastructure/http/v1/dto"
)

// AssignmentHandler exposes job-to-counting assignment.
type AssignmentHandler struct {
	*BaseHandler
	engine *workflow.Engine
}

// NewAssignmentHandler creates a new assignment handler.
func NewAssignmentHandler(engine *workflow.Engine) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler: NewBaseHandler(),
		engine:      engine,
	}
}

// Assign handles POST /assignments.
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req dto.AssignJobsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	jobIDs, err := dto.ParseIDs("jobIds", req.JobIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	var operatorID *id.ID
	if req.OperatorID != nil {
		parsed, err := id.Parse(*req.OperatorID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "operatorId"))
			return
		}
		operatorID = &parsed
	}

	result, err := h.engine.AssignJobs(c.Request.Context(), jobIDs, req.CountingOrder, operatorID, req.DateStart)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, result)
}
