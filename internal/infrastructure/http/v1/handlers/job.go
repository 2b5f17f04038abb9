package handlers

import (
	"github.com/gin-gonic/gin"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/workflow"
	"countflow/internal/infrastructure/http/v1/dto"
)

// JobHandler exposes job creation and readiness promotion.
type JobHandler struct {
	*BaseHandler
	lifecycle *workflow.Lifecycle
	ready     *workflow.Ready
}

// NewJobHandler creates a new job handler.
func NewJobHandler(lifecycle *workflow.Lifecycle, ready *workflow.Ready) *JobHandler {
	return &JobHandler{
		BaseHandler: NewBaseHandler(),
		lifecycle:   lifecycle,
		ready:       ready,
	}
}

// Create handles POST /jobs.
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inventoryID, err := id.Parse(req.InventoryID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "inventoryId"))
		return
	}
	warehouseID, err := id.Parse(req.WarehouseID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "warehouseId"))
		return
	}
	locationIDs, err := dto.ParseIDs("locationIds", req.LocationIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	jobs, err := h.lifecycle.CreateJobs(c.Request.Context(), inventoryID, warehouseID, locationIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromJobs(jobs))
}

// MarkReady handles POST /jobs/ready.
// Jobs that cannot be promoted are reported individually; one rejection
// never rolls back another promotion.
func (h *JobHandler) MarkReady(c *gin.Context) {
	var req dto.MarkReadyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	jobIDs, err := dto.ParseIDs("jobIds", req.JobIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.ready.MarkReady(c.Request.Context(), jobIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
