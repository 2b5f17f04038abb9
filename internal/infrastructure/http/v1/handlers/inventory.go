package handlers

import (
	"github.com/gin-gonic/gin"

	"countflow/internal/domain/inventory"
	"countflow/internal/domain/workflow"
	"countflow/internal/infrastructure/http/v1/dto"
)

// InventoryHandler exposes the inventory campaign lifecycle.
type InventoryHandler struct {
	*BaseHandler
	service   *inventory.Service
	lifecycle *workflow.Lifecycle
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(service *inventory.Service, lifecycle *workflow.Lifecycle) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		lifecycle:   lifecycle,
	}
}

// Create handles POST /inventories.
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateInventoryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.Create(c.Request.Context(), req.Label, req.Date, inventory.Type(req.Type), req.Configs())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.CreatedData(c, dto.FromInventory(inv))
}

// Get handles GET /inventories/:id.
func (h *InventoryHandler) Get(c *gin.Context) {
	inventoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	inv, err := h.service.Get(c.Request.Context(), inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInventory(inv))
}

// ValidateLaunch handles POST /inventories/:id/validate-launch.
// Reports whether the inventory may move to EN REALISATION without
// mutating anything.
func (h *InventoryHandler) ValidateLaunch(c *gin.Context) {
	inventoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.ValidateLaunch(c.Request.Context(), inventoryID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "L'inventaire peut être lancé.")
}

// Launch handles POST /inventories/:id/launch.
func (h *InventoryHandler) Launch(c *gin.Context) {
	inventoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.service.Launch(ctx, inventoryID); err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.Get(ctx, inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInventory(inv))
}

// Complete handles POST /inventories/:id/complete.
func (h *InventoryHandler) Complete(c *gin.Context) {
	inventoryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.lifecycle.CompleteInventory(ctx, inventoryID); err != nil {
		h.Error(c, err)
		return
	}

	inv, err := h.service.Get(ctx, inventoryID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromInventory(inv))
}
