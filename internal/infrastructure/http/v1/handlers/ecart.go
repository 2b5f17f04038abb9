package handlers

import (
	"github.com/gin-gonic/gin"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/ecart"
	"countflow/internal/infrastructure/http/v1/dto"
)

// EcartHandler exposes the discrepancy reconciliation workflow.
type EcartHandler struct {
	*BaseHandler
	service *ecart.Service
	trail   *ecart.Trail
}

// NewEcartHandler creates a new discrepancy handler.
func NewEcartHandler(service *ecart.Service, trail *ecart.Trail) *EcartHandler {
	return &EcartHandler{
		BaseHandler: NewBaseHandler(),
		service:     service,
		trail:       trail,
	}
}

// Open handles POST /ecarts.
func (h *EcartHandler) Open(c *gin.Context) {
	var req dto.OpenEcartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inventoryID, err := id.Parse(req.InventoryID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "inventoryId"))
		return
	}
	locationID, err := id.Parse(req.LocationID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "locationId"))
		return
	}
	var productID *id.ID
	if req.ProductID != nil {
		parsed, err := id.Parse(*req.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid id format").WithDetail("field", "productId"))
			return
		}
		productID = &parsed
	}

	ctx := c.Request.Context()

	var inputs []ecart.SequenceInput
	if len(req.Sequences) == 0 {
		// No explicit sequences: collect the trail from recorded quantities.
		inputs, err = h.trail.Collect(ctx, inventoryID, locationID, productID)
		if err != nil {
			h.Error(c, err)
			return
		}
	} else {
		inputs = make([]ecart.SequenceInput, len(req.Sequences))
		for i, seq := range req.Sequences {
			detailID, err := id.Parse(seq.CountingDetailID)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid id format").
					WithDetail("field", "sequences.countingDetailId"))
				return
			}
			inputs[i] = ecart.SequenceInput{
				CountingDetailID: detailID,
				CountingOrder:    seq.CountingOrder,
				Quantity:         seq.Quantity,
			}
		}
	}
	opened, err := h.service.Open(ctx, inventoryID, locationID, productID, inputs)
	if err != nil {
		h.Error(c, err)
		return
	}

	e, sequences, err := h.service.Get(ctx, opened.ID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.CreatedData(c, dto.FromEcart(e, sequences))
}

// Get handles GET /ecarts/:id.
func (h *EcartHandler) Get(c *gin.Context) {
	ecartID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	e, sequences, err := h.service.Get(c.Request.Context(), ecartID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromEcart(e, sequences))
}

// Cancel handles DELETE /ecarts/:id.
func (h *EcartHandler) Cancel(c *gin.Context) {
	ecartID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), ecartID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// UpdateFinalResult handles PUT /ecarts/:id/final-result.
func (h *EcartHandler) UpdateFinalResult(c *gin.Context) {
	ecartID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateFinalResultRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if err := h.service.UpdateFinalResult(ctx, ecartID, req.Value); err != nil {
		h.Error(c, err)
		return
	}

	e, sequences, err := h.service.Get(ctx, ecartID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEcart(e, sequences))
}

// Resolve handles POST /ecarts/:id/resolve.
func (h *EcartHandler) Resolve(c *gin.Context) {
	ecartID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ResolveEcartRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	if err := h.service.Resolve(ctx, ecartID, req.Justification); err != nil {
		h.Error(c, err)
		return
	}

	e, sequences, err := h.service.Get(ctx, ecartID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromEcart(e, sequences))
}
