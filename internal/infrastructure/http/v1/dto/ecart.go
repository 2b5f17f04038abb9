package dto

import (
	"time"

	"countflow/internal/domain/ecart"
)

// EcartSequenceInput is one recorded quantity contributing to a discrepancy.
type EcartSequenceInput struct {
	CountingDetailID string `json:"countingDetailId" binding:"required"`
	CountingOrder    int    `json:"countingOrder" binding:"required,min=1"`
	Quantity         int64  `json:"quantity"`
}

// OpenEcartRequest opens a discrepancy for a location/product. When no
// sequences are given, the trail is collected from the recorded quantities.
type OpenEcartRequest struct {
	InventoryID string               `json:"inventoryId" binding:"required"`
	LocationID  string               `json:"locationId" binding:"required"`
	ProductID   *string              `json:"productId"`
	Sequences   []EcartSequenceInput `json:"sequences"`
}

// UpdateFinalResultRequest overrides the accepted quantity.
type UpdateFinalResultRequest struct {
	Value int64 `json:"value"`
}

// ResolveEcartRequest closes the discrepancy with a justification.
type ResolveEcartRequest struct {
	Justification string `json:"justification" binding:"required"`
}

// EcartSequenceResponse is one step of the reconciliation trail.
type EcartSequenceResponse struct {
	ID                string `json:"id"`
	Reference         string `json:"reference"`
	CountingDetailID  string `json:"countingDetailId"`
	SequenceNumber    int    `json:"sequenceNumber"`
	Quantity          int64  `json:"quantity"`
	EcartWithPrevious *int64 `json:"ecartWithPrevious,omitempty"`
}

// EcartResponse is the API shape of a discrepancy with its trail.
type EcartResponse struct {
	ID          string  `json:"id"`
	Reference   string  `json:"reference"`
	InventoryID string  `json:"inventoryId"`
	LocationID  string  `json:"locationId"`
	ProductID   *string `json:"productId,omitempty"`

	TotalSequences  int    `json:"totalSequences"`
	StoppedSequence int    `json:"stoppedSequence"`
	FinalResult     *int64 `json:"finalResult,omitempty"`

	Resolved      bool       `json:"resolved"`
	StoppedReason string     `json:"stoppedReason,omitempty"`
	Justification string     `json:"justification,omitempty"`
	ResolvedAt    *time.Time `json:"resolvedAt,omitempty"`

	Sequences []EcartSequenceResponse `json:"sequences,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FromEcart creates EcartResponse from the entity and its sequences.
func FromEcart(e *ecart.EcartComptage, sequences []ecart.Sequence) *EcartResponse {
	resp := &EcartResponse{
		ID:              e.ID.String(),
		Reference:       e.Reference,
		InventoryID:     e.InventoryID.String(),
		LocationID:      e.LocationID.String(),
		TotalSequences:  e.TotalSequences,
		StoppedSequence: e.StoppedSequence,
		FinalResult:     e.FinalResult,
		Resolved:        e.Resolved,
		StoppedReason:   e.StoppedReason,
		Justification:   e.Justification,
		ResolvedAt:      e.ResolvedAt,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if e.ProductID != nil {
		pid := e.ProductID.String()
		resp.ProductID = &pid
	}
	for _, seq := range sequences {
		resp.Sequences = append(resp.Sequences, EcartSequenceResponse{
			ID:                seq.ID.String(),
			Reference:         seq.Reference,
			CountingDetailID:  seq.CountingDetailID.String(),
			SequenceNumber:    seq.SequenceNumber,
			Quantity:          seq.Quantity,
			EcartWithPrevious: seq.EcartWithPrevious,
		})
	}
	return resp
}
