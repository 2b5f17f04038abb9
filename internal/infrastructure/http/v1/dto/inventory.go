package dto

import (
	"time"

	"countflow/internal/domain/counting"
	"countflow/internal/domain/inventory"
)

// CountingConfigRequest is one counting pass definition at inventory creation.
type CountingConfigRequest struct {
	Order          int    `json:"order" binding:"required,min=1"`
	CountMode      string `json:"countMode" binding:"required"`
	UnitScanned    bool   `json:"unitScanned"`
	EntryQuantity  bool   `json:"entryQuantity"`
	IsVariant      bool   `json:"isVariant"`
	NLot           bool   `json:"nLot"`
	NSerie         bool   `json:"nSerie"`
	DLC            bool   `json:"dlc"`
	ShowProduct    bool   `json:"showProduct"`
	StockSituation bool   `json:"stockSituation"`
	QuantityShow   bool   `json:"quantityShow"`
}

// ToConfig converts the request entry to a counting configuration.
func (r CountingConfigRequest) ToConfig() counting.Config {
	return counting.Config{
		Order:     r.Order,
		CountMode: counting.CountMode(r.CountMode),
		Flags: counting.Flags{
			UnitScanned:    r.UnitScanned,
			EntryQuantity:  r.EntryQuantity,
			IsVariant:      r.IsVariant,
			NLot:           r.NLot,
			NSerie:         r.NSerie,
			DLC:            r.DLC,
			ShowProduct:    r.ShowProduct,
			StockSituation: r.StockSituation,
			QuantityShow:   r.QuantityShow,
		},
	}
}

// CreateInventoryRequest creates an inventory with its counting passes.
type CreateInventoryRequest struct {
	Label     string                  `json:"label" binding:"required"`
	Date      time.Time               `json:"date" binding:"required"`
	Type      string                  `json:"type" binding:"required"`
	Countings []CountingConfigRequest `json:"countings" binding:"required"`
}

// Configs converts the request's counting entries.
func (r CreateInventoryRequest) Configs() []counting.Config {
	configs := make([]counting.Config, len(r.Countings))
	for i, c := range r.Countings {
		configs[i] = c.ToConfig()
	}
	return configs
}

// InventoryResponse is the API shape of an inventory.
type InventoryResponse struct {
	ID                string     `json:"id"`
	Reference         string     `json:"reference"`
	Label             string     `json:"label"`
	Date              time.Time  `json:"date"`
	Status            string     `json:"status"`
	Type              string     `json:"type"`
	EnPreparationDate *time.Time `json:"enPreparationDate,omitempty"`
	EnRealisationDate *time.Time `json:"enRealisationDate,omitempty"`
	TermineDate       *time.Time `json:"termineDate,omitempty"`
	ClotureDate       *time.Time `json:"clotureDate,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// FromInventory creates InventoryResponse from the entity.
func FromInventory(inv *inventory.Inventory) *InventoryResponse {
	return &InventoryResponse{
		ID:                inv.ID.String(),
		Reference:         inv.Reference,
		Label:             inv.Label,
		Date:              inv.Date,
		Status:            string(inv.Status),
		Type:              string(inv.Type),
		EnPreparationDate: inv.EnPreparationDate,
		EnRealisationDate: inv.EnRealisationDate,
		TermineDate:       inv.TermineDate,
		ClotureDate:       inv.ClotureDate,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}
