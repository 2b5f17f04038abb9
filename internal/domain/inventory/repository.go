package inventory

import (
	"context"

	"countflow/internal/core/id"
)

// Repository defines storage operations for inventories.
type Repository interface {
	Create(ctx context.Context, inv *Inventory) error
	GetByID(ctx context.Context, inventoryID id.ID) (*Inventory, error)
	Update(ctx context.Context, inv *Inventory) error
}
