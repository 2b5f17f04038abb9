package counting

import (
	"context"

	"countflow/internal/core/id"
)

// Repository defines storage operations for counting passes.
type Repository interface {
	Create(ctx context.Context, c *Counting) error
	GetByID(ctx context.Context, countingID id.ID) (*Counting, error)

	// FindByInventoryAndOrder returns the pass with the given order, if any.
	FindByInventoryAndOrder(ctx context.Context, inventoryID id.ID, order int) (*Counting, bool, error)

	// ListByInventory returns all passes of an inventory ordered by count_order.
	ListByInventory(ctx context.Context, inventoryID id.ID) ([]Counting, error)

	// NextOrder allocates max(count_order)+1 for the inventory. Must run
	// inside the transaction that inserts the new pass so orders stay
	// gapless under concurrency.
	NextOrder(ctx context.Context, inventoryID id.ID) (int, error)
}

// DetailRepository reads quantities recorded by pass execution.
type DetailRepository interface {
	GetByID(ctx context.Context, detailID id.ID) (*Detail, error)

	// ListForLocationProduct returns all recorded quantities for a
	// location/product across the inventory's passes, ordered by
	// counting order. A nil productID matches rows without a product.
	ListForLocationProduct(ctx context.Context, inventoryID, locationID id.ID, productID *id.ID) ([]Detail, error)
}
