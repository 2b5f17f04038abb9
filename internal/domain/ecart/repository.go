package ecart

import (
	"context"

	"countflow/internal/core/id"
)

// Repository defines storage operations for discrepancies and their
// sequence trails.
type Repository interface {
	Create(ctx context.Context, e *EcartComptage) error
	Update(ctx context.Context, e *EcartComptage) error
	GetByID(ctx context.Context, ecartID id.ID) (*EcartComptage, error)

	// FindByLocationProduct returns the discrepancy for one
	// (inventory, location, product) combination, if any.
	FindByLocationProduct(ctx context.Context, inventoryID, locationID id.ID, productID *id.ID) (*EcartComptage, bool, error)

	SaveSequences(ctx context.Context, ecartID id.ID, sequences []Sequence) error
	ListSequences(ctx context.Context, ecartID id.ID) ([]Sequence, error)
}
