package job

import (
	"context"

	"countflow/internal/core/id"
)

// Repository defines storage operations for jobs.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	GetByID(ctx context.Context, jobID id.ID) (*Job, error)
	GetByIDs(ctx context.Context, jobIDs []id.ID) ([]Job, error)
	Update(ctx context.Context, j *Job) error

	// ListByInventory returns all jobs of an inventory; a non-nil
	// warehouseID restricts the result to one warehouse.
	ListByInventory(ctx context.Context, inventoryID id.ID, warehouseID *id.ID) ([]Job, error)
}

// DetailRepository defines storage operations for job details.
type DetailRepository interface {
	Create(ctx context.Context, d *Detail) error
	Update(ctx context.Context, d *Detail) error

	// FindByJobLocationCounting returns the detail for one (job, location,
	// counting) tuple, if any.
	FindByJobLocationCounting(ctx context.Context, jobID, locationID, countingID id.ID) (*Detail, bool, error)

	// FindByInventoryAndLocation returns any detail covering the location
	// within the inventory, across all jobs. Used to reject double coverage.
	FindByInventoryAndLocation(ctx context.Context, inventoryID, locationID id.ID) (*Detail, bool, error)

	// ExistsForJobAndLocation reports whether the job covers the location
	// through at least one pass.
	ExistsForJobAndLocation(ctx context.Context, jobID, locationID id.ID) (bool, error)

	// MaxCountingOrder returns the highest counting order for which the
	// (job, location) pair has a detail, or 0 when it has none.
	MaxCountingOrder(ctx context.Context, jobID, locationID id.ID) (int, error)
}
