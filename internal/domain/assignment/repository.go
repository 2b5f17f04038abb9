package assignment

import (
	"context"

	"countflow/internal/core/id"
)

// Repository defines storage operations for assignments.
type Repository interface {
	Create(ctx context.Context, a *Assignment) error
	Update(ctx context.Context, a *Assignment) error
	GetByID(ctx context.Context, assignmentID id.ID) (*Assignment, error)

	// FindByJobAndCounting returns the assignment for one (job, counting)
	// pair, if any.
	FindByJobAndCounting(ctx context.Context, jobID, countingID id.ID) (*Assignment, bool, error)

	// ListByJob returns all assignments of a job.
	ListByJob(ctx context.Context, jobID id.ID) ([]Assignment, error)

	// ListByJobs returns all assignments of the given jobs.
	ListByJobs(ctx context.Context, jobIDs []id.ID) ([]Assignment, error)
}
