// Package workflow hosts the counting workflow components: job lifecycle,
// assignment, readiness validation and dynamic pass sequencing. Each
// component consumes repository interfaces and runs its mutations inside a
// single transaction.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/core/tx"
	"countflow/internal/domain/assignment"
	"countflow/internal/domain/counting"
	"countflow/internal/domain/inventory"
	"countflow/internal/domain/job"
	"countflow/pkg/logger"
	"countflow/pkg/refnum"
)

// RefGenerator issues human-readable references.
type RefGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// LocationChecker reports whether a location belongs to a warehouse.
// Master data lives outside this engine; callers plug in their own lookup.
type LocationChecker interface {
	BelongsToWarehouse(ctx context.Context, locationID, warehouseID id.ID) (bool, error)
}

// Lifecycle owns job creation fan-out and the inventory completion check.
type Lifecycle struct {
	inventories inventory.Repository
	countings   counting.Repository
	jobs        job.Repository
	details     job.DetailRepository
	assignments assignment.Repository
	locations   LocationChecker
	refs        RefGenerator
	txManager   tx.Manager
}

// NewLifecycle creates the job lifecycle manager.
func NewLifecycle(
	inventories inventory.Repository,
	countings counting.Repository,
	jobs job.Repository,
	details job.DetailRepository,
	assignments assignment.Repository,
	locations LocationChecker,
	refs RefGenerator,
	txManager tx.Manager,
) *Lifecycle {
	return &Lifecycle{
		inventories: inventories,
		countings:   countings,
		jobs:        jobs,
		details:     details,
		assignments: assignments,
		locations:   locations,
		refs:        refs,
		txManager:   txManager,
	}
}

// CreateJobs creates one job covering the given locations of a warehouse.
//
// The inventory must own at least its two baseline passes. When the first
// pass is "image de stock", details and the assignment are created for the
// second pass only; otherwise both baseline passes get details and an
// EN ATTENTE assignment each.
func (l *Lifecycle) CreateJobs(ctx context.Context, inventoryID, warehouseID id.ID, locationIDs []id.ID) ([]*job.Job, error) {
	if len(locationIDs) == 0 {
		return nil, apperror.NewValidation("Au moins un emplacement est obligatoire")
	}

	seen := make(map[id.ID]struct{}, len(locationIDs))
	for _, locID := range locationIDs {
		if _, dup := seen[locID]; dup {
			return nil, apperror.NewValidation("La liste des emplacements contient des doublons").
				WithDetail("location_id", locID)
		}
		seen[locID] = struct{}{}
	}

	inv, err := l.inventories.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	countings, err := l.countings.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if len(countings) < 2 {
		return nil, apperror.NewInvalidState(
			fmt.Sprintf("Il faut au moins deux comptages pour l'inventaire %s. Comptages trouvés : %d",
				inv.Reference, len(countings)))
	}
	counting1 := &countings[0]
	counting2 := &countings[1]

	var created *job.Job
	err = l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, locID := range locationIDs {
			ok, err := l.locations.BelongsToWarehouse(ctx, locID, warehouseID)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.NewValidation("L'emplacement n'appartient pas au warehouse").
					WithDetail("location_id", locID).
					WithDetail("warehouse_id", warehouseID)
			}

			existing, found, err := l.details.FindByInventoryAndLocation(ctx, inventoryID, locID)
			if err != nil {
				return err
			}
			if found {
				owner, err := l.jobs.GetByID(ctx, existing.JobID)
				if err != nil {
					return err
				}
				return apperror.NewConflict(
					fmt.Sprintf("L'emplacement est déjà affecté au job %s", owner.Reference)).
					WithDetail("location_id", locID)
			}
		}

		j := job.NewJob(inventoryID, warehouseID)
		if j.Reference, err = l.refs.Next(ctx, refnum.PrefixJob); err != nil {
			return err
		}
		if err := l.jobs.Create(ctx, j); err != nil {
			return err
		}

		executed := []*counting.Counting{counting1, counting2}
		if counting1.CountMode == counting.ModeImageDeStock {
			// The stock-image pass runs without physical execution.
			executed = []*counting.Counting{counting2}
		}

		for _, c := range executed {
			for _, locID := range locationIDs {
				d := job.NewDetail(j.ID, locID, c.ID)
				if d.Reference, err = l.refs.Next(ctx, refnum.PrefixJobDetail); err != nil {
					return err
				}
				if err := l.details.Create(ctx, d); err != nil {
					return err
				}
			}

			a := assignment.New(j.ID, c.ID)
			if a.Reference, err = l.refs.Next(ctx, refnum.PrefixAssignment); err != nil {
				return err
			}
			if err := l.assignments.Create(ctx, a); err != nil {
				return err
			}
		}

		created = j
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "job created",
		"job", created.Reference,
		"inventory", inv.Reference,
		"locations", len(locationIDs),
		"first_mode", counting1.CountMode,
	)
	return []*job.Job{created}, nil
}

// CompleteInventory moves the inventory to TERMINE once every owned job is
// TERMINE. Failures mutate nothing: a wrong inventory status or an empty job
// list is a typed soft failure, and any non-terminal job blocks completion
// with every offender listed by reference and status.
func (l *Lifecycle) CompleteInventory(ctx context.Context, inventoryID id.ID) error {
	inv, err := l.inventories.GetByID(ctx, inventoryID)
	if err != nil {
		return err
	}

	if inv.Status != inventory.StatusEnRealisation {
		return apperror.NewInvalidState(
			fmt.Sprintf("L'inventaire %s ne peut pas être finalisé (statut: %s)", inv.Reference, inv.Status))
	}

	jobs, err := l.jobs.ListByInventory(ctx, inventoryID, nil)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return apperror.NewInvalidState(
			fmt.Sprintf("Aucun job trouvé pour l'inventaire %s", inv.Reference))
	}

	var blocking []string
	for _, j := range jobs {
		if j.Status != job.StatusTermine {
			blocking = append(blocking, fmt.Sprintf("Job %s (statut: %s)", j.Reference, j.Status))
		}
	}
	if len(blocking) > 0 {
		return apperror.NewInvalidState(
			fmt.Sprintf("Tous les jobs doivent être terminés avant de finaliser l'inventaire. Jobs non terminés : %s",
				strings.Join(blocking, ", "))).
			WithDetail("blocking_jobs", len(blocking))
	}

	return l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv.MarkTermine(time.Now().UTC())
		if err := l.inventories.Update(ctx, inv); err != nil {
			return err
		}
		logger.Info(ctx, "inventory completed", "inventory", inv.Reference)
		return nil
	})
}
