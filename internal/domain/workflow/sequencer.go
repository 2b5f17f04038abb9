package workflow

import (
	"context"
	"fmt"
	"time"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/core/tx"
	"countflow/internal/domain/assignment"
	"countflow/internal/domain/counting"
	"countflow/internal/domain/job"
	"countflow/pkg/logger"
	"countflow/pkg/refnum"
)

// Sequencer launches counting passes beyond the inventory's baseline when
// a location's results are still unresolved.
type Sequencer struct {
	jobs        job.Repository
	details     job.DetailRepository
	countings   counting.Repository
	assignments assignment.Repository
	refs        RefGenerator
	txManager   tx.Manager
}

// NewSequencer creates the counting sequencer.
func NewSequencer(
	jobs job.Repository,
	details job.DetailRepository,
	countings counting.Repository,
	assignments assignment.Repository,
	refs RefGenerator,
	txManager tx.Manager,
) *Sequencer {
	return &Sequencer{
		jobs:        jobs,
		details:     details,
		countings:   countings,
		assignments: assignments,
		refs:        refs,
		txManager:   txManager,
	}
}

// LaunchResult reports the outcome of LaunchNextCounting.
type LaunchResult struct {
	CountingID        id.ID `json:"countingId"`
	CountingOrder     int   `json:"countingOrder"`
	CountingCreated   bool  `json:"countingCreated"`
	AssignmentCreated bool  `json:"assignmentCreated"`
}

// LaunchNextCounting launches the next counting pass for a (job, location)
// pair, never below order 3: orders 1 and 2 are the pre-configured baseline.
//
// Every preceding operator-run pass must be TERMINE. If the target pass
// already exists for the inventory, the job detail is recreated (inheriting
// TERMINE from an already finished assignment); otherwise a new pass is
// appended duplicating the mode and flags of the immediately preceding one.
// The assignment is created or reused with status TRANSFERT and a full
// timestamp trail, since the operator begins work immediately.
func (s *Sequencer) LaunchNextCounting(ctx context.Context, jobID, locationID, operatorID id.ID) (*LaunchResult, error) {
	if operatorID == id.Nil {
		return nil, apperror.NewValidation("L'identifiant de l'opérateur est obligatoire")
	}

	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}

	covered, err := s.details.ExistsForJobAndLocation(ctx, jobID, locationID)
	if err != nil {
		return nil, err
	}
	if !covered {
		return nil, apperror.NewValidation("L'emplacement indiqué n'est pas affecté au job sélectionné.").
			WithDetail("location_id", locationID)
	}

	maxOrder, err := s.details.MaxCountingOrder(ctx, jobID, locationID)
	if err != nil {
		return nil, err
	}
	nextOrder := maxOrder + 1
	if nextOrder < 3 {
		nextOrder = 3
	}

	countings, err := s.countings.ListByInventory(ctx, j.InventoryID)
	if err != nil {
		return nil, err
	}
	if err := s.ensurePriorPassesFinished(ctx, j, countings, nextOrder); err != nil {
		return nil, err
	}

	result := &LaunchResult{}
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()

		target, found, err := s.countings.FindByInventoryAndOrder(ctx, j.InventoryID, nextOrder)
		if err != nil {
			return err
		}
		if !found {
			// Append a new pass duplicating the preceding one.
			prev, prevFound, err := s.countings.FindByInventoryAndOrder(ctx, j.InventoryID, nextOrder-1)
			if err != nil {
				return err
			}
			if !prevFound {
				return apperror.NewInvalidState(
					fmt.Sprintf("Aucun comptage d'ordre %d n'est défini pour l'inventaire", nextOrder-1))
			}

			order, err := s.countings.NextOrder(ctx, j.InventoryID)
			if err != nil {
				return err
			}
			target = counting.NewCounting(j.InventoryID, order, prev.CountMode, prev.Flags)
			if target.Reference, err = s.refs.Next(ctx, refnum.PrefixCounting); err != nil {
				return err
			}
			if err := s.countings.Create(ctx, target); err != nil {
				return err
			}
			result.CountingCreated = true
		}

		a, haveAssignment, err := s.assignments.FindByJobAndCounting(ctx, jobID, target.ID)
		if err != nil {
			return err
		}

		_, haveDetail, err := s.details.FindByJobLocationCounting(ctx, jobID, locationID, target.ID)
		if err != nil {
			return err
		}
		if !haveDetail {
			d := job.NewDetail(jobID, locationID, target.ID)
			if haveAssignment && a.Status == assignment.StatusTermine {
				// The pass already finished for this job; the recreated
				// detail inherits the completed state.
				d.Status = job.DetailStatusTermine
			}
			if d.Reference, err = s.refs.Next(ctx, refnum.PrefixJobDetail); err != nil {
				return err
			}
			if err := s.details.Create(ctx, d); err != nil {
				return err
			}
		}

		if !haveAssignment {
			a = assignment.New(jobID, target.ID)
			if a.Reference, err = s.refs.Next(ctx, refnum.PrefixAssignment); err != nil {
				return err
			}
			a.Activate(operatorID, now)
			if err := s.assignments.Create(ctx, a); err != nil {
				return err
			}
			result.AssignmentCreated = true
		} else {
			a.Activate(operatorID, now)
			if err := s.assignments.Update(ctx, a); err != nil {
				return err
			}
		}

		result.CountingID = target.ID
		result.CountingOrder = target.Order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "counting launched",
		"job", j.Reference,
		"counting_order", result.CountingOrder,
		"counting_created", result.CountingCreated,
		"assignment_created", result.AssignmentCreated,
	)
	return result, nil
}

// ensurePriorPassesFinished verifies every operator-run pass with order
// below target is TERMINE for the job. Stock-image passes run without an
// assignment and are skipped.
func (s *Sequencer) ensurePriorPassesFinished(ctx context.Context, j *job.Job, countings []counting.Counting, targetOrder int) error {
	for i := range countings {
		c := &countings[i]
		if c.Order >= targetOrder {
			break
		}
		if !counting.RuleFor(c.CountMode).RequiresOperatorAssignment {
			continue
		}

		a, found, err := s.assignments.FindByJobAndCounting(ctx, j.ID, c.ID)
		if err != nil {
			return err
		}
		if !found {
			if targetOrder == 3 {
				return apperror.NewInvalidState(
					"Impossible de lancer le 3ème comptage : les affectations des comptages 1 et 2 sont manquantes.")
			}
			return apperror.NewInvalidState(
				fmt.Sprintf("Impossible de lancer le comptage d'ordre %d : aucune affectation trouvée pour le comptage d'ordre %d.",
					targetOrder, c.Order))
		}
		if a.Status != assignment.StatusTermine {
			if targetOrder == 3 {
				return apperror.NewInvalidState(
					"Impossible de lancer le 3ème comptage tant que les comptages 1 et 2 ne sont pas terminés.")
			}
			return apperror.NewInvalidState(
				fmt.Sprintf("Impossible de lancer le comptage d'ordre %d tant que le comptage d'ordre %d n'est pas terminé.",
					targetOrder, c.Order))
		}
	}
	return nil
}
