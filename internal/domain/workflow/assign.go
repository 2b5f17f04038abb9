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

// Engine creates assignments binding jobs to counting passes.
type Engine struct {
	jobs        job.Repository
	countings   counting.Repository
	assignments assignment.Repository
	refs        RefGenerator
	txManager   tx.Manager
}

// NewEngine creates the assignment engine.
func NewEngine(
	jobs job.Repository,
	countings counting.Repository,
	assignments assignment.Repository,
	refs RefGenerator,
	txManager tx.Manager,
) *Engine {
	return &Engine{
		jobs:        jobs,
		countings:   countings,
		assignments: assignments,
		refs:        refs,
		txManager:   txManager,
	}
}

// AssignResult reports the outcome of AssignJobs.
type AssignResult struct {
	Created       int `json:"created"`
	CountingOrder int `json:"countingOrder"`
}

// AssignJobs assigns every given job to the counting pass with the given
// order, optionally with an operator session starting at dateStart.
//
// All jobs must belong to the same inventory. "image de stock" passes
// refuse an operator. A (job, counting) pair that already has an assignment
// rejects the whole call. Each created assignment is stamped AFFECTE
// immediately; the job itself is promoted to AFFECTE only once every
// operator-requiring pass of its inventory carries an operator-backed
// assignment.
func (e *Engine) AssignJobs(ctx context.Context, jobIDs []id.ID, countingOrder int, operatorID *id.ID, dateStart time.Time) (*AssignResult, error) {
	if len(jobIDs) == 0 {
		return nil, apperror.NewValidation("La liste des jobs est obligatoire")
	}
	if countingOrder < 1 {
		return nil, apperror.NewValidation("L'ordre du comptage doit être strictement positif")
	}

	jobs, err := e.jobs.GetByIDs(ctx, jobIDs)
	if err != nil {
		return nil, err
	}
	if len(jobs) != len(jobIDs) {
		return nil, apperror.NewNotFound("job", missingIDs(jobIDs, jobs))
	}

	inventoryID := jobs[0].InventoryID
	for _, j := range jobs[1:] {
		if j.InventoryID != inventoryID {
			return nil, apperror.NewConflict("Tous les jobs doivent appartenir au même inventaire")
		}
	}

	target, found, err := e.countings.FindByInventoryAndOrder(ctx, inventoryID, countingOrder)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperror.NewValidation(
			fmt.Sprintf("Comptage d'ordre %d non trouvé pour l'inventaire", countingOrder)).
			WithDetail("inventory_id", inventoryID)
	}

	if operatorID != nil && !counting.RuleFor(target.CountMode).AllowsOperator {
		return nil, apperror.NewConflict(
			fmt.Sprintf("Impossible d'affecter un opérateur au comptage d'ordre %d avec le mode '%s'",
				countingOrder, target.CountMode))
	}

	countings, err := e.countings.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	if dateStart.IsZero() {
		dateStart = time.Now().UTC()
	}

	result := &AssignResult{CountingOrder: countingOrder}
	err = e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()

		for i := range jobs {
			j := &jobs[i]

			_, exists, err := e.assignments.FindByJobAndCounting(ctx, j.ID, target.ID)
			if err != nil {
				return err
			}
			if exists {
				return apperror.NewConflict(
					fmt.Sprintf("Le job %s a déjà une affectation pour le comptage %s", j.Reference, target.Reference))
			}

			a := assignment.New(j.ID, target.ID)
			if a.Reference, err = e.refs.Next(ctx, refnum.PrefixAssignment); err != nil {
				return err
			}
			a.OperatorID = operatorID
			a.DateStart = &dateStart
			a.MarkAffecte(now)

			if err := e.assignments.Create(ctx, a); err != nil {
				return err
			}
			result.Created++

			if err := e.promoteIfFullyAssigned(ctx, j, countings, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "jobs assigned",
		"created", result.Created,
		"counting_order", countingOrder,
		"operator", operatorID != nil,
	)
	return result, nil
}

// promoteIfFullyAssigned applies the cross-assignment gate: once every
// operator-requiring pass of the inventory has an operator-backed
// assignment for the job, the job and its remaining EN ATTENTE assignments
// move to AFFECTE.
func (e *Engine) promoteIfFullyAssigned(ctx context.Context, j *job.Job, countings []counting.Counting, now time.Time) error {
	existing, err := e.assignments.ListByJob(ctx, j.ID)
	if err != nil {
		return err
	}

	byCounting := make(map[id.ID]*assignment.Assignment, len(existing))
	for i := range existing {
		byCounting[existing[i].CountingID] = &existing[i]
	}

	for _, c := range countings {
		if !counting.RuleFor(c.CountMode).RequiresOperatorAssignment {
			continue
		}
		a, ok := byCounting[c.ID]
		if !ok || a.OperatorID == nil {
			return nil
		}
	}

	for _, a := range byCounting {
		if a.Status == assignment.StatusEnAttente {
			a.MarkAffecte(now)
			if err := e.assignments.Update(ctx, a); err != nil {
				return err
			}
		}
	}

	if j.Status == job.StatusEnAttente {
		j.MarkAffecte(now)
		if err := e.jobs.Update(ctx, j); err != nil {
			return err
		}
		logger.Info(ctx, "job promoted", "job", j.Reference, "status", j.Status)
	}
	return nil
}

func missingIDs(requested []id.ID, found []job.Job) []string {
	known := make(map[id.ID]struct{}, len(found))
	for _, j := range found {
		known[j.ID] = struct{}{}
	}
	var missing []string
	for _, want := range requested {
		if _, ok := known[want]; !ok {
			missing = append(missing, want.String())
		}
	}
	return missing
}
