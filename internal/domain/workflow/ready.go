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
	"countflow/internal/domain/job"
	"countflow/pkg/logger"
)

// Ready decides whether jobs may be promoted to PRET.
type Ready struct {
	jobs        job.Repository
	countings   counting.Repository
	assignments assignment.Repository
	txManager   tx.Manager
}

// NewReady creates the readiness validator.
func NewReady(
	jobs job.Repository,
	countings counting.Repository,
	assignments assignment.Repository,
	txManager tx.Manager,
) *Ready {
	return &Ready{
		jobs:        jobs,
		countings:   countings,
		assignments: assignments,
		txManager:   txManager,
	}
}

// PromotedJob identifies one successfully promoted job.
type PromotedJob struct {
	JobID     id.ID  `json:"jobId"`
	Reference string `json:"reference"`
}

// RejectedJob carries the human-readable reason a job was not promoted.
type RejectedJob struct {
	JobID  id.ID  `json:"jobId"`
	Reason string `json:"reason"`
}

// ReadyResult reports the outcome of MarkReady. Zero promotions is a
// normal outcome, not an error.
type ReadyResult struct {
	Promoted []PromotedJob `json:"promoted"`
	Rejected []RejectedJob `json:"rejected"`
}

// MarkReady promotes every eligible job to PRET. Each job's mutation is
// atomic in its own transaction; one job's rejection never rolls back
// another job's promotion.
func (r *Ready) MarkReady(ctx context.Context, jobIDs []id.ID) (*ReadyResult, error) {
	if len(jobIDs) == 0 {
		return nil, apperror.NewValidation("La liste des jobs est obligatoire")
	}

	result := &ReadyResult{
		Promoted: make([]PromotedJob, 0, len(jobIDs)),
		Rejected: make([]RejectedJob, 0),
	}

	for _, jobID := range jobIDs {
		promoted, reason, err := r.markOne(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if reason != "" {
			result.Rejected = append(result.Rejected, RejectedJob{JobID: jobID, Reason: reason})
			continue
		}
		result.Promoted = append(result.Promoted, *promoted)
	}

	logger.Info(ctx, "mark ready finished",
		"promoted", len(result.Promoted),
		"rejected", len(result.Rejected),
	)
	return result, nil
}

// markOne validates and promotes a single job inside one transaction.
// A non-empty reason means the job was rejected; err is reserved for
// infrastructure failures.
func (r *Ready) markOne(ctx context.Context, jobID id.ID) (*PromotedJob, string, error) {
	var promoted *PromotedJob
	var reason string

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		j, err := r.jobs.GetByID(ctx, jobID)
		if err != nil {
			if apperror.IsNotFound(err) {
				reason = "job introuvable"
				return nil
			}
			return err
		}

		if j.Status != job.StatusAffecte {
			reason = fmt.Sprintf("Job %s (statut: %s)", j.Reference, j.Status)
			return nil
		}

		countings, err := r.countings.ListByInventory(ctx, j.InventoryID)
		if err != nil {
			return err
		}
		if len(countings) < 2 {
			reason = fmt.Sprintf("Job %s (comptages d'ordre 1 et 2 requis)", j.Reference)
			return nil
		}

		assignments, err := r.assignments.ListByJob(ctx, j.ID)
		if err != nil {
			return err
		}
		if len(assignments) == 0 {
			reason = fmt.Sprintf("Job %s (aucun comptage affecté)", j.Reference)
			return nil
		}

		byCounting := make(map[id.ID]*assignment.Assignment, len(assignments))
		for i := range assignments {
			byCounting[assignments[i].CountingID] = &assignments[i]
		}

		var qualifying []*assignment.Assignment

		if countings[0].CountMode == counting.ModeImageDeStock {
			// Special case: only the second pass needs an operator.
			c2 := &countings[1]
			if c2.CountMode == counting.ModeImageDeStock {
				reason = fmt.Sprintf("Job %s (2ème comptage ne peut pas être image de stock)", j.Reference)
				return nil
			}
			a2, ok := byCounting[c2.ID]
			if !ok || a2.OperatorID == nil || a2.Status != assignment.StatusAffecte {
				reason = fmt.Sprintf("Job %s (2ème comptage non affecté)", j.Reference)
				return nil
			}
			qualifying = append(qualifying, a2)
		} else {
			var missing []string
			for i := range countings {
				c := &countings[i]
				if !counting.RuleFor(c.CountMode).RequiresOperatorAssignment {
					continue
				}
				a, ok := byCounting[c.ID]
				if !ok || a.OperatorID == nil || a.Status != assignment.StatusAffecte {
					missing = append(missing, fmt.Sprintf("comptage %s", c.Reference))
					continue
				}
				qualifying = append(qualifying, a)
			}
			if len(missing) > 0 {
				reason = fmt.Sprintf("Job %s (comptages non affectés: %s)", j.Reference, strings.Join(missing, ", "))
				return nil
			}
		}

		now := time.Now().UTC()
		j.MarkPret(now)
		if err := r.jobs.Update(ctx, j); err != nil {
			return err
		}
		for _, a := range qualifying {
			a.MarkPret(now)
			if err := r.assignments.Update(ctx, a); err != nil {
				return err
			}
		}

		promoted = &PromotedJob{JobID: j.ID, Reference: j.Reference}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return promoted, reason, nil
}
