// Package tracking provides read-side progress reporting over the counting
// workflow: per-pass job counts and completion percentages.
package tracking

import (
	"context"

	"github.com/shopspring/decimal"

	"countflow/internal/core/id"
	"countflow/internal/domain/assignment"
	"countflow/internal/domain/counting"
	"countflow/internal/domain/job"
)

// StatusShare is a count of jobs and the share of the pass total they
// represent, rounded to two decimal places.
type StatusShare struct {
	Count   int             `json:"count"`
	Percent decimal.Decimal `json:"percent"`
}

// CountingProgress is the progress of one counting pass.
type CountingProgress struct {
	CountingID        id.ID       `json:"countingId"`
	CountingReference string      `json:"countingReference"`
	CountingOrder     int         `json:"countingOrder"`
	TotalJobs         int         `json:"totalJobs"`
	JobsEnAttente     StatusShare `json:"jobsEnAttente"`
	JobsEnCours       StatusShare `json:"jobsEnCours"`
	JobsTermines      StatusShare `json:"jobsTermines"`
}

// Service computes progress statistics. Read-only.
type Service struct {
	jobs        job.Repository
	countings   counting.Repository
	assignments assignment.Repository
}

// NewService creates the tracking service.
func NewService(jobs job.Repository, countings counting.Repository, assignments assignment.Repository) *Service {
	return &Service{jobs: jobs, countings: countings, assignments: assignments}
}

// JobProgress returns per-pass progress for the inventory's jobs. A non-nil
// warehouseID restricts the figures to one warehouse. Jobs in TRANSFERT
// count as waiting, ENTAME as in progress, TERMINE as done.
func (s *Service) JobProgress(ctx context.Context, inventoryID id.ID, warehouseID *id.ID) ([]CountingProgress, error) {
	jobs, err := s.jobs.ListByInventory(ctx, inventoryID, warehouseID)
	if err != nil {
		return nil, err
	}

	countings, err := s.countings.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}

	jobIDs := make([]id.ID, len(jobs))
	jobByID := make(map[id.ID]*job.Job, len(jobs))
	for i := range jobs {
		jobIDs[i] = jobs[i].ID
		jobByID[jobs[i].ID] = &jobs[i]
	}

	var assignments []assignment.Assignment
	if len(jobIDs) > 0 {
		if assignments, err = s.assignments.ListByJobs(ctx, jobIDs); err != nil {
			return nil, err
		}
	}

	// counting -> set of jobs participating in it
	jobsByCounting := make(map[id.ID]map[id.ID]struct{})
	for _, a := range assignments {
		set, ok := jobsByCounting[a.CountingID]
		if !ok {
			set = make(map[id.ID]struct{})
			jobsByCounting[a.CountingID] = set
		}
		set[a.JobID] = struct{}{}
	}

	progress := make([]CountingProgress, 0, len(countings))
	for i := range countings {
		c := &countings[i]

		var total, enAttente, enCours, termines int
		for jobID := range jobsByCounting[c.ID] {
			j, ok := jobByID[jobID]
			if !ok {
				continue
			}
			total++
			switch j.Status {
			case job.StatusTransfert:
				enAttente++
			case job.StatusEntame:
				enCours++
			case job.StatusTermine:
				termines++
			}
		}

		progress = append(progress, CountingProgress{
			CountingID:        c.ID,
			CountingReference: c.Reference,
			CountingOrder:     c.Order,
			TotalJobs:         total,
			JobsEnAttente:     share(enAttente, total),
			JobsEnCours:       share(enCours, total),
			JobsTermines:      share(termines, total),
		})
	}
	return progress, nil
}

func share(count, total int) StatusShare {
	s := StatusShare{Count: count, Percent: decimal.Zero}
	if total > 0 {
		s.Percent = decimal.NewFromInt(int64(count)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(total))).
			Round(2)
	}
	return s
}
