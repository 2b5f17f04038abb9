package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/assignment"
)

const assignmentTable = "inv_assignments"

var _ assignment.Repository = (*AssignmentRepo)(nil)

// AssignmentRepo implements assignment.Repository. The unique constraint on
// (job_id, counting_id) enforces one assignment per pair.
type AssignmentRepo struct {
	baseRepo
}

// NewAssignmentRepo creates the assignment repository.
func NewAssignmentRepo(txm *TxManager) *AssignmentRepo {
	return &AssignmentRepo{
		baseRepo: newBaseRepo(txm, assignmentTable, ExtractDBColumns[assignment.Assignment]()),
	}
}

func (r *AssignmentRepo) Create(ctx context.Context, a *assignment.Assignment) error {
	data, err := r.insertMap(a)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().Insert(r.table).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("affectation", "job/comptage", a.Reference)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *AssignmentRepo) Update(ctx context.Context, a *assignment.Assignment) error {
	data, err := r.updateMap(a)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().
		Update(r.table).
		SetMap(data).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("affectation", a.ID)
	}
	return nil
}

func (r *AssignmentRepo) GetByID(ctx context.Context, assignmentID id.ID) (*assignment.Assignment, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": assignmentID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a assignment.Assignment
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("affectation", assignmentID)
		}
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	return &a, nil
}

func (r *AssignmentRepo) FindByJobAndCounting(ctx context.Context, jobID, countingID id.ID) (*assignment.Assignment, bool, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"job_id": jobID, "counting_id": countingID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build query: %w", err)
	}

	var a assignment.Assignment
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find assignment: %w", err)
	}
	return &a, true, nil
}

func (r *AssignmentRepo) ListByJob(ctx context.Context, jobID id.ID) ([]assignment.Assignment, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"job_id": jobID, "is_deleted": false}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []assignment.Assignment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return items, nil
}

func (r *AssignmentRepo) ListByJobs(ctx context.Context, jobIDs []id.ID) ([]assignment.Assignment, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"job_id": jobIDs, "is_deleted": false}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []assignment.Assignment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return items, nil
}
