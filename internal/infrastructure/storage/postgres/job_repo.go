package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/job"
)

const (
	jobTable       = "inv_jobs"
	jobDetailTable = "inv_job_details"
)

var (
	_ job.Repository       = (*JobRepo)(nil)
	_ job.DetailRepository = (*JobDetailRepo)(nil)
)

// JobRepo implements job.Repository.
type JobRepo struct {
	baseRepo
}

// NewJobRepo creates the job repository.
func NewJobRepo(txm *TxManager) *JobRepo {
	return &JobRepo{
		baseRepo: newBaseRepo(txm, jobTable, ExtractDBColumns[job.Job]()),
	}
}

func (r *JobRepo) Create(ctx context.Context, j *job.Job) error {
	data, err := r.insertMap(j)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().Insert(r.table).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("job", "reference", j.Reference)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *JobRepo) GetByID(ctx context.Context, jobID id.ID) (*job.Job, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": jobID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var j job.Job
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &j, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("job", jobID)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (r *JobRepo) GetByIDs(ctx context.Context, jobIDs []id.ID) ([]job.Job, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": jobIDs, "is_deleted": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []job.Job
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}
	return items, nil
}

func (r *JobRepo) Update(ctx context.Context, j *job.Job) error {
	data, err := r.updateMap(j)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().
		Update(r.table).
		SetMap(data).
		Where(squirrel.Eq{"id": j.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("job", j.ID)
	}
	return nil
}

func (r *JobRepo) ListByInventory(ctx context.Context, inventoryID id.ID, warehouseID *id.ID) ([]job.Job, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"inventory_id": inventoryID, "is_deleted": false}).
		OrderBy("created_at ASC")

	if warehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *warehouseID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []job.Job
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return items, nil
}

// JobDetailRepo implements job.DetailRepository.
type JobDetailRepo struct {
	baseRepo
}

// NewJobDetailRepo creates the job detail repository.
func NewJobDetailRepo(txm *TxManager) *JobDetailRepo {
	return &JobDetailRepo{
		baseRepo: newBaseRepo(txm, jobDetailTable, ExtractDBColumns[job.Detail]()),
	}
}

func (r *JobDetailRepo) Create(ctx context.Context, d *job.Detail) error {
	data, err := r.insertMap(d)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().Insert(r.table).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("détail de job", "job/emplacement/comptage", d.Reference)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *JobDetailRepo) Update(ctx context.Context, d *job.Detail) error {
	data, err := r.updateMap(d)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().
		Update(r.table).
		SetMap(data).
		Where(squirrel.Eq{"id": d.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("détail de job", d.ID)
	}
	return nil
}

func (r *JobDetailRepo) FindByJobLocationCounting(ctx context.Context, jobID, locationID, countingID id.ID) (*job.Detail, bool, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{
			"job_id":      jobID,
			"location_id": locationID,
			"counting_id": countingID,
			"is_deleted":  false,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build query: %w", err)
	}

	var d job.Detail
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find job detail: %w", err)
	}
	return &d, true, nil
}

func (r *JobDetailRepo) FindByInventoryAndLocation(ctx context.Context, inventoryID, locationID id.ID) (*job.Detail, bool, error) {
	cols := make([]string, len(r.cols))
	for i, col := range r.cols {
		cols[i] = "d." + col
	}

	sql, args, err := r.builder().
		Select(cols...).
		From(r.table + " d").
		Join(jobTable + " j ON j.id = d.job_id").
		Where(squirrel.Eq{
			"j.inventory_id": inventoryID,
			"d.location_id":  locationID,
			"d.is_deleted":   false,
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build query: %w", err)
	}

	var d job.Detail
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find job detail by location: %w", err)
	}
	return &d, true, nil
}

func (r *JobDetailRepo) ExistsForJobAndLocation(ctx context.Context, jobID, locationID id.ID) (bool, error) {
	sql, args, err := r.builder().
		Select("1").
		From(r.table).
		Where(squirrel.Eq{"job_id": jobID, "location_id": locationID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists int
	err = r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return true, nil
}

func (r *JobDetailRepo) MaxCountingOrder(ctx context.Context, jobID, locationID id.ID) (int, error) {
	sql, args, err := r.builder().
		Select("COALESCE(MAX(c.count_order), 0)").
		From(r.table + " d").
		Join(countingTable + " c ON c.id = d.counting_id").
		Where(squirrel.Eq{"d.job_id": jobID, "d.location_id": locationID, "d.is_deleted": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var max int
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("max counting order: %w", err)
	}
	return max, nil
}
