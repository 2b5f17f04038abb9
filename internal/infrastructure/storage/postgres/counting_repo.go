package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/counting"
)

const (
	countingTable       = "inv_countings"
	countingDetailTable = "inv_counting_details"
)

var (
	_ counting.Repository       = (*CountingRepo)(nil)
	_ counting.DetailRepository = (*CountingDetailRepo)(nil)
)

// CountingRepo implements counting.Repository.
type CountingRepo struct {
	baseRepo
}

// NewCountingRepo creates the counting pass repository.
func NewCountingRepo(txm *TxManager) *CountingRepo {
	return &CountingRepo{
		baseRepo: newBaseRepo(txm, countingTable, ExtractDBColumns[counting.Counting]()),
	}
}

func (r *CountingRepo) Create(ctx context.Context, c *counting.Counting) error {
	data, err := r.insertMap(c)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().Insert(r.table).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("comptage", "ordre", fmt.Sprintf("%d", c.Order))
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *CountingRepo) GetByID(ctx context.Context, countingID id.ID) (*counting.Counting, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": countingID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c counting.Counting
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("comptage", countingID)
		}
		return nil, fmt.Errorf("get counting: %w", err)
	}
	return &c, nil
}

func (r *CountingRepo) FindByInventoryAndOrder(ctx context.Context, inventoryID id.ID, order int) (*counting.Counting, bool, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"inventory_id": inventoryID, "count_order": order, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build query: %w", err)
	}

	var c counting.Counting
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find counting: %w", err)
	}
	return &c, true, nil
}

func (r *CountingRepo) ListByInventory(ctx context.Context, inventoryID id.ID) ([]counting.Counting, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"inventory_id": inventoryID, "is_deleted": false}).
		OrderBy("count_order ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []counting.Counting
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list countings: %w", err)
	}
	return items, nil
}

// NextOrder allocates max(count_order)+1 for the inventory. Must run inside
// the transaction that inserts the pass; the unique constraint on
// (inventory_id, count_order) catches concurrent allocations.
func (r *CountingRepo) NextOrder(ctx context.Context, inventoryID id.ID) (int, error) {
	sql, args, err := r.builder().
		Select("COALESCE(MAX(count_order), 0) + 1").
		From(r.table).
		Where(squirrel.Eq{"inventory_id": inventoryID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var next int
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&next); err != nil {
		return 0, fmt.Errorf("next order: %w", err)
	}
	return next, nil
}

// CountingDetailRepo implements counting.DetailRepository. Detail rows are
// written by pass execution; this engine only reads them.
type CountingDetailRepo struct {
	baseRepo
}

// NewCountingDetailRepo creates the counting detail repository.
func NewCountingDetailRepo(txm *TxManager) *CountingDetailRepo {
	return &CountingDetailRepo{
		baseRepo: newBaseRepo(txm, countingDetailTable, ExtractDBColumns[counting.Detail]()),
	}
}

func (r *CountingDetailRepo) GetByID(ctx context.Context, detailID id.ID) (*counting.Detail, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": detailID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var d counting.Detail
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &d, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("détail de comptage", detailID)
		}
		return nil, fmt.Errorf("get counting detail: %w", err)
	}
	return &d, nil
}

func (r *CountingDetailRepo) ListForLocationProduct(ctx context.Context, inventoryID, locationID id.ID, productID *id.ID) ([]counting.Detail, error) {
	cols := make([]string, len(r.cols))
	for i, col := range r.cols {
		cols[i] = "d." + col
	}

	q := r.builder().
		Select(cols...).
		From(r.table + " d").
		Join(countingTable + " c ON c.id = d.counting_id").
		Where(squirrel.Eq{"c.inventory_id": inventoryID, "d.location_id": locationID, "d.is_deleted": false}).
		OrderBy("c.count_order ASC")

	if productID != nil {
		q = q.Where(squirrel.Eq{"d.product_id": *productID})
	} else {
		q = q.Where(squirrel.Eq{"d.product_id": nil})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []counting.Detail
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list counting details: %w", err)
	}
	return items, nil
}
