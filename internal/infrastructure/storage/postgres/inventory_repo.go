package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/inventory"
)

const inventoryTable = "inv_inventories"

// Compile-time check.
var _ inventory.Repository = (*InventoryRepo)(nil)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	baseRepo
}

// NewInventoryRepo creates the inventory repository.
func NewInventoryRepo(txm *TxManager) *InventoryRepo {
	return &InventoryRepo{
		baseRepo: newBaseRepo(txm, inventoryTable, ExtractDBColumns[inventory.Inventory]()),
	}
}

func (r *InventoryRepo) Create(ctx context.Context, inv *inventory.Inventory) error {
	data, err := r.insertMap(inv)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().Insert(r.table).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("inventaire", "reference", inv.Reference)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *InventoryRepo) GetByID(ctx context.Context, inventoryID id.ID) (*inventory.Inventory, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": inventoryID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv inventory.Inventory
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventaire", inventoryID)
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return &inv, nil
}

func (r *InventoryRepo) Update(ctx context.Context, inv *inventory.Inventory) error {
	data, err := r.updateMap(inv)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().
		Update(r.table).
		SetMap(data).
		Where(squirrel.Eq{"id": inv.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventaire", inv.ID)
	}
	return nil
}
