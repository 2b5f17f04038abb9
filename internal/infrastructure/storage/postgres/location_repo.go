package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"countflow/internal/core/id"
	"countflow/internal/domain/workflow"
)

const locationTable = "cat_locations"

var _ workflow.LocationChecker = (*LocationRepo)(nil)

// LocationRepo answers warehouse-membership questions over the location
// master data. Locations are maintained by the warehouse referential, not
// by the counting workflow.
type LocationRepo struct {
	txm *TxManager
}

// NewLocationRepo creates the location repository.
func NewLocationRepo(txm *TxManager) *LocationRepo {
	return &LocationRepo{txm: txm}
}

func (r *LocationRepo) BelongsToWarehouse(ctx context.Context, locationID, warehouseID id.ID) (bool, error) {
	sql, args, err := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("1").
		From(locationTable).
		Where(squirrel.Eq{"id": locationID, "warehouse_id": warehouseID, "is_deleted": false}).
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
		return false, fmt.Errorf("location membership: %w", err)
	}
	return true, nil
}
