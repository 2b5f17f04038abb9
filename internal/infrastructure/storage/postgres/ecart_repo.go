package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/ecart"
)

const (
	ecartTable         = "inv_ecarts"
	ecartSequenceTable = "inv_ecart_sequences"
)

var _ ecart.Repository = (*EcartRepo)(nil)

// EcartRepo implements ecart.Repository.
type EcartRepo struct {
	baseRepo
	seqCols []string
}

// NewEcartRepo creates the discrepancy repository.
func NewEcartRepo(txm *TxManager) *EcartRepo {
	return &EcartRepo{
		baseRepo: newBaseRepo(txm, ecartTable, ExtractDBColumns[ecart.EcartComptage]()),
		seqCols:  ExtractDBColumns[ecart.Sequence](),
	}
}

func (r *EcartRepo) Create(ctx context.Context, e *ecart.EcartComptage) error {
	data, err := r.insertMap(e)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().Insert(r.table).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewConflict("Un écart existe déjà pour cet emplacement et ce produit").
				WithDetail("location_id", e.LocationID)
		}
		return fmt.Errorf("insert %s: %w", r.table, err)
	}
	return nil
}

func (r *EcartRepo) Update(ctx context.Context, e *ecart.EcartComptage) error {
	data, err := r.updateMap(e)
	if err != nil {
		return err
	}

	sql, args, err := r.builder().
		Update(r.table).
		SetMap(data).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.table, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("écart", e.ID)
	}
	return nil
}

func (r *EcartRepo) GetByID(ctx context.Context, ecartID id.ID) (*ecart.EcartComptage, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": ecartID, "is_deleted": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e ecart.EcartComptage
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("écart", ecartID)
		}
		return nil, fmt.Errorf("get ecart: %w", err)
	}
	return &e, nil
}

func (r *EcartRepo) FindByLocationProduct(ctx context.Context, inventoryID, locationID id.ID, productID *id.ID) (*ecart.EcartComptage, bool, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"inventory_id": inventoryID, "location_id": locationID, "is_deleted": false}).
		Limit(1)

	if productID != nil {
		q = q.Where(squirrel.Eq{"product_id": *productID})
	} else {
		q = q.Where(squirrel.Eq{"product_id": nil})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("build query: %w", err)
	}

	var e ecart.EcartComptage
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find ecart: %w", err)
	}
	return &e, true, nil
}

func (r *EcartRepo) SaveSequences(ctx context.Context, ecartID id.ID, sequences []ecart.Sequence) error {
	if len(sequences) == 0 {
		return nil
	}

	q := r.builder().Insert(ecartSequenceTable).Columns(r.seqCols...)
	for i := range sequences {
		data := StructToMap(&sequences[i])
		row := make([]any, len(r.seqCols))
		for j, col := range r.seqCols {
			row[j] = data[col]
		}
		q = q.Values(row...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", ecartSequenceTable, err)
	}
	return nil
}

func (r *EcartRepo) ListSequences(ctx context.Context, ecartID id.ID) ([]ecart.Sequence, error) {
	sql, args, err := r.builder().
		Select(r.seqCols...).
		From(ecartSequenceTable).
		Where(squirrel.Eq{"ecart_comptage_id": ecartID, "is_deleted": false}).
		OrderBy("sequence_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []ecart.Sequence
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list ecart sequences: %w", err)
	}
	return items, nil
}
