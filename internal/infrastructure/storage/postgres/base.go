package postgres

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// baseRepo carries what every repository needs: the transaction manager for
// querier resolution and the table metadata extracted from db tags.
type baseRepo struct {
	txm   *TxManager
	table string
	cols  []string
}

func newBaseRepo(txm *TxManager, table string, cols []string) baseRepo {
	return baseRepo{txm: txm, table: table, cols: cols}
}

// builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r *baseRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// baseSelect creates a SELECT builder over the repo's columns.
func (r *baseRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.cols...).
		From(r.table)
}

// insertMap builds the column map for an INSERT from the entity's db tags,
// restricted to the columns known for the table.
func (r *baseRepo) insertMap(entity any) (map[string]any, error) {
	data := StructToMap(entity)
	if len(data) == 0 {
		return nil, fmt.Errorf("no db tags found in entity")
	}

	filtered := make(map[string]any, len(r.cols))
	for _, col := range r.cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	return filtered, nil
}

// updateMap is insertMap without the immutable columns.
func (r *baseRepo) updateMap(entity any) (map[string]any, error) {
	data, err := r.insertMap(entity)
	if err != nil {
		return nil, err
	}
	delete(data, "id")
	delete(data, "created_at")
	return data, nil
}
