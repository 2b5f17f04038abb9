package ecart

import (
	"context"
	"fmt"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/counting"
)

// Trail assembles sequence inputs for a discrepancy from the quantities
// recorded by pass execution, so callers don't have to re-key them.
type Trail struct {
	details   counting.DetailRepository
	countings counting.Repository
}

// NewTrail creates the trail collector.
func NewTrail(details counting.DetailRepository, countings counting.Repository) *Trail {
	return &Trail{details: details, countings: countings}
}

// Collect returns the recorded quantities for a location/product across the
// inventory's passes, ordered by counting order. A nil productID matches
// rows recorded without a product.
func (t *Trail) Collect(ctx context.Context, inventoryID, locationID id.ID, productID *id.ID) ([]SequenceInput, error) {
	recorded, err := t.details.ListForLocationProduct(ctx, inventoryID, locationID, productID)
	if err != nil {
		return nil, err
	}
	if len(recorded) == 0 {
		return nil, apperror.NewValidation(
			"Aucune quantité enregistrée pour cet emplacement et ce produit.").
			WithDetail("location_id", locationID)
	}

	countings, err := t.countings.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	orders := make(map[id.ID]int, len(countings))
	for _, c := range countings {
		orders[c.ID] = c.Order
	}

	inputs := make([]SequenceInput, len(recorded))
	for i, d := range recorded {
		order, ok := orders[d.CountingID]
		if !ok {
			return nil, apperror.NewInternal(
				fmt.Errorf("counting detail %s references unknown counting %s", d.ID, d.CountingID))
		}
		inputs[i] = SequenceInput{
			CountingDetailID: d.ID,
			CountingOrder:    order,
			Quantity:         d.QuantityInventoried,
		}
	}
	return inputs, nil
}
