package ecart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countflow/internal/core/apperror"
	"countflow/internal/core/entity"
	"countflow/internal/core/id"
	"countflow/internal/domain/counting"
)

type fakeCountingDetails struct {
	items []counting.Detail
}

func (f *fakeCountingDetails) GetByID(_ context.Context, detailID id.ID) (*counting.Detail, error) {
	for i := range f.items {
		if f.items[i].ID == detailID {
			return &f.items[i], nil
		}
	}
	return nil, apperror.NewNotFound("détail de comptage", detailID)
}

func (f *fakeCountingDetails) ListForLocationProduct(_ context.Context, inventoryID, locationID id.ID, productID *id.ID) ([]counting.Detail, error) {
	var out []counting.Detail
	for _, d := range f.items {
		if d.LocationID != locationID {
			continue
		}
		if productID == nil && d.ProductID != nil {
			continue
		}
		if productID != nil && (d.ProductID == nil || *d.ProductID != *productID) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

type fakeCountings struct {
	items []counting.Counting
}

func (f *fakeCountings) Create(_ context.Context, c *counting.Counting) error {
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCountings) GetByID(_ context.Context, countingID id.ID) (*counting.Counting, error) {
	for i := range f.items {
		if f.items[i].ID == countingID {
			return &f.items[i], nil
		}
	}
	return nil, apperror.NewNotFound("comptage", countingID)
}

func (f *fakeCountings) FindByInventoryAndOrder(_ context.Context, inventoryID id.ID, order int) (*counting.Counting, bool, error) {
	for i := range f.items {
		if f.items[i].InventoryID == inventoryID && f.items[i].Order == order {
			return &f.items[i], true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeCountings) ListByInventory(_ context.Context, inventoryID id.ID) ([]counting.Counting, error) {
	var out []counting.Counting
	for _, c := range f.items {
		if c.InventoryID == inventoryID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCountings) NextOrder(_ context.Context, inventoryID id.ID) (int, error) {
	max := 0
	for _, c := range f.items {
		if c.InventoryID == inventoryID && c.Order > max {
			max = c.Order
		}
	}
	return max + 1, nil
}

func TestTrailCollect(t *testing.T) {
	ctx := context.Background()
	inventoryID := id.New()
	locationID := id.New()
	productID := id.New()

	countings := &fakeCountings{}
	c1 := counting.NewCounting(inventoryID, 1, counting.ModeEnVrac, counting.Flags{})
	c2 := counting.NewCounting(inventoryID, 2, counting.ModeEnVrac, counting.Flags{})
	require.NoError(t, countings.Create(ctx, c1))
	require.NoError(t, countings.Create(ctx, c2))

	details := &fakeCountingDetails{items: []counting.Detail{
		{Base: entity.NewBase(), CountingID: c1.ID, LocationID: locationID, ProductID: &productID, QuantityInventoried: 120},
		{Base: entity.NewBase(), CountingID: c2.ID, LocationID: locationID, ProductID: &productID, QuantityInventoried: 118},
	}}

	trail := NewTrail(details, countings)
	inputs, err := trail.Collect(ctx, inventoryID, locationID, &productID)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	assert.Equal(t, 1, inputs[0].CountingOrder)
	assert.Equal(t, int64(120), inputs[0].Quantity)
	assert.Equal(t, 2, inputs[1].CountingOrder)
	assert.Equal(t, int64(118), inputs[1].Quantity)
}

func TestTrailCollect_NothingRecorded(t *testing.T) {
	trail := NewTrail(&fakeCountingDetails{}, &fakeCountings{})

	_, err := trail.Collect(context.Background(), id.New(), id.New(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Aucune quantité enregistrée")
}

func TestTrailCollect_NilProductMatchesUnkeyedRows(t *testing.T) {
	ctx := context.Background()
	inventoryID := id.New()
	locationID := id.New()
	productID := id.New()

	countings := &fakeCountings{}
	c1 := counting.NewCounting(inventoryID, 1, counting.ModeEnVrac, counting.Flags{})
	require.NoError(t, countings.Create(ctx, c1))

	details := &fakeCountingDetails{items: []counting.Detail{
		{Base: entity.NewBase(), CountingID: c1.ID, LocationID: locationID, QuantityInventoried: 40},
		{Base: entity.NewBase(), CountingID: c1.ID, LocationID: locationID, ProductID: &productID, QuantityInventoried: 7},
	}}

	trail := NewTrail(details, countings)
	inputs, err := trail.Collect(ctx, inventoryID, locationID, nil)
	require.NoError(t, err)
	require.Len(t, inputs, 1)
	assert.Equal(t, int64(40), inputs[0].Quantity)
}
