package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/assignment"
	"countflow/internal/domain/counting"
	"countflow/internal/domain/inventory"
	"countflow/internal/domain/job"
)

func TestCreateJobs_NormalConfig(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)

	warehouseID := id.New()
	loc1, loc2 := id.New(), id.New()
	f.locations.membership[loc1] = warehouseID
	f.locations.membership[loc2] = warehouseID

	jobs, err := f.lifecycle.CreateJobs(ctx, inv.ID, warehouseID, []id.ID{loc1, loc2})
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	j := jobs[0]
	assert.Equal(t, job.StatusEnAttente, j.Status)
	assert.NotNil(t, j.EnAttenteDate)
	assert.NotEmpty(t, j.Reference)

	// Both baseline passes get one detail per location and one assignment each.
	assert.Len(t, f.details.items, 4)
	assert.Len(t, f.assignments.items, 2)
	for _, a := range f.assignments.items {
		assert.Equal(t, assignment.StatusEnAttente, a.Status)
		assert.Nil(t, a.OperatorID)
	}
}

func TestCreateJobs_ImageDeStockFirst(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.seedInventory(counting.ModeImageDeStock, counting.ModeParArticle)

	warehouseID := id.New()
	loc := id.New()
	f.locations.membership[loc] = warehouseID

	_, err := f.lifecycle.CreateJobs(ctx, inv.ID, warehouseID, []id.ID{loc})
	require.NoError(t, err)

	// Details and the single assignment target the second pass only.
	require.Len(t, f.details.items, 1)
	require.Len(t, f.assignments.items, 1)
	c2, found, err := f.countings.FindByInventoryAndOrder(ctx, inv.ID, 2)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, c2.ID, f.details.items[0].CountingID)
	assert.Equal(t, c2.ID, f.assignments.items[0].CountingID)
}

func TestCreateJobs_RequiresTwoCountings(t *testing.T) {
	f := newFixture()
	inv := f.seedInventory(counting.ModeEnVrac)

	warehouseID := id.New()
	loc := id.New()
	f.locations.membership[loc] = warehouseID

	_, err := f.lifecycle.CreateJobs(context.Background(), inv.ID, warehouseID, []id.ID{loc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "au moins deux comptages")
	assert.Empty(t, f.jobs.items)
}

func TestCreateJobs_LocationAlreadyCovered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)

	warehouseID := id.New()
	loc := id.New()
	f.locations.membership[loc] = warehouseID

	_, err := f.lifecycle.CreateJobs(ctx, inv.ID, warehouseID, []id.ID{loc})
	require.NoError(t, err)

	_, err = f.lifecycle.CreateJobs(ctx, inv.ID, warehouseID, []id.ID{loc})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "déjà affecté")
}

func TestCreateJobs_LocationOutsideWarehouse(t *testing.T) {
	f := newFixture()
	inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)

	loc := id.New()
	f.locations.membership[loc] = id.New() // some other warehouse

	_, err := f.lifecycle.CreateJobs(context.Background(), inv.ID, id.New(), []id.ID{loc})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "n'appartient pas au warehouse")
}

func TestCompleteInventory(t *testing.T) {
	t.Run("all jobs termine", func(t *testing.T) {
		f := newFixture()
		inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
		f.seedJob(inv, id.New(), job.StatusTermine)
		f.seedJob(inv, id.New(), job.StatusTermine)

		require.NoError(t, f.lifecycle.CompleteInventory(context.Background(), inv.ID))

		stored, err := f.inventories.GetByID(context.Background(), inv.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.StatusTermine, stored.Status)
		assert.NotNil(t, stored.TermineDate)
	})

	t.Run("lists every non-terminal job", func(t *testing.T) {
		f := newFixture()
		inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
		f.seedJob(inv, id.New(), job.StatusTermine)
		j2 := f.seedJob(inv, id.New(), job.StatusAffecte)
		j3 := f.seedJob(inv, id.New(), job.StatusPret)

		err := f.lifecycle.CompleteInventory(context.Background(), inv.ID)
		require.Error(t, err)
		assert.True(t, apperror.IsInvalidState(err))
		assert.Contains(t, err.Error(), j2.Reference)
		assert.Contains(t, err.Error(), j3.Reference)
		assert.Contains(t, err.Error(), "AFFECTE")
		assert.Contains(t, err.Error(), "PRET")

		stored, getErr := f.inventories.GetByID(context.Background(), inv.ID)
		require.NoError(t, getErr)
		assert.Equal(t, inventory.StatusEnRealisation, stored.Status)
	})

	t.Run("no jobs is a soft failure", func(t *testing.T) {
		f := newFixture()
		inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)

		err := f.lifecycle.CompleteInventory(context.Background(), inv.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Aucun job trouvé")
	})

	t.Run("wrong inventory status is a soft failure", func(t *testing.T) {
		f := newFixture()
		inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
		inv.Status = inventory.StatusEnPreparation
		f.seedJob(inv, id.New(), job.StatusTermine)

		err := f.lifecycle.CompleteInventory(context.Background(), inv.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "EN PREPARATION")

		stored, getErr := f.inventories.GetByID(context.Background(), inv.ID)
		require.NoError(t, getErr)
		assert.Equal(t, inventory.StatusEnPreparation, stored.Status)
	})

	t.Run("unknown inventory", func(t *testing.T) {
		f := newFixture()
		err := f.lifecycle.CompleteInventory(context.Background(), id.New())
		require.Error(t, err)
		assert.True(t, apperror.IsNotFound(err))
	})
}
