package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/assignment"
	"countflow/internal/domain/counting"
	"countflow/internal/domain/job"
)

func TestAssignJobs_CreatesAffecteAssignment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
	j := f.seedJob(inv, id.New(), job.StatusEnAttente)

	operator := id.New()
	start := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	res, err := f.engine.AssignJobs(ctx, []id.ID{j.ID}, 1, &operator, start)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.CountingOrder)

	require.Len(t, f.assignments.items, 1)
	a := f.assignments.items[0]
	assert.Equal(t, assignment.StatusAffecte, a.Status)
	assert.NotNil(t, a.AffecteDate)
	require.NotNil(t, a.OperatorID)
	assert.Equal(t, operator, *a.OperatorID)
	require.NotNil(t, a.DateStart)
	assert.Equal(t, start, *a.DateStart)

	// Only one of two passes is covered: the job stays EN ATTENTE.
	stored, err := f.jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusEnAttente, stored.Status)
}

func TestAssignJobs_PromotionGate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
	j := f.seedJob(inv, id.New(), job.StatusEnAttente)

	op1, op2 := id.New(), id.New()

	_, err := f.engine.AssignJobs(ctx, []id.ID{j.ID}, 1, &op1, time.Time{})
	require.NoError(t, err)

	_, err = f.engine.AssignJobs(ctx, []id.ID{j.ID}, 2, &op2, time.Time{})
	require.NoError(t, err)

	// Every operator-requiring pass carries an operator: the job is AFFECTE.
	stored, err := f.jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusAffecte, stored.Status)
	assert.NotNil(t, stored.AffecteDate)
}

func TestAssignJobs_PromotionGateSkipsImageDeStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.seedInventory(counting.ModeImageDeStock, counting.ModeParArticle)
	j := f.seedJob(inv, id.New(), job.StatusEnAttente)

	op := id.New()
	_, err := f.engine.AssignJobs(ctx, []id.ID{j.ID}, 2, &op, time.Time{})
	require.NoError(t, err)

	// The stock-image pass needs no operator, so covering pass 2 is enough.
	stored, err := f.jobs.GetByID(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusAffecte, stored.Status)
}

func TestAssignJobs_DuplicateAssignment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
	j := f.seedJob(inv, id.New(), job.StatusEnAttente)

	op := id.New()
	_, err := f.engine.AssignJobs(ctx, []id.ID{j.ID}, 1, &op, time.Time{})
	require.NoError(t, err)
	firstID := f.assignments.items[0].ID

	_, err = f.engine.AssignJobs(ctx, []id.ID{j.ID}, 1, &op, time.Time{})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "déjà une affectation")

	// First assignment unchanged.
	require.Len(t, f.assignments.items, 1)
	assert.Equal(t, firstID, f.assignments.items[0].ID)
}

func TestAssignJobs_CrossInventoryMixing(t *testing.T) {
	f := newFixture()
	inv1 := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
	inv2 := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
	j1 := f.seedJob(inv1, id.New(), job.StatusEnAttente)
	j2 := f.seedJob(inv2, id.New(), job.StatusEnAttente)

	_, err := f.engine.AssignJobs(context.Background(), []id.ID{j1.ID, j2.ID}, 1, nil, time.Time{})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "même inventaire")
}

func TestAssignJobs_ImageDeStockForbidsOperator(t *testing.T) {
	f := newFixture()
	inv := f.seedInventory(counting.ModeImageDeStock, counting.ModeParArticle)
	j := f.seedJob(inv, id.New(), job.StatusEnAttente)

	op := id.New()
	_, err := f.engine.AssignJobs(context.Background(), []id.ID{j.ID}, 1, &op, time.Time{})
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "image de stock")
}

func TestAssignJobs_UnknownCountingOrder(t *testing.T) {
	f := newFixture()
	inv := f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)
	j := f.seedJob(inv, id.New(), job.StatusEnAttente)

	_, err := f.engine.AssignJobs(context.Background(), []id.ID{j.ID}, 7, nil, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Comptage d'ordre 7 non trouvé")
}

func TestAssignJobs_UnknownJob(t *testing.T) {
	f := newFixture()
	f.seedInventory(counting.ModeEnVrac, counting.ModeParArticle)

	_, err := f.engine.AssignJobs(context.Background(), []id.ID{id.New()}, 1, nil, time.Time{})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}
