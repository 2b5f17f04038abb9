package ecart

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRefs struct {
	n int
}

func (r *fakeRefs) Next(_ context.Context, prefix string) (string, error) {
	r.n++
	return fmt.Sprintf("%s-2026-%05d", prefix, r.n), nil
}

type fakeRepo struct {
	items     map[id.ID]*EcartComptage
	sequences map[id.ID][]Sequence
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:     make(map[id.ID]*EcartComptage),
		sequences: make(map[id.ID][]Sequence),
	}
}

func (r *fakeRepo) Create(_ context.Context, e *EcartComptage) error {
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *fakeRepo) Update(_ context.Context, e *EcartComptage) error {
	if _, ok := r.items[e.ID]; !ok {
		return apperror.NewNotFound("écart", e.ID)
	}
	cp := *e
	r.items[e.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, ecartID id.ID) (*EcartComptage, error) {
	e, ok := r.items[ecartID]
	if !ok || e.IsDeleted {
		return nil, apperror.NewNotFound("écart", ecartID)
	}
	cp := *e
	return &cp, nil
}

func (r *fakeRepo) FindByLocationProduct(_ context.Context, inventoryID, locationID id.ID, productID *id.ID) (*EcartComptage, bool, error) {
	for _, e := range r.items {
		if e.IsDeleted || e.InventoryID != inventoryID || e.LocationID != locationID {
			continue
		}
		if (e.ProductID == nil) != (productID == nil) {
			continue
		}
		if productID != nil && *e.ProductID != *productID {
			continue
		}
		cp := *e
		return &cp, true, nil
	}
	return nil, false, nil
}

func (r *fakeRepo) SaveSequences(_ context.Context, ecartID id.ID, seqs []Sequence) error {
	r.sequences[ecartID] = append([]Sequence(nil), seqs...)
	return nil
}

func (r *fakeRepo) ListSequences(_ context.Context, ecartID id.ID) ([]Sequence, error) {
	return append([]Sequence(nil), r.sequences[ecartID]...), nil
}

func newService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo, &fakeRefs{}, fakeTxManager{}), repo
}

func TestOpen_BuildsSequenceTrail(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	inputs := []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 3, Quantity: 121},
	}

	e, err := svc.Open(ctx, id.New(), id.New(), nil, inputs)
	require.NoError(t, err)
	assert.Equal(t, 3, e.TotalSequences)
	assert.Equal(t, 3, e.StoppedSequence)
	require.NotNil(t, e.FinalResult)
	assert.Equal(t, int64(121), *e.FinalResult)
	assert.False(t, e.Resolved)
	assert.NotEmpty(t, e.Reference)

	seqs, err := repo.ListSequences(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, seqs, 3)

	// Inputs are reordered by counting order; deltas chain 120 -> 118 -> 121.
	assert.Equal(t, int64(120), seqs[0].Quantity)
	assert.Nil(t, seqs[0].EcartWithPrevious)
	require.NotNil(t, seqs[1].EcartWithPrevious)
	assert.Equal(t, int64(-2), *seqs[1].EcartWithPrevious)
	require.NotNil(t, seqs[2].EcartWithPrevious)
	assert.Equal(t, int64(3), *seqs[2].EcartWithPrevious)
}

func TestOpen_RequiresTwoInputs(t *testing.T) {
	svc, _ := newService()

	_, err := svc.Open(context.Background(), id.New(), id.New(), nil, []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 10},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "au moins deux quantités")
}

func TestOpen_DuplicateLocationProduct(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	inventoryID, locationID := id.New(), id.New()

	inputs := []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 10},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 12},
	}
	_, err := svc.Open(ctx, inventoryID, locationID, nil, inputs)
	require.NoError(t, err)

	_, err = svc.Open(ctx, inventoryID, locationID, nil, inputs)
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))

	// Same location, distinct product: no conflict.
	productID := id.New()
	_, err = svc.Open(ctx, inventoryID, locationID, &productID, inputs)
	require.NoError(t, err)
}

func TestUpdateFinalResult(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	e, err := svc.Open(ctx, id.New(), id.New(), nil, []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateFinalResult(ctx, e.ID, 119))

	stored, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.FinalResult)
	assert.Equal(t, int64(119), *stored.FinalResult)

	// Re-setting the same value is a no-op.
	require.NoError(t, svc.UpdateFinalResult(ctx, e.ID, 119))
}

func TestUpdateFinalResult_RequiresTwoSequences(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	e := &EcartComptage{TotalSequences: 1}
	e.ID = id.New()
	require.NoError(t, repo.Create(ctx, e))

	err := svc.UpdateFinalResult(ctx, e.ID, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Il faut au moins deux comptages enregistrés pour modifier le résultat final.")
}

func TestUpdateFinalResult_ResolvedIsFrozen(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	e, err := svc.Open(ctx, id.New(), id.New(), nil, []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, e.ID, "écart validé par le responsable"))

	err = svc.UpdateFinalResult(ctx, e.ID, 130)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))

	stored, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(118), *stored.FinalResult)
}

func TestResolve(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	e, err := svc.Open(ctx, id.New(), id.New(), nil, []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Resolve(ctx, e.ID, "recomptage confirmé"))

	stored, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, stored.Resolved)
	assert.Equal(t, "recomptage confirmé", stored.Justification)
	assert.Equal(t, StoppedReasonManual, stored.StoppedReason)
	assert.NotNil(t, stored.ResolvedAt)
}

func TestResolve_AlreadyResolved(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	e, err := svc.Open(ctx, id.New(), id.New(), nil, []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, e.ID, "première résolution"))

	err = svc.Resolve(ctx, e.ID, "seconde résolution")
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestResolve_RequiresFinalResult(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	e := &EcartComptage{TotalSequences: 2}
	e.ID = id.New()
	require.NoError(t, repo.Create(ctx, e))

	err := svc.Resolve(ctx, e.ID, "justification")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Le résultat final doit être renseigné avant de pouvoir résoudre l'écart.")
}

func TestResolve_RequiresTwoSequences(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	final := int64(10)
	e := &EcartComptage{TotalSequences: 1, FinalResult: &final}
	e.ID = id.New()
	require.NoError(t, repo.Create(ctx, e))

	err := svc.Resolve(ctx, e.ID, "justification")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Il faut au moins deux comptages enregistrés pour résoudre l'écart.")
}

func TestCancel_FreesLocationProduct(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()
	inventoryID, locationID := id.New(), id.New()

	inputs := []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
	}
	e, err := svc.Open(ctx, inventoryID, locationID, nil, inputs)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, e.ID))

	// The cancelled discrepancy is gone from every read path.
	_, err = repo.GetByID(ctx, e.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	// And a fresh one can be opened for the same location/product.
	reopened, err := svc.Open(ctx, inventoryID, locationID, nil, inputs)
	require.NoError(t, err)
	assert.NotEqual(t, e.ID, reopened.ID)
}

func TestCancel_ResolvedIsFrozen(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	e, err := svc.Open(ctx, id.New(), id.New(), nil, []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
	})
	require.NoError(t, err)
	require.NoError(t, svc.Resolve(ctx, e.ID, "recomptage confirmé"))

	err = svc.Cancel(ctx, e.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsInvalidState(err))
}

func TestResolve_KeepsExistingStoppedReason(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	e, err := svc.Open(ctx, id.New(), id.New(), nil, []SequenceInput{
		{CountingDetailID: id.New(), CountingOrder: 1, Quantity: 120},
		{CountingDetailID: id.New(), CountingOrder: 2, Quantity: 118},
	})
	require.NoError(t, err)

	stored, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	stored.StoppedReason = "AUTRE_RAISON"
	require.NoError(t, repo.Update(ctx, stored))

	require.NoError(t, svc.Resolve(ctx, e.ID, "ok"))

	stored, err = repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "AUTRE_RAISON", stored.StoppedReason)
}
