package workflow

import (
	"context"
	"fmt"
	"time"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/domain/assignment"
	"countflow/internal/domain/counting"
	"countflow/internal/domain/inventory"
	"countflow/internal/domain/job"
)

// In-memory fakes backing the workflow tests. They honor the same contracts
// as the postgres repositories: Get* returns a not-found error, Find*
// returns a found flag.

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

type fakeInventoryRepo struct {
	items map[id.ID]*inventory.Inventory
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{items: make(map[id.ID]*inventory.Inventory)}
}

func (r *fakeInventoryRepo) Create(_ context.Context, inv *inventory.Inventory) error {
	r.items[inv.ID] = inv
	return nil
}

func (r *fakeInventoryRepo) GetByID(_ context.Context, inventoryID id.ID) (*inventory.Inventory, error) {
	inv, ok := r.items[inventoryID]
	if !ok {
		return nil, apperror.NewNotFound("inventaire", inventoryID)
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInventoryRepo) Update(_ context.Context, inv *inventory.Inventory) error {
	if _, ok := r.items[inv.ID]; !ok {
		return apperror.NewNotFound("inventaire", inv.ID)
	}
	cp := *inv
	r.items[inv.ID] = &cp
	return nil
}

type fakeCountingRepo struct {
	items []counting.Counting
}

func (r *fakeCountingRepo) Create(_ context.Context, c *counting.Counting) error {
	r.items = append(r.items, *c)
	return nil
}

func (r *fakeCountingRepo) GetByID(_ context.Context, countingID id.ID) (*counting.Counting, error) {
	for i := range r.items {
		if r.items[i].ID == countingID {
			cp := r.items[i]
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("comptage", countingID)
}

func (r *fakeCountingRepo) FindByInventoryAndOrder(_ context.Context, inventoryID id.ID, order int) (*counting.Counting, bool, error) {
	for i := range r.items {
		if r.items[i].InventoryID == inventoryID && r.items[i].Order == order {
			cp := r.items[i]
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeCountingRepo) ListByInventory(_ context.Context, inventoryID id.ID) ([]counting.Counting, error) {
	var out []counting.Counting
	for maxOrder := 1; ; maxOrder++ {
		found := false
		for i := range r.items {
			if r.items[i].InventoryID == inventoryID && r.items[i].Order == maxOrder {
				out = append(out, r.items[i])
				found = true
			}
		}
		if !found {
			break
		}
	}
	return out, nil
}

func (r *fakeCountingRepo) NextOrder(_ context.Context, inventoryID id.ID) (int, error) {
	max := 0
	for i := range r.items {
		if r.items[i].InventoryID == inventoryID && r.items[i].Order > max {
			max = r.items[i].Order
		}
	}
	return max + 1, nil
}

type fakeJobRepo struct {
	items map[id.ID]*job.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{items: make(map[id.ID]*job.Job)}
}

func (r *fakeJobRepo) Create(_ context.Context, j *job.Job) error {
	cp := *j
	r.items[j.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, jobID id.ID) (*job.Job, error) {
	j, ok := r.items[jobID]
	if !ok {
		return nil, apperror.NewNotFound("job", jobID)
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) GetByIDs(_ context.Context, jobIDs []id.ID) ([]job.Job, error) {
	var out []job.Job
	for _, jobID := range jobIDs {
		if j, ok := r.items[jobID]; ok {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) Update(_ context.Context, j *job.Job) error {
	if _, ok := r.items[j.ID]; !ok {
		return apperror.NewNotFound("job", j.ID)
	}
	cp := *j
	r.items[j.ID] = &cp
	return nil
}

func (r *fakeJobRepo) ListByInventory(_ context.Context, inventoryID id.ID, warehouseID *id.ID) ([]job.Job, error) {
	var out []job.Job
	for _, j := range r.items {
		if j.InventoryID != inventoryID {
			continue
		}
		if warehouseID != nil && j.WarehouseID != *warehouseID {
			continue
		}
		out = append(out, *j)
	}
	return out, nil
}

type fakeDetailRepo struct {
	items     []job.Detail
	countings *fakeCountingRepo
}

func (r *fakeDetailRepo) Create(_ context.Context, d *job.Detail) error {
	r.items = append(r.items, *d)
	return nil
}

func (r *fakeDetailRepo) Update(_ context.Context, d *job.Detail) error {
	for i := range r.items {
		if r.items[i].ID == d.ID {
			r.items[i] = *d
			return nil
		}
	}
	return apperror.NewNotFound("job detail", d.ID)
}

func (r *fakeDetailRepo) FindByJobLocationCounting(_ context.Context, jobID, locationID, countingID id.ID) (*job.Detail, bool, error) {
	for i := range r.items {
		d := &r.items[i]
		if d.IsDeleted {
			continue
		}
		if d.JobID == jobID && d.LocationID == locationID && d.CountingID == countingID {
			cp := *d
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeDetailRepo) FindByInventoryAndLocation(ctx context.Context, inventoryID, locationID id.ID) (*job.Detail, bool, error) {
	for i := range r.items {
		d := &r.items[i]
		if d.IsDeleted || d.LocationID != locationID {
			continue
		}
		c, err := r.countings.GetByID(ctx, d.CountingID)
		if err != nil {
			continue
		}
		if c.InventoryID == inventoryID {
			cp := *d
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeDetailRepo) ExistsForJobAndLocation(_ context.Context, jobID, locationID id.ID) (bool, error) {
	for i := range r.items {
		d := &r.items[i]
		if d.IsDeleted {
			continue
		}
		if d.JobID == jobID && d.LocationID == locationID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeDetailRepo) MaxCountingOrder(ctx context.Context, jobID, locationID id.ID) (int, error) {
	max := 0
	for i := range r.items {
		d := &r.items[i]
		if d.IsDeleted || d.JobID != jobID || d.LocationID != locationID {
			continue
		}
		c, err := r.countings.GetByID(ctx, d.CountingID)
		if err != nil {
			continue
		}
		if c.Order > max {
			max = c.Order
		}
	}
	return max, nil
}

type fakeAssignmentRepo struct {
	items []assignment.Assignment
}

func (r *fakeAssignmentRepo) Create(_ context.Context, a *assignment.Assignment) error {
	for i := range r.items {
		if r.items[i].JobID == a.JobID && r.items[i].CountingID == a.CountingID {
			return apperror.NewDuplicate("affectation", "job/comptage", a.Reference)
		}
	}
	r.items = append(r.items, *a)
	return nil
}

func (r *fakeAssignmentRepo) Update(_ context.Context, a *assignment.Assignment) error {
	for i := range r.items {
		if r.items[i].ID == a.ID {
			r.items[i] = *a
			return nil
		}
	}
	return apperror.NewNotFound("affectation", a.ID)
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, assignmentID id.ID) (*assignment.Assignment, error) {
	for i := range r.items {
		if r.items[i].ID == assignmentID {
			cp := r.items[i]
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("affectation", assignmentID)
}

func (r *fakeAssignmentRepo) FindByJobAndCounting(_ context.Context, jobID, countingID id.ID) (*assignment.Assignment, bool, error) {
	for i := range r.items {
		if r.items[i].JobID == jobID && r.items[i].CountingID == countingID {
			cp := r.items[i]
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeAssignmentRepo) ListByJob(_ context.Context, jobID id.ID) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	for i := range r.items {
		if r.items[i].JobID == jobID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *fakeAssignmentRepo) ListByJobs(_ context.Context, jobIDs []id.ID) ([]assignment.Assignment, error) {
	want := make(map[id.ID]struct{}, len(jobIDs))
	for _, jid := range jobIDs {
		want[jid] = struct{}{}
	}
	var out []assignment.Assignment
	for i := range r.items {
		if _, ok := want[r.items[i].JobID]; ok {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

type fakeLocations struct {
	// location -> warehouse
	membership map[id.ID]id.ID
}

func (f *fakeLocations) BelongsToWarehouse(_ context.Context, locationID, warehouseID id.ID) (bool, error) {
	wh, ok := f.membership[locationID]
	return ok && wh == warehouseID, nil
}

// fixture bundles the fakes plus the wired workflow components.
type fixture struct {
	inventories *fakeInventoryRepo
	countings   *fakeCountingRepo
	jobs        *fakeJobRepo
	details     *fakeDetailRepo
	assignments *fakeAssignmentRepo
	locations   *fakeLocations
	refs        *fakeRefs

	lifecycle *Lifecycle
	engine    *Engine
	ready     *Ready
	sequencer *Sequencer
}

func newFixture() *fixture {
	f := &fixture{
		inventories: newFakeInventoryRepo(),
		countings:   &fakeCountingRepo{},
		jobs:        newFakeJobRepo(),
		assignments: &fakeAssignmentRepo{},
		locations:   &fakeLocations{membership: make(map[id.ID]id.ID)},
		refs:        &fakeRefs{},
	}
	f.details = &fakeDetailRepo{countings: f.countings}

	txm := fakeTxManager{}
	f.lifecycle = NewLifecycle(f.inventories, f.countings, f.jobs, f.details, f.assignments, f.locations, f.refs, txm)
	f.engine = NewEngine(f.jobs, f.countings, f.assignments, f.refs, txm)
	f.ready = NewReady(f.jobs, f.countings, f.assignments, txm)
	f.sequencer = NewSequencer(f.jobs, f.details, f.countings, f.assignments, f.refs, txm)
	return f
}

func inv2026() time.Time {
	return time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
}

// seedInventory creates an EN REALISATION inventory with the given pass modes.
func (f *fixture) seedInventory(modes ...counting.CountMode) *inventory.Inventory {
	inv := inventory.New("Inventaire annuel", inv2026(), inventory.TypeGeneral)
	inv.Reference = "INV-2026-00001"
	inv.Status = inventory.StatusEnRealisation
	f.inventories.items[inv.ID] = inv

	for i, mode := range modes {
		c := counting.NewCounting(inv.ID, i+1, mode, counting.Flags{})
		c.Reference = fmt.Sprintf("CNT-2026-%05d", i+1)
		f.countings.items = append(f.countings.items, *c)
	}
	return inv
}

func (f *fixture) seedJob(inv *inventory.Inventory, warehouseID id.ID, status job.Status) *job.Job {
	j := job.NewJob(inv.ID, warehouseID)
	j.Reference = fmt.Sprintf("JOB-2026-%05d", len(f.jobs.items)+1)
	j.Status = status
	cp := *j
	f.jobs.items[j.ID] = &cp
	return j
}
