package ecart

import (
	"context"
	"sort"
	"time"

	"countflow/internal/core/apperror"
	"countflow/internal/core/entity"
	"countflow/internal/core/id"
	"countflow/internal/core/tx"
	"countflow/pkg/logger"
	"countflow/pkg/refnum"
)

// RefGenerator issues human-readable references.
type RefGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// SequenceInput is one recorded quantity contributing to a discrepancy.
type SequenceInput struct {
	CountingDetailID id.ID `json:"countingDetailId"`
	CountingOrder    int   `json:"countingOrder"`
	Quantity         int64 `json:"quantity"`
}

// Service manages the discrepancy reconciliation workflow.
type Service struct {
	repo      Repository
	refs      RefGenerator
	txManager tx.Manager
}

// NewService creates the discrepancy service.
func NewService(repo Repository, refs RefGenerator, txManager tx.Manager) *Service {
	return &Service{repo: repo, refs: refs, txManager: txManager}
}

// Open creates the discrepancy for a location/product from the quantities
// recorded so far. The decision that passes disagree belongs to the caller;
// this builds the trail: one sequence per input ordered by counting order,
// each carrying the delta against the previous quantity, and a final result
// defaulting to the last recorded quantity until explicitly overridden.
func (s *Service) Open(ctx context.Context, inventoryID, locationID id.ID, productID *id.ID, inputs []SequenceInput) (*EcartComptage, error) {
	if len(inputs) < 2 {
		return nil, apperror.NewValidation(
			"Il faut au moins deux quantités enregistrées pour ouvrir un écart.")
	}

	_, exists, err := s.repo.FindByLocationProduct(ctx, inventoryID, locationID, productID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewConflict("Un écart existe déjà pour cet emplacement et ce produit").
			WithDetail("location_id", locationID)
	}

	sorted := make([]SequenceInput, len(inputs))
	copy(sorted, inputs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CountingOrder < sorted[j].CountingOrder })

	e := &EcartComptage{
		Base:            entity.NewBase(),
		InventoryID:     inventoryID,
		LocationID:      locationID,
		ProductID:       productID,
		TotalSequences:  len(sorted),
		StoppedSequence: sorted[len(sorted)-1].CountingOrder,
	}

	lastQty := sorted[len(sorted)-1].Quantity
	e.FinalResult = &lastQty

	sequences := make([]Sequence, 0, len(sorted))
	for i, in := range sorted {
		seq := Sequence{
			Base:             entity.NewBase(),
			EcartComptageID:  e.ID,
			CountingDetailID: in.CountingDetailID,
			SequenceNumber:   in.CountingOrder,
			Quantity:         in.Quantity,
		}
		if i > 0 {
			delta := in.Quantity - sorted[i-1].Quantity
			seq.EcartWithPrevious = &delta
		}
		sequences = append(sequences, seq)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if e.Reference, err = s.refs.Next(ctx, refnum.PrefixEcart); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, e); err != nil {
			return err
		}
		return s.repo.SaveSequences(ctx, e.ID, sequences)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "ecart opened",
		"ecart", e.Reference,
		"sequences", e.TotalSequences,
		"final_result", lastQty,
	)
	return e, nil
}

// Get returns a discrepancy with its full sequence trail.
func (s *Service) Get(ctx context.Context, ecartID id.ID) (*EcartComptage, []Sequence, error) {
	e, err := s.repo.GetByID(ctx, ecartID)
	if err != nil {
		return nil, nil, err
	}
	sequences, err := s.repo.ListSequences(ctx, ecartID)
	if err != nil {
		return nil, nil, err
	}
	return e, sequences, nil
}

// UpdateFinalResult sets the accepted quantity of a discrepancy. Requires
// at least two recorded sequences. Re-setting the same value is a no-op.
func (s *Service) UpdateFinalResult(ctx context.Context, ecartID id.ID, value int64) error {
	e, err := s.repo.GetByID(ctx, ecartID)
	if err != nil {
		return err
	}

	if e.Resolved {
		return apperror.NewInvalidState("L'écart est déjà résolu, le résultat final ne peut plus être modifié.")
	}
	if e.TotalSequences < 2 {
		return apperror.NewValidation(
			"Il faut au moins deux comptages enregistrés pour modifier le résultat final.")
	}
	if e.FinalResult != nil && *e.FinalResult == value {
		return nil
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e.FinalResult = &value
		e.Touch()
		return s.repo.Update(ctx, e)
	})
}

// Cancel soft-deletes an unresolved discrepancy, freeing the location and
// product so a fresh one can be opened. Resolved discrepancies are frozen.
func (s *Service) Cancel(ctx context.Context, ecartID id.ID) error {
	e, err := s.repo.GetByID(ctx, ecartID)
	if err != nil {
		return err
	}

	if e.Resolved {
		return apperror.NewInvalidState("L'écart est déjà résolu, il ne peut plus être annulé.")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		e.MarkDeleted()
		if err := s.repo.Update(ctx, e); err != nil {
			return err
		}
		logger.Info(ctx, "ecart cancelled", "ecart", e.Reference)
		return nil
	})
}

// Resolve closes the discrepancy. The final result must already be set;
// a resolved discrepancy cannot be resolved again.
func (s *Service) Resolve(ctx context.Context, ecartID id.ID, justification string) error {
	e, err := s.repo.GetByID(ctx, ecartID)
	if err != nil {
		return err
	}

	if e.Resolved {
		return apperror.NewInvalidState("L'écart est déjà résolu.")
	}
	if e.TotalSequences < 2 {
		return apperror.NewValidation(
			"Il faut au moins deux comptages enregistrés pour résoudre l'écart.")
	}
	if e.FinalResult == nil {
		return apperror.NewValidation(
			"Le résultat final doit être renseigné avant de pouvoir résoudre l'écart.")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		e.Resolved = true
		e.Justification = justification
		e.ResolvedAt = &now
		if e.StoppedReason == "" {
			e.StoppedReason = StoppedReasonManual
		}
		e.Touch()
		if err := s.repo.Update(ctx, e); err != nil {
			return err
		}
		logger.Info(ctx, "ecart resolved", "ecart", e.Reference)
		return nil
	})
}
