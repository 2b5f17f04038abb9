package inventory

import (
	"context"
	"fmt"
	"time"

	"countflow/internal/core/apperror"
	"countflow/internal/core/id"
	"countflow/internal/core/tx"
	"countflow/internal/domain/counting"
	"countflow/internal/domain/job"
	"countflow/pkg/logger"
	"countflow/pkg/refnum"
)

// RefGenerator issues human-readable references.
type RefGenerator interface {
	Next(ctx context.Context, prefix string) (string, error)
}

// Service creates and launches inventory campaigns.
type Service struct {
	inventories Repository
	countings   counting.Repository
	jobs        job.Repository
	refs        RefGenerator
	txManager   tx.Manager
}

// NewService creates the inventory service.
func NewService(
	inventories Repository,
	countings counting.Repository,
	jobs job.Repository,
	refs RefGenerator,
	txManager tx.Manager,
) *Service {
	return &Service{
		inventories: inventories,
		countings:   countings,
		jobs:        jobs,
		refs:        refs,
		txManager:   txManager,
	}
}

// Create validates the counting configuration and persists the inventory
// with its counting passes in one transaction.
func (s *Service) Create(ctx context.Context, label string, date time.Time, invType Type, configs []counting.Config) (*Inventory, error) {
	if label == "" {
		return nil, apperror.NewValidation("Le label est obligatoire")
	}
	if date.IsZero() {
		return nil, apperror.NewValidation("La date est obligatoire")
	}
	if invType != TypeGeneral && invType != TypeTournant {
		return nil, apperror.NewValidation(fmt.Sprintf("Type d'inventaire non supporté: %s", invType))
	}

	if err := counting.ValidateConfig(configs); err != nil {
		return nil, err
	}

	inv := New(label, date, invType)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ref, err := s.refs.Next(ctx, refnum.PrefixInventory)
		if err != nil {
			return err
		}
		inv.Reference = ref

		if err := s.inventories.Create(ctx, inv); err != nil {
			return err
		}

		for _, cfg := range configs {
			order, err := s.countings.NextOrder(ctx, inv.ID)
			if err != nil {
				return err
			}

			c := counting.NewCounting(inv.ID, order, cfg.CountMode, cfg.Flags)
			if c.Reference, err = s.refs.Next(ctx, refnum.PrefixCounting); err != nil {
				return err
			}
			if err := s.countings.Create(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory created",
		"inventory", inv.Reference,
		"type", inv.Type,
		"countings", len(configs),
	)
	return inv, nil
}

// Get returns one inventory by its identifier.
func (s *Service) Get(ctx context.Context, inventoryID id.ID) (*Inventory, error) {
	return s.inventories.GetByID(ctx, inventoryID)
}

// ValidateLaunch checks whether the inventory may move to EN REALISATION.
// GENERAL campaigns need every job PRET; TOURNANT campaigns need at least
// one job PRET.
func (s *Service) ValidateLaunch(ctx context.Context, inventoryID id.ID) error {
	inv, err := s.inventories.GetByID(ctx, inventoryID)
	if err != nil {
		return err
	}

	jobs, err := s.jobs.ListByInventory(ctx, inventoryID, nil)
	if err != nil {
		return err
	}

	switch inv.Type {
	case TypeGeneral:
		if len(jobs) == 0 {
			return apperror.NewInvalidState(
				fmt.Sprintf("Aucun job trouvé pour l'inventaire %s", inv.Reference))
		}
		for _, j := range jobs {
			if j.Status != job.StatusPret {
				return apperror.NewInvalidState("Tous les jobs ne sont pas au statut PRET.").
					WithDetail("job", j.Reference).
					WithDetail("status", j.Status)
			}
		}
	case TypeTournant:
		for _, j := range jobs {
			if j.Status == job.StatusPret {
				return nil
			}
		}
		return apperror.NewInvalidState("Au moins un job doit être au statut PRET pour lancer l'inventaire.")
	default:
		return apperror.NewValidation(fmt.Sprintf("Type d'inventaire non supporté: %s", inv.Type))
	}
	return nil
}

// Launch moves the inventory to EN REALISATION after launch validation.
func (s *Service) Launch(ctx context.Context, inventoryID id.ID) error {
	inv, err := s.inventories.GetByID(ctx, inventoryID)
	if err != nil {
		return err
	}

	if inv.Status != StatusEnPreparation {
		return apperror.NewInvalidState(
			fmt.Sprintf("L'inventaire %s ne peut pas être lancé (statut: %s)", inv.Reference, inv.Status))
	}

	if err := s.ValidateLaunch(ctx, inventoryID); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv.MarkEnRealisation(time.Now().UTC())
		if err := s.inventories.Update(ctx, inv); err != nil {
			return err
		}
		logger.Info(ctx, "inventory launched", "inventory", inv.Reference)
		return nil
	})
}
