package counting

import (
	"fmt"

	"countflow/internal/core/apperror"
)

// Config is one proposed counting pass for a new inventory, before anything
// is persisted.
type Config struct {
	Order     int       `json:"order"`
	CountMode CountMode `json:"countMode"`
	Flags
}

// ValidateConfig validates the ordered list of counting configurations
// proposed when an inventory is created. Pure; the caller persists the
// inventory and its countings only after this returns nil.
//
// Consistency rules:
//   - orders must be exactly 1..N with no gaps;
//   - "image de stock" may only appear as the first pass;
//   - a first pass "image de stock" forces passes 2 and 3 to be
//     "par article" with identical flags to each other;
//   - a first pass "par article" forces every following pass to be
//     "par article" with the same flags as the first;
//   - a first pass "en vrac" imposes no cross-pass constraint.
func ValidateConfig(configs []Config) error {
	if len(configs) == 0 {
		return apperror.NewValidation("Au moins un comptage est obligatoire")
	}

	for i, cfg := range configs {
		if !cfg.CountMode.Valid() {
			return apperror.NewValidation(
				fmt.Sprintf("Comptage %d: Mode de comptage invalide '%s'", i+1, cfg.CountMode)).
				WithDetail("order", cfg.Order)
		}
		if cfg.Order != i+1 {
			return apperror.NewValidation("Les comptages doivent avoir des ordres consécutifs à partir de 1").
				WithDetail("order", cfg.Order)
		}
		if RuleFor(cfg.CountMode).FirstOnly && i != 0 {
			return apperror.NewValidation(
				fmt.Sprintf("Le mode '%s' n'est autorisé que pour le premier comptage", cfg.CountMode)).
				WithDetail("order", cfg.Order)
		}
	}

	first := configs[0]

	switch first.CountMode {
	case ModeImageDeStock:
		// Passes 2 and 3 must be "par article" and identical to each other.
		for i := 1; i < len(configs); i++ {
			if configs[i].CountMode != ModeParArticle {
				return apperror.NewValidation(
					fmt.Sprintf("Si le premier comptage est 'image de stock', le comptage %d doit être 'par article'", i+1)).
					WithDetail("order", configs[i].Order)
			}
		}
		if len(configs) >= 3 {
			if label := FirstMismatch(configs[1].Flags, configs[2].Flags); label != "" {
				return apperror.NewValidation(
					fmt.Sprintf("Les comptages 2 et 3 doivent avoir la même configuration (option '%s' différente)", label)).
					WithDetail("flag", label)
			}
		}

	case ModeParArticle:
		// Every following pass mirrors the first one exactly.
		for i := 1; i < len(configs); i++ {
			if configs[i].CountMode != ModeParArticle {
				return apperror.NewValidation(
					fmt.Sprintf("Si le premier comptage est 'par article', le comptage %d doit aussi être 'par article'", i+1)).
					WithDetail("order", configs[i].Order)
			}
			if label := FirstMismatch(first.Flags, configs[i].Flags); label != "" {
				return apperror.NewValidation(
					fmt.Sprintf("Le comptage %d doit avoir la même configuration que le comptage 1 (option '%s' différente)", i+1, label)).
					WithDetail("flag", label)
			}
		}
	}

	return nil
}
