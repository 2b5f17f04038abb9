package counting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"countflow/internal/core/apperror"
)

func cfg(order int, mode CountMode, flags Flags) Config {
	return Config{Order: order, CountMode: mode, Flags: flags}
}

func TestValidateConfig_EnVracFirst_NoCrossConstraint(t *testing.T) {
	configs := []Config{
		cfg(1, ModeEnVrac, Flags{}),
		cfg(2, ModeParArticle, Flags{NLot: true}),
		cfg(3, ModeEnVrac, Flags{DLC: true}),
	}
	require.NoError(t, ValidateConfig(configs))
}

func TestValidateConfig_ImageDeStockFirst(t *testing.T) {
	base := Flags{NLot: true, NSerie: true}

	t.Run("valid", func(t *testing.T) {
		configs := []Config{
			cfg(1, ModeImageDeStock, Flags{}),
			cfg(2, ModeParArticle, base),
			cfg(3, ModeParArticle, base),
		}
		require.NoError(t, ValidateConfig(configs))
	})

	t.Run("second pass must be par article", func(t *testing.T) {
		configs := []Config{
			cfg(1, ModeImageDeStock, Flags{}),
			cfg(2, ModeEnVrac, Flags{}),
			cfg(3, ModeEnVrac, Flags{}),
		}
		err := ValidateConfig(configs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "par article")
	})

	t.Run("flag mismatch names the flag", func(t *testing.T) {
		other := base
		other.IsVariant = true
		configs := []Config{
			cfg(1, ModeImageDeStock, Flags{}),
			cfg(2, ModeParArticle, base),
			cfg(3, ModeParArticle, other),
		}
		err := ValidateConfig(configs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Variante")

		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestValidateConfig_ParArticleFirst(t *testing.T) {
	base := Flags{QuantityShow: true}

	t.Run("valid", func(t *testing.T) {
		configs := []Config{
			cfg(1, ModeParArticle, base),
			cfg(2, ModeParArticle, base),
			cfg(3, ModeParArticle, base),
		}
		require.NoError(t, ValidateConfig(configs))
	})

	t.Run("differing mode rejected", func(t *testing.T) {
		configs := []Config{
			cfg(1, ModeParArticle, base),
			cfg(2, ModeEnVrac, base),
		}
		require.Error(t, ValidateConfig(configs))
	})

	t.Run("differing flags name the flag", func(t *testing.T) {
		other := base
		other.QuantityShow = false
		configs := []Config{
			cfg(1, ModeParArticle, base),
			cfg(2, ModeParArticle, other),
		}
		err := ValidateConfig(configs)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Afficher la quantité")
	})
}

func TestValidateConfig_ImageDeStockOnlyFirst(t *testing.T) {
	configs := []Config{
		cfg(1, ModeEnVrac, Flags{}),
		cfg(2, ModeImageDeStock, Flags{}),
	}
	err := ValidateConfig(configs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "premier comptage")
}

func TestValidateConfig_OrdersMustBeGapless(t *testing.T) {
	configs := []Config{
		cfg(1, ModeEnVrac, Flags{}),
		cfg(3, ModeEnVrac, Flags{}),
	}
	require.Error(t, ValidateConfig(configs))
}

func TestValidateConfig_InvalidMode(t *testing.T) {
	configs := []Config{
		cfg(1, CountMode("au hasard"), Flags{}),
	}
	err := ValidateConfig(configs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "au hasard")
}

func TestRuleFor(t *testing.T) {
	assert.True(t, RuleFor(ModeEnVrac).AllowsOperator)
	assert.True(t, RuleFor(ModeParArticle).RequiresOperatorAssignment)
	assert.False(t, RuleFor(ModeImageDeStock).AllowsOperator)
	assert.False(t, RuleFor(ModeImageDeStock).RequiresOperatorAssignment)
	assert.True(t, RuleFor(ModeImageDeStock).FirstOnly)
}

func TestFirstMismatch(t *testing.T) {
	a := Flags{NLot: true}
	b := Flags{NSerie: true}
	assert.Equal(t, "N° lot", FirstMismatch(a, b))
	assert.Equal(t, "", FirstMismatch(a, a))
}
