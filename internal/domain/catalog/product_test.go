package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("Creates active product with uppercased code", func(t *testing.T) {
		p, err := NewProduct("wid-001", "Widget", "pcs", ProductKindRawMaterial)
		require.NoError(t, err)

		assert.Equal(t, "WID-001", p.Code)
		assert.Equal(t, ProductKindRawMaterial, p.Kind)
		assert.True(t, p.IsActive())
		assert.True(t, p.StandardCost.IsZero())
	})

	t.Run("Rejects blank fields", func(t *testing.T) {
		_, err := NewProduct("", "Widget", "pcs", ProductKindRawMaterial)
		assert.Error(t, err)

		_, err = NewProduct("W-1", "  ", "pcs", ProductKindRawMaterial)
		assert.Error(t, err)

		_, err = NewProduct("W-1", "Widget", "", ProductKindRawMaterial)
		assert.Error(t, err)
	})

	t.Run("Rejects invalid kind", func(t *testing.T) {
		_, err := NewProduct("W-1", "Widget", "pcs", ProductKind("service"))
		assert.Error(t, err)
	})
}

func TestProductStandardCost(t *testing.T) {
	p, err := NewProduct("W-1", "Widget", "pcs", ProductKindFinishedGood)
	require.NoError(t, err)

	require.NoError(t, p.SetStandardCost(decimal.NewFromFloat(12.5)))
	assert.True(t, p.StandardCost.Equal(decimal.NewFromFloat(12.5)))

	assert.Error(t, p.SetStandardCost(decimal.NewFromInt(-1)))
}

func TestProductDiscontinue(t *testing.T) {
	p, err := NewProduct("W-1", "Widget", "pcs", ProductKindFinishedGood)
	require.NoError(t, err)

	p.Discontinue()
	assert.False(t, p.IsActive())
}
