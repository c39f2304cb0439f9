package ledger

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/shared"
)

func lineItem(key string, quantity, unitPrice float64) ApportionLineItem {
	return ApportionLineItem{
		Key:       key,
		Quantity:  decimal.NewFromFloat(quantity),
		UnitPrice: decimal.NewFromFloat(unitPrice),
	}
}

func TestApportionCost(t *testing.T) {
	t.Run("Splits cost in proportion to line values", func(t *testing.T) {
		// Values 1550 and 1300; freight 150.
		// 150 * 1550/2850 = 81.5789... -> 81.58; last takes 150 - 81.58 = 68.42
		items := []ApportionLineItem{
			lineItem("line-1", 100, 15.50),
			lineItem("line-2", 100, 13.00),
		}

		result, err := ApportionCost(decimal.NewFromInt(150), items)
		require.NoError(t, err)

		require.Len(t, result.Shares, 2)
		assert.True(t, result.Shares[0].AllocatedAmount.Equal(decimal.NewFromFloat(81.58)), "got %s", result.Shares[0].AllocatedAmount)
		assert.True(t, result.Shares[1].AllocatedAmount.Equal(decimal.NewFromFloat(68.42)), "got %s", result.Shares[1].AllocatedAmount)
	})

	t.Run("Shares always sum to the additional cost exactly", func(t *testing.T) {
		cases := []struct {
			cost  float64
			items []ApportionLineItem
		}{
			{100, []ApportionLineItem{lineItem("a", 3, 3.33), lineItem("b", 7, 7.77), lineItem("c", 11, 1.11)}},
			{0.01, []ApportionLineItem{lineItem("a", 1, 1), lineItem("b", 1, 1), lineItem("c", 1, 1)}},
			{999.99, []ApportionLineItem{lineItem("a", 13, 0.07), lineItem("b", 29, 41.50)}},
			{150, []ApportionLineItem{lineItem("only", 10, 5)}},
		}

		for i, tc := range cases {
			t.Run(fmt.Sprintf("case %d", i), func(t *testing.T) {
				result, err := ApportionCost(decimal.NewFromFloat(tc.cost), tc.items)
				require.NoError(t, err)

				sum := decimal.Zero
				for _, s := range result.Shares {
					sum = sum.Add(s.AllocatedAmount)
				}
				assert.True(t, sum.Equal(decimal.NewFromFloat(tc.cost)), "sum %s != cost %v", sum, tc.cost)
			})
		}
	})

	t.Run("Computes actual unit costs", func(t *testing.T) {
		items := []ApportionLineItem{
			lineItem("line-1", 100, 15.50),
			lineItem("line-2", 100, 13.00),
		}

		result, err := ApportionCost(decimal.NewFromInt(150), items)
		require.NoError(t, err)

		// (1550 + 81.58) / 100 = 16.3158
		assert.True(t, result.Shares[0].ActualTotalCost.Equal(decimal.NewFromFloat(1631.58)))
		assert.True(t, result.Shares[0].ActualUnitCost.Equal(decimal.NewFromFloat(16.3158)), "got %s", result.Shares[0].ActualUnitCost)
		// (1300 + 68.42) / 100 = 13.6842
		assert.True(t, result.Shares[1].ActualUnitCost.Equal(decimal.NewFromFloat(13.6842)), "got %s", result.Shares[1].ActualUnitCost)
	})

	t.Run("Last share follows input order, not magnitude", func(t *testing.T) {
		items := []ApportionLineItem{
			lineItem("big", 100, 90),
			lineItem("small", 1, 1),
		}

		result, err := ApportionCost(decimal.NewFromInt(100), items)
		require.NoError(t, err)

		rounded := decimal.NewFromInt(100).Mul(items[0].Value()).Div(result.TotalValue).Round(2)
		assert.True(t, result.Shares[0].AllocatedAmount.Equal(rounded))
		assert.True(t, result.Shares[1].AllocatedAmount.Equal(decimal.NewFromInt(100).Sub(rounded)))
	})

	t.Run("Single item takes the whole cost", func(t *testing.T) {
		result, err := ApportionCost(decimal.NewFromFloat(42.37), []ApportionLineItem{lineItem("only", 7, 3)})
		require.NoError(t, err)

		require.Len(t, result.Shares, 1)
		assert.True(t, result.Shares[0].AllocatedAmount.Equal(decimal.NewFromFloat(42.37)))
	})

	t.Run("Zero additional cost yields zero shares", func(t *testing.T) {
		items := []ApportionLineItem{lineItem("a", 10, 5), lineItem("b", 10, 5)}

		result, err := ApportionCost(decimal.Zero, items)
		require.NoError(t, err)

		for _, s := range result.Shares {
			assert.True(t, s.AllocatedAmount.IsZero())
			assert.True(t, s.ActualUnitCost.Equal(decimal.NewFromInt(5)))
		}
	})

	t.Run("All-zero-valued items are rejected", func(t *testing.T) {
		items := []ApportionLineItem{lineItem("a", 10, 0), lineItem("b", 5, 0)}

		_, err := ApportionCost(decimal.NewFromInt(150), items)
		assert.ErrorIs(t, err, shared.ErrApportionmentUndefined)
	})

	t.Run("Empty item set is rejected", func(t *testing.T) {
		_, err := ApportionCost(decimal.NewFromInt(150), nil)
		assert.ErrorIs(t, err, shared.ErrApportionmentUndefined)
	})

	t.Run("Negative additional cost is rejected", func(t *testing.T) {
		_, err := ApportionCost(decimal.NewFromInt(-1), []ApportionLineItem{lineItem("a", 1, 1)})
		assert.Error(t, err)
	})

	t.Run("Non-positive item quantity is rejected", func(t *testing.T) {
		_, err := ApportionCost(decimal.NewFromInt(10), []ApportionLineItem{lineItem("a", 0, 5)})
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})
}
