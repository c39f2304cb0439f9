package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/shared"
)

func availableBatch(productID uuid.UUID, batchNumber string, quantity, unitCost float64, receivedAt time.Time, sequence int64) Batch {
	return Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchNumber:       batchNumber,
		ProductID:         productID,
		OriginalQuantity:  decimal.NewFromFloat(quantity),
		RemainingQuantity: decimal.NewFromFloat(quantity),
		UnitCost:          decimal.NewFromFloat(unitCost),
		SourceKind:        SourceKindPurchase,
		SourceRef:         "PO-" + batchNumber,
		ReceivedAt:        receivedAt,
		Sequence:          sequence,
	}
}

func TestAllocateFIFO(t *testing.T) {
	productID := uuid.New()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

	t.Run("Allocates oldest batches first", func(t *testing.T) {
		batches := []Batch{
			availableBatch(productID, "B-002", 100, 16.00, base.Add(24*time.Hour), 2),
			availableBatch(productID, "B-001", 80, 15.75, base, 1),
		}

		result, err := AllocateFIFO(productID, decimal.NewFromInt(100), batches)
		require.NoError(t, err)

		require.Len(t, result.Entries, 2)
		assert.Equal(t, "B-001", result.Entries[0].BatchNumber)
		assert.True(t, result.Entries[0].Quantity.Equal(decimal.NewFromInt(80)))
		assert.Equal(t, "B-002", result.Entries[1].BatchNumber)
		assert.True(t, result.Entries[1].Quantity.Equal(decimal.NewFromInt(20)))

		// 80*15.75 + 20*16.00 = 1260 + 320 = 1580
		assert.True(t, result.TotalCost.Equal(decimal.NewFromInt(1580)), "got %s", result.TotalCost)
		assert.True(t, result.FullyAllocated())
		assert.True(t, result.Shortfall.IsZero())
	})

	t.Run("Breaks timestamp ties by insert sequence", func(t *testing.T) {
		batches := []Batch{
			availableBatch(productID, "B-004", 50, 12, base, 4),
			availableBatch(productID, "B-003", 50, 11, base, 3),
		}

		result, err := AllocateFIFO(productID, decimal.NewFromInt(60), batches)
		require.NoError(t, err)

		require.Len(t, result.Entries, 2)
		assert.Equal(t, "B-003", result.Entries[0].BatchNumber)
		assert.Equal(t, "B-004", result.Entries[1].BatchNumber)
	})

	t.Run("Reports shortfall when stock is insufficient", func(t *testing.T) {
		batches := []Batch{
			availableBatch(productID, "B-005", 150, 10, base, 5),
		}

		result, err := AllocateFIFO(productID, decimal.NewFromInt(200), batches)
		require.NoError(t, err)

		assert.True(t, result.AllocatedQuantity.Equal(decimal.NewFromInt(150)))
		assert.True(t, result.Shortfall.Equal(decimal.NewFromInt(50)))
		assert.False(t, result.FullyAllocated())
	})

	t.Run("Skips exhausted batches and other products", func(t *testing.T) {
		exhausted := availableBatch(productID, "B-006", 100, 10, base, 6)
		exhausted.RemainingQuantity = decimal.Zero
		otherProduct := availableBatch(uuid.New(), "B-007", 100, 10, base, 7)

		batches := []Batch{
			exhausted,
			otherProduct,
			availableBatch(productID, "B-008", 30, 10, base.Add(time.Hour), 8),
		}

		result, err := AllocateFIFO(productID, decimal.NewFromInt(30), batches)
		require.NoError(t, err)

		require.Len(t, result.Entries, 1)
		assert.Equal(t, "B-008", result.Entries[0].BatchNumber)
	})

	t.Run("Stops once the requirement is met", func(t *testing.T) {
		batches := []Batch{
			availableBatch(productID, "B-009", 100, 10, base, 9),
			availableBatch(productID, "B-010", 100, 11, base.Add(time.Hour), 10),
		}

		result, err := AllocateFIFO(productID, decimal.NewFromInt(100), batches)
		require.NoError(t, err)

		require.Len(t, result.Entries, 1)
		assert.Equal(t, "B-009", result.Entries[0].BatchNumber)
	})

	t.Run("Is deterministic and does not mutate inputs", func(t *testing.T) {
		batches := []Batch{
			availableBatch(productID, "B-011", 60, 9.50, base, 11),
			availableBatch(productID, "B-012", 60, 9.75, base.Add(time.Minute), 12),
		}

		first, err := AllocateFIFO(productID, decimal.NewFromInt(90), batches)
		require.NoError(t, err)
		second, err := AllocateFIFO(productID, decimal.NewFromInt(90), batches)
		require.NoError(t, err)

		assert.True(t, batches[0].RemainingQuantity.Equal(decimal.NewFromInt(60)))
		assert.True(t, batches[1].RemainingQuantity.Equal(decimal.NewFromInt(60)))

		require.Len(t, second.Entries, len(first.Entries))
		for i := range first.Entries {
			assert.Equal(t, first.Entries[i].BatchID, second.Entries[i].BatchID)
			assert.True(t, first.Entries[i].Quantity.Equal(second.Entries[i].Quantity))
		}
		assert.True(t, first.TotalCost.Equal(second.TotalCost))
	})

	t.Run("Allocated cost equals sum of entry costs", func(t *testing.T) {
		batches := []Batch{
			availableBatch(productID, "B-013", 33, 7.77, base, 13),
			availableBatch(productID, "B-014", 44, 8.88, base.Add(time.Hour), 14),
			availableBatch(productID, "B-015", 55, 9.99, base.Add(2*time.Hour), 15),
		}

		result, err := AllocateFIFO(productID, decimal.NewFromInt(100), batches)
		require.NoError(t, err)

		sum := decimal.Zero
		qty := decimal.Zero
		for _, e := range result.Entries {
			sum = sum.Add(e.TotalCost)
			qty = qty.Add(e.Quantity)
		}
		assert.True(t, result.TotalCost.Equal(sum))
		assert.True(t, result.AllocatedQuantity.Equal(qty))
	})

	t.Run("Rejects non-positive requirement", func(t *testing.T) {
		_, err := AllocateFIFO(productID, decimal.Zero, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)

		_, err = AllocateFIFO(productID, decimal.NewFromInt(-10), nil)
		assert.ErrorIs(t, err, shared.ErrInvalidQuantity)
	})

	t.Run("Rejects nil product", func(t *testing.T) {
		_, err := AllocateFIFO(uuid.Nil, decimal.NewFromInt(10), nil)
		assert.Error(t, err)
	})

	t.Run("Empty batch set yields full shortfall", func(t *testing.T) {
		result, err := AllocateFIFO(productID, decimal.NewFromInt(25), nil)
		require.NoError(t, err)

		assert.True(t, result.AllocatedQuantity.IsZero())
		assert.True(t, result.Shortfall.Equal(decimal.NewFromInt(25)))
		assert.Empty(t, result.Entries)
	})
}

func TestAllocationResultWeightedAverageCost(t *testing.T) {
	t.Run("Blends entry costs", func(t *testing.T) {
		result := &AllocationResult{
			AllocatedQuantity: decimal.NewFromInt(100),
			TotalCost:         decimal.NewFromInt(1580),
		}
		assert.True(t, result.WeightedAverageCost().Equal(decimal.NewFromFloat(15.8)))
	})

	t.Run("Zero allocation yields zero cost", func(t *testing.T) {
		result := &AllocationResult{}
		assert.True(t, result.WeightedAverageCost().IsZero())
	})
}
