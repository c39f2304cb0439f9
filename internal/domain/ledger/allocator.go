package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// AllocationEntry records how much is drawn from one batch and at what cost
type AllocationEntry struct {
	BatchID     uuid.UUID       // ID of the batch to draw from
	BatchNumber string          // Batch number for display
	Quantity    decimal.Decimal // Quantity to take from this batch
	UnitCost    decimal.Decimal // Unit cost of this batch
	TotalCost   decimal.Decimal // Quantity * UnitCost
}

// AllocationResult is the outcome of a FIFO allocation computation. It is
// ephemeral: nothing is committed until the result is applied through the
// store in a separate, explicit step.
type AllocationResult struct {
	ProductID         uuid.UUID
	RequiredQuantity  decimal.Decimal
	AllocatedQuantity decimal.Decimal
	Shortfall         decimal.Decimal // max(0, required - allocated)
	TotalCost         decimal.Decimal // cost of the allocated quantity
	Entries           []AllocationEntry
}

// FullyAllocated returns true when the required quantity was covered in full
func (r *AllocationResult) FullyAllocated() bool {
	return r.Shortfall.IsZero()
}

// WeightedAverageCost returns the blended per-unit cost of the allocation
func (r *AllocationResult) WeightedAverageCost() decimal.Decimal {
	if r.AllocatedQuantity.IsZero() {
		return decimal.Zero
	}
	return r.TotalCost.Div(r.AllocatedQuantity).Round(unitCostPrecision)
}

// AllocateFIFO walks the given batches oldest-first and decides which to draw
// from to cover the required quantity. It is a pure computation: the input
// batches are not mutated and the same snapshot always yields the same result.
// Batches are ordered by inbound timestamp, then by insert sequence for ties.
func AllocateFIFO(productID uuid.UUID, required decimal.Decimal, batches []Batch) (*AllocationResult, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if required.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}

	ordered := make([]Batch, 0, len(batches))
	for _, b := range batches {
		if b.ProductID == productID && b.HasStock() {
			ordered = append(ordered, b)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].ReceivedAt.Equal(ordered[j].ReceivedAt) {
			return ordered[i].ReceivedAt.Before(ordered[j].ReceivedAt)
		}
		return ordered[i].Sequence < ordered[j].Sequence
	})

	result := &AllocationResult{
		ProductID:        productID,
		RequiredQuantity: required,
		Entries:          make([]AllocationEntry, 0, len(ordered)),
	}

	remaining := required
	for _, batch := range ordered {
		if remaining.IsZero() {
			break
		}

		taken := decimal.Min(remaining, batch.RemainingQuantity)
		cost := taken.Mul(batch.UnitCost)

		result.Entries = append(result.Entries, AllocationEntry{
			BatchID:     batch.ID,
			BatchNumber: batch.BatchNumber,
			Quantity:    taken,
			UnitCost:    batch.UnitCost,
			TotalCost:   cost,
		})

		result.AllocatedQuantity = result.AllocatedQuantity.Add(taken)
		result.TotalCost = result.TotalCost.Add(cost)
		remaining = remaining.Sub(taken)
	}

	result.Shortfall = remaining

	return result, nil
}
