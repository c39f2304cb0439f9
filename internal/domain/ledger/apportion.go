package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// moneyPrecision is the number of decimal places kept for apportioned money
// amounts.
const moneyPrecision = 2

// ApportionLineItem is one participant in a cost apportionment. Its intrinsic
// value (quantity * unit price) determines its proportional share of the
// shared cost.
type ApportionLineItem struct {
	Key       string // caller-supplied identifier, passed through
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Value returns the intrinsic value of the line item
func (i ApportionLineItem) Value() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// ApportionShare is the portion of the shared cost assigned to one line item,
// together with the item's resulting actual costs.
type ApportionShare struct {
	Key             string
	Value           decimal.Decimal // intrinsic value the share was weighted by
	AllocatedAmount decimal.Decimal // share of the additional cost
	ActualTotalCost decimal.Decimal // value + allocated amount
	ActualUnitCost  decimal.Decimal // actual total cost / quantity
}

// CostApportionment is the outcome of distributing one shared additional cost
// across a set of line items. The allocated amounts always sum to the
// additional cost exactly.
type CostApportionment struct {
	AdditionalCost decimal.Decimal
	TotalValue     decimal.Decimal
	Shares         []ApportionShare
}

// ApportionCost splits a shared additional cost (freight, duties) across line
// items in proportion to their intrinsic values. Every share except the last is
// rounded to money precision; the last item receives the cost minus the sum of
// the others, so the shares always add up exactly. "Last" follows the caller's
// input order, which is never re-sorted.
//
// A zero total value makes the proportional split undefined and is rejected
// rather than silently resolved; the caller must decide on an explicit policy.
func ApportionCost(additionalCost decimal.Decimal, items []ApportionLineItem) (*CostApportionment, error) {
	if len(items) == 0 {
		return nil, shared.ErrApportionmentUndefined
	}
	if additionalCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Additional cost cannot be negative")
	}

	totalValue := decimal.Zero
	for _, item := range items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.ErrInvalidQuantity
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_COST", "Unit price cannot be negative")
		}
		totalValue = totalValue.Add(item.Value())
	}
	if totalValue.IsZero() {
		return nil, shared.ErrApportionmentUndefined
	}

	result := &CostApportionment{
		AdditionalCost: additionalCost,
		TotalValue:     totalValue,
		Shares:         make([]ApportionShare, len(items)),
	}

	assigned := decimal.Zero
	for i, item := range items {
		value := item.Value()

		var allocated decimal.Decimal
		if i == len(items)-1 {
			// Last item absorbs the rounding remainder
			allocated = additionalCost.Sub(assigned)
		} else {
			allocated = additionalCost.Mul(value).Div(totalValue).Round(moneyPrecision)
			assigned = assigned.Add(allocated)
		}

		actualTotal := value.Add(allocated)
		result.Shares[i] = ApportionShare{
			Key:             item.Key,
			Value:           value,
			AllocatedAmount: allocated,
			ActualTotalCost: actualTotal,
			ActualUnitCost:  actualTotal.Div(item.Quantity).Round(unitCostPrecision),
		}
	}

	return result, nil
}
