package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// ProductionCost is the costing outcome of a completed production order. The
// variance between actual and planned unit cost is carried to the caller, not
// discarded.
type ProductionCost struct {
	MaterialCost       decimal.Decimal // sum of consumed material allocation costs
	ProcessingFee      decimal.Decimal
	TotalCost          decimal.Decimal // material cost + processing fee
	OutputQuantity     decimal.Decimal
	UnitCost           decimal.Decimal // total cost / output quantity
	PlannedUnitCost    decimal.Decimal
	CostVariance       decimal.Decimal // actual unit cost - planned unit cost
	HasPlannedUnitCost bool
}

// CalculateProductionCost derives the unit cost of a finished-good batch from
// the committed material allocations plus a processing fee, spread over the
// quantity actually produced. Actual output may differ from planned output;
// the cost follows actual.
func CalculateProductionCost(
	materials []AllocationResult,
	processingFee decimal.Decimal,
	outputQuantity decimal.Decimal,
	plannedUnitCost *decimal.Decimal,
) (*ProductionCost, error) {
	if outputQuantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if processingFee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Processing fee cannot be negative")
	}

	materialCost := decimal.Zero
	for _, m := range materials {
		materialCost = materialCost.Add(m.TotalCost)
	}

	totalCost := materialCost.Add(processingFee)
	unitCost := totalCost.Div(outputQuantity).Round(unitCostPrecision)

	cost := &ProductionCost{
		MaterialCost:   materialCost,
		ProcessingFee:  processingFee,
		TotalCost:      totalCost,
		OutputQuantity: outputQuantity,
		UnitCost:       unitCost,
	}

	if plannedUnitCost != nil {
		cost.PlannedUnitCost = *plannedUnitCost
		cost.CostVariance = unitCost.Sub(*plannedUnitCost)
		cost.HasPlannedUnitCost = true
	}

	return cost, nil
}
