package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// unitCostPrecision is the number of decimal places kept for weighted-average
// unit costs.
const unitCostPrecision = 4

// InventoryLevel is the aggregated projection of stock for one product at one
// location. It carries a weighted-average unit cost derived from batch activity
// and manual adjustments. A level whose quantity reaches exactly zero after a
// decrease is deleted, not kept as a zero-valued row.
type InventoryLevel struct {
	shared.BaseAggregateRoot
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_level_product_warehouse,priority:1"`
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_level_product_warehouse,priority:2"`
	QuantityOnHand   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // weighted average
}

// TableName returns the table name for GORM
func (InventoryLevel) TableName() string {
	return "inventory_levels"
}

// NewInventoryLevel creates an empty level for a product-location pair
func NewInventoryLevel(productID, warehouseID uuid.UUID) (*InventoryLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &InventoryLevel{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		WarehouseID:       warehouseID,
		QuantityOnHand:    decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		UnitCost:          decimal.Zero,
	}, nil
}

// AvailableQuantity returns quantity on hand minus reservations
func (l *InventoryLevel) AvailableQuantity() decimal.Decimal {
	return l.QuantityOnHand.Sub(l.ReservedQuantity)
}

// TotalValue returns quantity on hand times the weighted-average unit cost.
// It is recomputed, never stored independently.
func (l *InventoryLevel) TotalValue() decimal.Decimal {
	return l.QuantityOnHand.Mul(l.UnitCost)
}

// IsEmpty returns true when the level holds no stock and no reservations
func (l *InventoryLevel) IsEmpty() bool {
	return l.QuantityOnHand.IsZero() && l.ReservedQuantity.IsZero()
}

// Increase adds quantity at the given unit cost and recomputes the
// weighted-average cost:
//
//	new_avg = (q*avg + dq*dc) / (q + dq)
//
// An explicit unit cost is required; brand-new value entering the system has
// no cost to infer.
func (l *InventoryLevel) Increase(quantity decimal.Decimal, unitCost *decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if unitCost == nil {
		return shared.ErrMissingUnitCost
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	if l.QuantityOnHand.IsZero() {
		l.UnitCost = *unitCost
	} else {
		totalCost := l.QuantityOnHand.Mul(l.UnitCost).Add(quantity.Mul(*unitCost))
		l.UnitCost = totalCost.Div(l.QuantityOnHand.Add(quantity)).Round(unitCostPrecision)
	}
	l.QuantityOnHand = l.QuantityOnHand.Add(quantity)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// Decrease removes quantity at the existing average cost. The average cost is
// unchanged by a decrease: quantity and total value shrink proportionally.
func (l *InventoryLevel) Decrease(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(l.AvailableQuantity()) {
		return shared.ErrInsufficientStock
	}

	l.QuantityOnHand = l.QuantityOnHand.Sub(quantity)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// Reserve sets aside quantity for a pending order, reducing availability
// without moving stock.
func (l *InventoryLevel) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(l.AvailableQuantity()) {
		return shared.ErrInsufficientStock
	}

	l.ReservedQuantity = l.ReservedQuantity.Add(quantity)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// Release returns previously reserved quantity to availability
func (l *InventoryLevel) Release(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(l.ReservedQuantity) {
		return shared.NewDomainError("INVALID_RELEASE", "Cannot release more than is reserved")
	}

	l.ReservedQuantity = l.ReservedQuantity.Sub(quantity)
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	return nil
}

// CanFulfill returns true if the available quantity covers the requested quantity
func (l *InventoryLevel) CanFulfill(quantity decimal.Decimal) bool {
	return l.AvailableQuantity().GreaterThanOrEqual(quantity)
}
