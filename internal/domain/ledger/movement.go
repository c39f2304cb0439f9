package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Direction represents the direction of a stock movement
type Direction string

const (
	// DirectionInbound represents stock entering inventory
	DirectionInbound Direction = "INBOUND"
	// DirectionOutbound represents stock leaving inventory
	DirectionOutbound Direction = "OUTBOUND"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// Movement is an immutable ledger entry recording one quantity/cost change.
// Once created, movements are never updated or deleted - corrections are made
// with new movements. For any batch, the sum of signed quantity deltas of its
// movements equals its remaining quantity: creation appends an inbound delta
// of +original, and the outbound deltas alone account for original minus
// remaining.
type Movement struct {
	shared.BaseEntity
	BatchID     *uuid.UUID      `gorm:"type:uuid;index"` // nil for pure level adjustments
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	WarehouseID *uuid.UUID      `gorm:"type:uuid;index"`
	Direction   Direction       `gorm:"type:varchar(10);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // signed: positive inbound, negative outbound
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // cost per unit at time of movement
	TotalCost   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // signed cost delta
	SourceKind  SourceKind      `gorm:"type:varchar(20);not null;index:idx_movement_source,priority:1"`
	SourceRef   string          `gorm:"type:varchar(50);not null;index:idx_movement_source,priority:2"`
	Reason      string          `gorm:"type:varchar(255)"`
	OccurredAt  time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "movements"
}

// NewMovement creates a new movement entry. Quantity is the unsigned magnitude;
// the sign is derived from the direction.
func NewMovement(
	batchID *uuid.UUID,
	productID uuid.UUID,
	warehouseID *uuid.UUID,
	direction Direction,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	sourceKind SourceKind,
	sourceRef string,
) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Invalid movement direction")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.ErrInvalidQuantity
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	if !sourceKind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_KIND", "Invalid source kind")
	}
	if sourceRef == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_REF", "Source reference cannot be empty")
	}

	signedQty := quantity
	if direction == DirectionOutbound {
		signedQty = quantity.Neg()
	}

	return &Movement{
		BaseEntity:  shared.NewBaseEntity(),
		BatchID:     batchID,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Direction:   direction,
		Quantity:    signedQty,
		UnitCost:    unitCost,
		TotalCost:   signedQty.Mul(unitCost),
		SourceKind:  sourceKind,
		SourceRef:   sourceRef,
		OccurredAt:  time.Now(),
	}, nil
}

// NewInboundMovement creates a movement for stock entering a batch
func NewInboundMovement(batch *Batch, quantity decimal.Decimal, sourceKind SourceKind, sourceRef string) (*Movement, error) {
	batchID := batch.ID
	return NewMovement(&batchID, batch.ProductID, batch.WarehouseID, DirectionInbound, quantity, batch.UnitCost, sourceKind, sourceRef)
}

// NewOutboundMovement creates a movement for stock consumed from a batch
func NewOutboundMovement(batch *Batch, quantity decimal.Decimal, sourceKind SourceKind, sourceRef string) (*Movement, error) {
	batchID := batch.ID
	return NewMovement(&batchID, batch.ProductID, batch.WarehouseID, DirectionOutbound, quantity, batch.UnitCost, sourceKind, sourceRef)
}

// NewLevelAdjustmentMovement creates a movement not tied to a specific batch,
// used for manual level adjustments.
func NewLevelAdjustmentMovement(
	productID uuid.UUID,
	warehouseID *uuid.UUID,
	direction Direction,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	sourceRef string,
	reason string,
) (*Movement, error) {
	m, err := NewMovement(nil, productID, warehouseID, direction, quantity, unitCost, SourceKindAdjustment, sourceRef)
	if err != nil {
		return nil, err
	}
	m.Reason = reason
	return m, nil
}

// WithReason sets the reason for the movement
func (m *Movement) WithReason(reason string) *Movement {
	m.Reason = reason
	return m
}

// IsInbound returns true if this movement added stock
func (m *Movement) IsInbound() bool {
	return m.Direction == DirectionInbound
}

// IsOutbound returns true if this movement removed stock
func (m *Movement) IsOutbound() bool {
	return m.Direction == DirectionOutbound
}

// AbsoluteQuantity returns the unsigned magnitude of the quantity delta
func (m *Movement) AbsoluteQuantity() decimal.Decimal {
	return m.Quantity.Abs()
}
