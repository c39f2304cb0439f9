package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// SourceKind identifies the kind of document that produced a stock change
type SourceKind string

const (
	// SourceKindPurchase marks stock received from a purchase order
	SourceKindPurchase SourceKind = "PURCHASE"
	// SourceKindProduction marks stock produced by a production order
	SourceKindProduction SourceKind = "PRODUCTION"
	// SourceKindAdjustment marks stock created or removed by a manual adjustment
	SourceKindAdjustment SourceKind = "ADJUSTMENT"
)

// String returns the string representation of SourceKind
func (k SourceKind) String() string {
	return string(k)
}

// IsValid returns true if the source kind is valid
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindPurchase, SourceKindProduction, SourceKindAdjustment:
		return true
	}
	return false
}

// Batch represents a lot of a single product received or produced at one point
// in time, carrying its own acquisition cost. Batches are never deleted: a batch
// whose remaining quantity reaches zero is exhausted but stays on record for the
// audit trail.
type Batch struct {
	shared.BaseAggregateRoot
	BatchNumber       string          `gorm:"type:varchar(40);not null;uniqueIndex"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index:idx_batch_product_received,priority:1"`
	WarehouseID       *uuid.UUID      `gorm:"type:uuid;index"` // optional storage location
	OriginalQuantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourceKind        SourceKind      `gorm:"type:varchar(20);not null"`
	SourceRef         string          `gorm:"type:varchar(50);not null;index"`
	ReceivedAt        time.Time       `gorm:"type:timestamptz;not null;index:idx_batch_product_received,priority:2"`
	// Sequence breaks FIFO ties between batches received at the same instant.
	// Assigned by the database on insert.
	Sequence int64 `gorm:"autoIncrement;uniqueIndex"`
}

// TableName returns the table name for GORM
func (Batch) TableName() string {
	return "batches"
}

// NewBatch creates a new batch. Quantity must be positive and unit cost
// non-negative.
func NewBatch(
	batchNumber string,
	productID uuid.UUID,
	warehouseID *uuid.UUID,
	quantity decimal.Decimal,
	unitCost decimal.Decimal,
	sourceKind SourceKind,
	sourceRef string,
	receivedAt time.Time,
) (*Batch, error) {
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
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
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}

	batch := &Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BatchNumber:       batchNumber,
		ProductID:         productID,
		WarehouseID:       warehouseID,
		OriginalQuantity:  quantity,
		RemainingQuantity: quantity,
		UnitCost:          unitCost,
		SourceKind:        sourceKind,
		SourceRef:         sourceRef,
		ReceivedAt:        receivedAt,
	}

	batch.AddDomainEvent(NewBatchCreatedEvent(batch))

	return batch, nil
}

// Consume decrements the remaining quantity. The caller must record the
// corresponding outbound movement in the same unit of work.
func (b *Batch) Consume(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.ErrInvalidQuantity
	}
	if quantity.GreaterThan(b.RemainingQuantity) {
		return shared.ErrInsufficientStock
	}

	b.RemainingQuantity = b.RemainingQuantity.Sub(quantity)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()

	b.AddDomainEvent(NewBatchConsumedEvent(b, quantity))

	return nil
}

// ConsumedQuantity returns how much of the batch has been drawn down
func (b *Batch) ConsumedQuantity() decimal.Decimal {
	return b.OriginalQuantity.Sub(b.RemainingQuantity)
}

// TotalCost returns the value of the remaining quantity
func (b *Batch) TotalCost() decimal.Decimal {
	return b.RemainingQuantity.Mul(b.UnitCost)
}

// IsExhausted returns true when the batch has no remaining quantity.
// There is no transition out of the exhausted state.
func (b *Batch) IsExhausted() bool {
	return b.RemainingQuantity.IsZero()
}

// HasStock returns true if the batch has remaining quantity
func (b *Batch) HasStock() bool {
	return b.RemainingQuantity.GreaterThan(decimal.Zero)
}

// CanFulfill returns true if the remaining quantity covers the requested quantity
func (b *Batch) CanFulfill(quantity decimal.Decimal) bool {
	return b.RemainingQuantity.GreaterThanOrEqual(quantity)
}
