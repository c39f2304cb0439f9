package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeBatch          = "Batch"
	AggregateTypeInventoryLevel = "InventoryLevel"
)

// Event type constants
const (
	EventTypeBatchCreated        = "BatchCreated"
	EventTypeBatchConsumed       = "BatchConsumed"
	EventTypeBatchExhausted      = "BatchExhausted"
	EventTypeLevelAdjusted       = "LevelAdjusted"
	EventTypeStockReserved       = "StockReserved"
	EventTypeStockReleased       = "StockReleased"
	EventTypeProductionCompleted = "ProductionCompleted"
)

// BatchCreatedEvent is raised when a new batch enters the ledger
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	SourceKind  string          `json:"source_kind"`
	SourceRef   string          `json:"source_ref"`
}

// NewBatchCreatedEvent creates a new BatchCreatedEvent
func NewBatchCreatedEvent(batch *Batch) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCreated, AggregateTypeBatch, batch.ID),
		BatchID:         batch.ID,
		BatchNumber:     batch.BatchNumber,
		ProductID:       batch.ProductID,
		Quantity:        batch.OriginalQuantity,
		UnitCost:        batch.UnitCost,
		SourceKind:      batch.SourceKind.String(),
		SourceRef:       batch.SourceRef,
	}
}

// EventType returns the event type name
func (e *BatchCreatedEvent) EventType() string {
	return EventTypeBatchCreated
}

// BatchConsumedEvent is raised when quantity is drawn from a batch
type BatchConsumedEvent struct {
	shared.BaseDomainEvent
	BatchID           uuid.UUID       `json:"batch_id"`
	BatchNumber       string          `json:"batch_number"`
	ProductID         uuid.UUID       `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Exhausted         bool            `json:"exhausted"`
}

// NewBatchConsumedEvent creates a new BatchConsumedEvent
func NewBatchConsumedEvent(batch *Batch, quantity decimal.Decimal) *BatchConsumedEvent {
	return &BatchConsumedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeBatchConsumed, AggregateTypeBatch, batch.ID),
		BatchID:           batch.ID,
		BatchNumber:       batch.BatchNumber,
		ProductID:         batch.ProductID,
		Quantity:          quantity,
		UnitCost:          batch.UnitCost,
		RemainingQuantity: batch.RemainingQuantity,
		Exhausted:         batch.IsExhausted(),
	}
}

// EventType returns the event type name
func (e *BatchConsumedEvent) EventType() string {
	return EventTypeBatchConsumed
}

// LevelAdjustedEvent is raised when an inventory level is changed by a manual
// adjustment rather than batch activity
type LevelAdjustedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
	NewUnitCost decimal.Decimal `json:"new_unit_cost"`
	SourceRef   string          `json:"source_ref"`
	Reason      string          `json:"reason,omitempty"`
}

// NewLevelAdjustedEvent creates a new LevelAdjustedEvent
func NewLevelAdjustedEvent(level *InventoryLevel, direction Direction, quantity decimal.Decimal, sourceRef, reason string) *LevelAdjustedEvent {
	return &LevelAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLevelAdjusted, AggregateTypeInventoryLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		Direction:       direction.String(),
		Quantity:        quantity,
		NewQuantity:     level.QuantityOnHand,
		NewUnitCost:     level.UnitCost,
		SourceRef:       sourceRef,
		Reason:          reason,
	}
}

// EventType returns the event type name
func (e *LevelAdjustedEvent) EventType() string {
	return EventTypeLevelAdjusted
}

// StockReservedEvent is raised when quantity is reserved on a level
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Available   decimal.Decimal `json:"available"`
	SourceRef   string          `json:"source_ref"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(level *InventoryLevel, quantity decimal.Decimal, sourceRef string) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeInventoryLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		Quantity:        quantity,
		Available:       level.AvailableQuantity(),
		SourceRef:       sourceRef,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// StockReleasedEvent is raised when a reservation is released back to availability
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Available   decimal.Decimal `json:"available"`
	SourceRef   string          `json:"source_ref"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(level *InventoryLevel, quantity decimal.Decimal, sourceRef string) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeInventoryLevel, level.ID),
		ProductID:       level.ProductID,
		WarehouseID:     level.WarehouseID,
		Quantity:        quantity,
		Available:       level.AvailableQuantity(),
		SourceRef:       sourceRef,
	}
}

// EventType returns the event type name
func (e *StockReleasedEvent) EventType() string {
	return EventTypeStockReleased
}

// ProductionCompletedEvent is raised when a production order is costed and its
// output batch created
type ProductionCompletedEvent struct {
	shared.BaseDomainEvent
	OutputBatchID   uuid.UUID       `json:"output_batch_id"`
	OutputProductID uuid.UUID       `json:"output_product_id"`
	OutputQuantity  decimal.Decimal `json:"output_quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	MaterialCost    decimal.Decimal `json:"material_cost"`
	ProcessingFee   decimal.Decimal `json:"processing_fee"`
	SourceRef       string          `json:"source_ref"`
}

// NewProductionCompletedEvent creates a new ProductionCompletedEvent
func NewProductionCompletedEvent(outputBatch *Batch, materialCost, processingFee decimal.Decimal) *ProductionCompletedEvent {
	return &ProductionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductionCompleted, AggregateTypeBatch, outputBatch.ID),
		OutputBatchID:   outputBatch.ID,
		OutputProductID: outputBatch.ProductID,
		OutputQuantity:  outputBatch.OriginalQuantity,
		UnitCost:        outputBatch.UnitCost,
		MaterialCost:    materialCost,
		ProcessingFee:   processingFee,
		SourceRef:       outputBatch.SourceRef,
	}
}

// EventType returns the event type name
func (e *ProductionCompletedEvent) EventType() string {
	return EventTypeProductionCompleted
}
