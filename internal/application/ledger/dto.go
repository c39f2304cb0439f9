package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/ledger"
)

// CreateBatchRequest represents a request to create a new batch
type CreateBatchRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID *uuid.UUID      `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	SourceKind  string          `json:"source_kind" binding:"required,oneof=PURCHASE PRODUCTION ADJUSTMENT"`
	SourceRef   string          `json:"source_ref" binding:"required,max=50"`
	BatchNumber string          `json:"batch_number" binding:"omitempty,max=40"` // generated when empty
	ReceivedAt  *time.Time      `json:"received_at"`
}

// ConsumeBatchRequest represents a request to consume quantity from one batch
type ConsumeBatchRequest struct {
	Quantity   decimal.Decimal `json:"quantity" binding:"required"`
	SourceKind string          `json:"source_kind" binding:"required,oneof=PURCHASE PRODUCTION ADJUSTMENT"`
	SourceRef  string          `json:"source_ref" binding:"required,max=50"`
	Reason     string          `json:"reason" binding:"omitempty,max=255"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID                uuid.UUID       `json:"id"`
	BatchNumber       string          `json:"batch_number"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       *uuid.UUID      `json:"warehouse_id,omitempty"`
	OriginalQuantity  decimal.Decimal `json:"original_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	SourceKind        string          `json:"source_kind"`
	SourceRef         string          `json:"source_ref"`
	ReceivedAt        time.Time       `json:"received_at"`
	Exhausted         bool            `json:"exhausted"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToBatchResponse converts a batch to its response representation
func ToBatchResponse(b *ledger.Batch) BatchResponse {
	return BatchResponse{
		ID:                b.ID,
		BatchNumber:       b.BatchNumber,
		ProductID:         b.ProductID,
		WarehouseID:       b.WarehouseID,
		OriginalQuantity:  b.OriginalQuantity,
		RemainingQuantity: b.RemainingQuantity,
		UnitCost:          b.UnitCost,
		TotalCost:         b.TotalCost(),
		SourceKind:        b.SourceKind.String(),
		SourceRef:         b.SourceRef,
		ReceivedAt:        b.ReceivedAt,
		Exhausted:         b.IsExhausted(),
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
		Version:           b.Version,
	}
}

// ToBatchResponses converts a slice of batches
func ToBatchResponses(batches []ledger.Batch) []BatchResponse {
	responses := make([]BatchResponse, len(batches))
	for i := range batches {
		responses[i] = ToBatchResponse(&batches[i])
	}
	return responses
}

// MovementResponse represents a ledger movement in API responses
type MovementResponse struct {
	ID          uuid.UUID       `json:"id"`
	BatchID     *uuid.UUID      `json:"batch_id,omitempty"`
	ProductID   uuid.UUID       `json:"product_id"`
	WarehouseID *uuid.UUID      `json:"warehouse_id,omitempty"`
	Direction   string          `json:"direction"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	SourceKind  string          `json:"source_kind"`
	SourceRef   string          `json:"source_ref"`
	Reason      string          `json:"reason,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ToMovementResponse converts a movement to its response representation
func ToMovementResponse(m *ledger.Movement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		BatchID:     m.BatchID,
		ProductID:   m.ProductID,
		WarehouseID: m.WarehouseID,
		Direction:   m.Direction.String(),
		Quantity:    m.Quantity,
		UnitCost:    m.UnitCost,
		TotalCost:   m.TotalCost,
		SourceKind:  m.SourceKind.String(),
		SourceRef:   m.SourceRef,
		Reason:      m.Reason,
		OccurredAt:  m.OccurredAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(movements []ledger.Movement) []MovementResponse {
	responses := make([]MovementResponse, len(movements))
	for i := range movements {
		responses[i] = ToMovementResponse(&movements[i])
	}
	return responses
}

// MovementListFilter represents filter options for movement history queries
type MovementListFilter struct {
	BatchID   *uuid.UUID `form:"batch_id"`
	From      *time.Time `form:"from"`
	To        *time.Time `form:"to"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortOrder string     `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// AllocateRequest represents a request to compute a FIFO allocation
type AllocateRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// AllocationEntryResponse represents one batch draw within an allocation
type AllocationEntryResponse struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	BatchNumber string          `json:"batch_number"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// AllocationResponse represents the outcome of a FIFO allocation computation
type AllocationResponse struct {
	ProductID         uuid.UUID                 `json:"product_id"`
	RequiredQuantity  decimal.Decimal           `json:"required_quantity"`
	AllocatedQuantity decimal.Decimal           `json:"allocated_quantity"`
	Shortfall         decimal.Decimal           `json:"shortfall"`
	TotalCost         decimal.Decimal           `json:"total_cost"`
	FullyAllocated    bool                      `json:"fully_allocated"`
	Entries           []AllocationEntryResponse `json:"entries"`
}

// ToAllocationResponse converts an allocation result to its response representation
func ToAllocationResponse(r *ledger.AllocationResult) AllocationResponse {
	entries := make([]AllocationEntryResponse, len(r.Entries))
	for i, e := range r.Entries {
		entries[i] = AllocationEntryResponse{
			BatchID:     e.BatchID,
			BatchNumber: e.BatchNumber,
			Quantity:    e.Quantity,
			UnitCost:    e.UnitCost,
			TotalCost:   e.TotalCost,
		}
	}
	return AllocationResponse{
		ProductID:         r.ProductID,
		RequiredQuantity:  r.RequiredQuantity,
		AllocatedQuantity: r.AllocatedQuantity,
		Shortfall:         r.Shortfall,
		TotalCost:         r.TotalCost,
		FullyAllocated:    r.FullyAllocated(),
		Entries:           entries,
	}
}

// ApplyAllocationEntry is one batch draw to commit
type ApplyAllocationEntry struct {
	BatchID  uuid.UUID       `json:"batch_id" binding:"required"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// ApplyAllocationRequest represents a request to commit a previously computed
// allocation
type ApplyAllocationRequest struct {
	ProductID  uuid.UUID              `json:"product_id" binding:"required"`
	Entries    []ApplyAllocationEntry `json:"entries" binding:"required,min=1,dive"`
	SourceKind string                 `json:"source_kind" binding:"required,oneof=PURCHASE PRODUCTION ADJUSTMENT"`
	SourceRef  string                 `json:"source_ref" binding:"required,max=50"`
	Reason     string                 `json:"reason" binding:"omitempty,max=255"`
}

// ApportionLineItemRequest is one line participating in a cost apportionment
type ApportionLineItemRequest struct {
	Key       string          `json:"key" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// ApportionRequest represents a request to distribute a shared cost
type ApportionRequest struct {
	AdditionalCost decimal.Decimal            `json:"additional_cost"`
	LineItems      []ApportionLineItemRequest `json:"line_items" binding:"required,min=1,dive"`
}

// ApportionShareResponse is one line's share of an apportioned cost
type ApportionShareResponse struct {
	Key             string          `json:"key"`
	Value           decimal.Decimal `json:"value"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	ActualTotalCost decimal.Decimal `json:"actual_total_cost"`
	ActualUnitCost  decimal.Decimal `json:"actual_unit_cost"`
}

// ApportionResponse represents a completed cost apportionment
type ApportionResponse struct {
	AdditionalCost decimal.Decimal          `json:"additional_cost"`
	TotalValue     decimal.Decimal          `json:"total_value"`
	Shares         []ApportionShareResponse `json:"shares"`
}

// ToApportionResponse converts a cost apportionment to its response representation
func ToApportionResponse(a *ledger.CostApportionment) ApportionResponse {
	shares := make([]ApportionShareResponse, len(a.Shares))
	for i, s := range a.Shares {
		shares[i] = ApportionShareResponse{
			Key:             s.Key,
			Value:           s.Value,
			AllocatedAmount: s.AllocatedAmount,
			ActualTotalCost: s.ActualTotalCost,
			ActualUnitCost:  s.ActualUnitCost,
		}
	}
	return ApportionResponse{
		AdditionalCost: a.AdditionalCost,
		TotalValue:     a.TotalValue,
		Shares:         shares,
	}
}

// ReceivePurchaseLine is one purchase-order line arriving into stock
type ReceivePurchaseLine struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BatchNumber string          `json:"batch_number" binding:"omitempty,max=40"`
}

// ReceivePurchaseRequest represents a purchase arrival: one batch per line,
// with the shared additional cost (freight, duties) apportioned across lines.
type ReceivePurchaseRequest struct {
	SourceRef      string                `json:"source_ref" binding:"required,max=50"`
	WarehouseID    *uuid.UUID            `json:"warehouse_id"`
	AdditionalCost decimal.Decimal       `json:"additional_cost"`
	Lines          []ReceivePurchaseLine `json:"lines" binding:"required,min=1,dive"`
	ReceivedAt     *time.Time            `json:"received_at"`
}

// ReceivePurchaseResponse represents the batches created by a purchase arrival
type ReceivePurchaseResponse struct {
	SourceRef string          `json:"source_ref"`
	Batches   []BatchResponse `json:"batches"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// AdjustLevelRequest represents a manual level adjustment
type AdjustLevelRequest struct {
	ProductID   uuid.UUID        `json:"product_id" binding:"required"`
	WarehouseID *uuid.UUID       `json:"warehouse_id"`
	DeltaQty    decimal.Decimal  `json:"delta_qty" binding:"required"` // signed: positive increase, negative decrease
	UnitCost    *decimal.Decimal `json:"unit_cost"`                    // required for increases
	SourceRef   string           `json:"source_ref" binding:"required,max=50"`
	Reason      string           `json:"reason" binding:"required,min=1,max=255"`
}

// LevelResponse represents an inventory level in API responses
type LevelResponse struct {
	ID                uuid.UUID       `json:"id"`
	ProductID         uuid.UUID       `json:"product_id"`
	WarehouseID       uuid.UUID       `json:"warehouse_id"`
	QuantityOnHand    decimal.Decimal `json:"quantity_on_hand"`
	ReservedQuantity  decimal.Decimal `json:"reserved_quantity"`
	AvailableQuantity decimal.Decimal `json:"available_quantity"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	TotalValue        decimal.Decimal `json:"total_value"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
	Deleted           bool            `json:"deleted,omitempty"` // true when a decrease emptied the level
}

// ToLevelResponse converts a level to its response representation
func ToLevelResponse(l *ledger.InventoryLevel) LevelResponse {
	return LevelResponse{
		ID:                l.ID,
		ProductID:         l.ProductID,
		WarehouseID:       l.WarehouseID,
		QuantityOnHand:    l.QuantityOnHand,
		ReservedQuantity:  l.ReservedQuantity,
		AvailableQuantity: l.AvailableQuantity(),
		UnitCost:          l.UnitCost,
		TotalValue:        l.TotalValue(),
		UpdatedAt:         l.UpdatedAt,
		Version:           l.Version,
	}
}

// ToLevelResponses converts a slice of levels
func ToLevelResponses(levels []ledger.InventoryLevel) []LevelResponse {
	responses := make([]LevelResponse, len(levels))
	for i := range levels {
		responses[i] = ToLevelResponse(&levels[i])
	}
	return responses
}

// ReserveStockRequest represents a request to reserve stock on a level
type ReserveStockRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID *uuid.UUID      `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	SourceRef   string          `json:"source_ref" binding:"required,max=50"`
}

// ReleaseStockRequest represents a request to release a reservation
type ReleaseStockRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	WarehouseID *uuid.UUID      `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	SourceRef   string          `json:"source_ref" binding:"required,max=50"`
}

// MaterialRequirement is one raw material consumed by a production order
type MaterialRequirement struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// CompleteProductionRequest represents a production-completion commit: consume
// materials FIFO, cost the output, create the finished-good batch.
type CompleteProductionRequest struct {
	OutputProductID   uuid.UUID             `json:"output_product_id" binding:"required"`
	WarehouseID       *uuid.UUID            `json:"warehouse_id"`
	ActualOutputQty   decimal.Decimal       `json:"actual_output_qty" binding:"required"`
	ProcessingFee     decimal.Decimal       `json:"processing_fee"`
	Materials         []MaterialRequirement `json:"materials" binding:"required,min=1,dive"`
	SourceRef         string                `json:"source_ref" binding:"required,max=50"`
	OutputBatchNumber string                `json:"output_batch_number" binding:"omitempty,max=40"`
}

// MaterialConsumptionResponse reports how one material requirement was filled
type MaterialConsumptionResponse struct {
	ProductID uuid.UUID          `json:"product_id"`
	Required  decimal.Decimal    `json:"required"`
	TotalCost decimal.Decimal    `json:"total_cost"`
	Movements []MovementResponse `json:"movements"`
}

// ProductionResponse represents a completed and costed production order
type ProductionResponse struct {
	OutputBatch     BatchResponse                 `json:"output_batch"`
	MaterialCost    decimal.Decimal               `json:"material_cost"`
	ProcessingFee   decimal.Decimal               `json:"processing_fee"`
	TotalCost       decimal.Decimal               `json:"total_cost"`
	UnitCost        decimal.Decimal               `json:"unit_cost"`
	CostVariance    *decimal.Decimal              `json:"cost_variance,omitempty"` // actual minus planned, when a standard cost exists
	PlannedUnitCost *decimal.Decimal              `json:"planned_unit_cost,omitempty"`
	Materials       []MaterialConsumptionResponse `json:"materials"`
}
