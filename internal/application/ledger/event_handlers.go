package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/domain/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
)

// AuditLogHandler writes a structured audit line for every ledger event. It is
// the default subscriber on the in-process bus, so batch and level activity is
// traceable in the log stream even when no other consumer is registered.
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// EventTypes returns the event types this handler is interested in
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeBatchCreated,
		ledger.EventTypeBatchConsumed,
		ledger.EventTypeLevelAdjusted,
		ledger.EventTypeStockReserved,
		ledger.EventTypeStockReleased,
		ledger.EventTypeProductionCompleted,
	}
}

// Handle writes one audit entry per event
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}

	switch e := event.(type) {
	case *ledger.BatchCreatedEvent:
		fields = append(fields,
			zap.String("batch_number", e.BatchNumber),
			zap.String("product_id", e.ProductID.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("unit_cost", e.UnitCost.String()),
			zap.String("source_kind", e.SourceKind),
			zap.String("source_ref", e.SourceRef),
		)
	case *ledger.BatchConsumedEvent:
		fields = append(fields,
			zap.String("batch_number", e.BatchNumber),
			zap.String("quantity", e.Quantity.String()),
			zap.String("remaining_quantity", e.RemainingQuantity.String()),
			zap.Bool("exhausted", e.Exhausted),
		)
	case *ledger.LevelAdjustedEvent:
		fields = append(fields,
			zap.String("product_id", e.ProductID.String()),
			zap.String("direction", e.Direction),
			zap.String("quantity", e.Quantity.String()),
			zap.String("new_quantity", e.NewQuantity.String()),
			zap.String("source_ref", e.SourceRef),
		)
	case *ledger.StockReservedEvent:
		fields = append(fields,
			zap.String("product_id", e.ProductID.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("available", e.Available.String()),
			zap.String("source_ref", e.SourceRef),
		)
	case *ledger.StockReleasedEvent:
		fields = append(fields,
			zap.String("product_id", e.ProductID.String()),
			zap.String("quantity", e.Quantity.String()),
			zap.String("available", e.Available.String()),
			zap.String("source_ref", e.SourceRef),
		)
	case *ledger.ProductionCompletedEvent:
		fields = append(fields,
			zap.String("output_batch_id", e.OutputBatchID.String()),
			zap.String("output_quantity", e.OutputQuantity.String()),
			zap.String("unit_cost", e.UnitCost.String()),
			zap.String("material_cost", e.MaterialCost.String()),
			zap.String("processing_fee", e.ProcessingFee.String()),
			zap.String("source_ref", e.SourceRef),
		)
	}

	h.logger.Info(event.EventType(), fields...)
	return nil
}

// Ensure AuditLogHandler implements EventHandler
var _ shared.EventHandler = (*AuditLogHandler)(nil)
