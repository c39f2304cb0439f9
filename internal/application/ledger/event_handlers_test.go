package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/stockledger/backend/internal/domain/ledger"
)

func newObservedAuditHandler() (*AuditLogHandler, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return NewAuditLogHandler(zap.New(core)), logs
}

func auditBatch(t *testing.T) *ledger.Batch {
	t.Helper()
	batch, err := ledger.NewBatch(
		"B-000042",
		uuid.New(),
		nil,
		decimal.NewFromInt(100),
		decimal.NewFromFloat(2.5),
		ledger.SourceKindPurchase,
		"PO-1001",
		time.Now(),
	)
	require.NoError(t, err)
	return batch
}

func TestAuditLogHandler_EventTypes(t *testing.T) {
	handler, _ := newObservedAuditHandler()

	types := handler.EventTypes()

	assert.ElementsMatch(t, []string{
		ledger.EventTypeBatchCreated,
		ledger.EventTypeBatchConsumed,
		ledger.EventTypeLevelAdjusted,
		ledger.EventTypeStockReserved,
		ledger.EventTypeStockReleased,
		ledger.EventTypeProductionCompleted,
	}, types)
}

func TestAuditLogHandler_BatchEvents(t *testing.T) {
	t.Run("batch created entry carries batch fields", func(t *testing.T) {
		handler, logs := newObservedAuditHandler()
		batch := auditBatch(t)

		err := handler.Handle(context.Background(), ledger.NewBatchCreatedEvent(batch))
		require.NoError(t, err)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.EventTypeBatchCreated, entries[0].Message)

		fields := entries[0].ContextMap()
		assert.Equal(t, "B-000042", fields["batch_number"])
		assert.Equal(t, "100", fields["quantity"])
		assert.Equal(t, "2.5", fields["unit_cost"])
		assert.Equal(t, "PURCHASE", fields["source_kind"])
		assert.Equal(t, "PO-1001", fields["source_ref"])
		assert.Equal(t, batch.ID.String(), fields["aggregate_id"])
	})

	t.Run("batch consumed entry records remaining and exhaustion", func(t *testing.T) {
		handler, logs := newObservedAuditHandler()
		batch := auditBatch(t)
		require.NoError(t, batch.Consume(decimal.NewFromInt(100)))

		err := handler.Handle(context.Background(),
			ledger.NewBatchConsumedEvent(batch, decimal.NewFromInt(100)))
		require.NoError(t, err)

		entries := logs.All()
		require.Len(t, entries, 1)
		fields := entries[0].ContextMap()
		assert.Equal(t, "0", fields["remaining_quantity"])
		assert.Equal(t, true, fields["exhausted"])
	})
}

func TestAuditLogHandler_LevelAndProductionEvents(t *testing.T) {
	t.Run("level adjusted entry", func(t *testing.T) {
		handler, logs := newObservedAuditHandler()
		level, err := ledger.NewInventoryLevel(uuid.New(), uuid.Nil)
		require.NoError(t, err)
		cost := decimal.NewFromFloat(3.0)
		require.NoError(t, level.Increase(decimal.NewFromInt(10), &cost))

		err = handler.Handle(context.Background(),
			ledger.NewLevelAdjustedEvent(level, ledger.DirectionInbound, decimal.NewFromInt(10), "ADJ-7", "recount"))
		require.NoError(t, err)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.EventTypeLevelAdjusted, entries[0].Message)
		fields := entries[0].ContextMap()
		assert.Equal(t, "INBOUND", fields["direction"])
		assert.Equal(t, "10", fields["new_quantity"])
		assert.Equal(t, "ADJ-7", fields["source_ref"])
	})

	t.Run("production completed entry", func(t *testing.T) {
		handler, logs := newObservedAuditHandler()
		output, err := ledger.NewBatch(
			"B-000043",
			uuid.New(),
			nil,
			decimal.NewFromInt(10),
			decimal.NewFromFloat(2.5),
			ledger.SourceKindProduction,
			"MO-2001",
			time.Now(),
		)
		require.NoError(t, err)

		err = handler.Handle(context.Background(),
			ledger.NewProductionCompletedEvent(output, decimal.NewFromInt(20), decimal.NewFromInt(5)))
		require.NoError(t, err)

		entries := logs.All()
		require.Len(t, entries, 1)
		assert.Equal(t, ledger.EventTypeProductionCompleted, entries[0].Message)
		fields := entries[0].ContextMap()
		assert.Equal(t, "20", fields["material_cost"])
		assert.Equal(t, "5", fields["processing_fee"])
		assert.Equal(t, "MO-2001", fields["source_ref"])
	})
}
