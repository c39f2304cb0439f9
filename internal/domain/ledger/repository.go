package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stockledger/backend/internal/domain/shared"
)

// BatchRepository defines the interface for batch persistence
type BatchRepository interface {
	// FindByID finds a batch by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByBatchNumber finds a batch by its human-readable batch number
	FindByBatchNumber(ctx context.Context, batchNumber string) (*Batch, error)

	// FindByIDs finds multiple batches by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Batch, error)

	// FindAvailableByProduct finds batches with remaining quantity for a product,
	// ordered by inbound timestamp ascending, then by insert sequence (FIFO order)
	FindAvailableByProduct(ctx context.Context, productID uuid.UUID) ([]Batch, error)

	// FindByProduct finds all batches for a product, exhausted included
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Batch, error)

	// FindBySource finds batches created by a given source document
	FindBySource(ctx context.Context, sourceKind SourceKind, sourceRef string) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *Batch) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, batch *Batch) error

	// CountByProduct counts batches for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)

	// SumRemainingByProduct sums remaining quantity across a product's open batches
	SumRemainingByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)

	// ExistsByBatchNumber checks if a batch number is already taken
	ExistsByBatchNumber(ctx context.Context, batchNumber string) (bool, error)
}

// MovementRepository defines the interface for the append-only movement ledger.
// Movements are created once and never updated or deleted.
type MovementRepository interface {
	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByBatch finds movements for a batch in chronological order
	FindByBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindByProduct finds movements for a product in chronological order
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindBySource finds movements recorded for a given source document
	FindBySource(ctx context.Context, sourceKind SourceKind, sourceRef string) ([]Movement, error)

	// FindByPeriod finds movements within a time window
	FindByPeriod(ctx context.Context, productID uuid.UUID, from, to time.Time, filter shared.Filter) ([]Movement, error)

	// Append persists new movements. It never updates existing rows.
	Append(ctx context.Context, movements ...*Movement) error

	// ExistsBySource reports whether any movement was recorded for the source
	// document. This is the authoritative duplicate-commit check.
	ExistsBySource(ctx context.Context, sourceKind SourceKind, sourceRef string) (bool, error)

	// SumQuantityByBatch sums the signed quantity deltas of a batch's movements
	SumQuantityByBatch(ctx context.Context, batchID uuid.UUID) (decimal.Decimal, error)

	// CountByProduct counts movements for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

// LevelRepository defines the interface for inventory level persistence
type LevelRepository interface {
	// FindByID finds an inventory level by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryLevel, error)

	// FindByProductAndWarehouse finds the level for a product-location pair
	FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryLevel, error)

	// FindByProduct finds all levels for a product across locations
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]InventoryLevel, error)

	// FindByWarehouse finds all levels at a location
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]InventoryLevel, error)

	// GetOrCreate gets the existing level or creates an empty one
	GetOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*InventoryLevel, error)

	// Save creates or updates a level
	Save(ctx context.Context, level *InventoryLevel) error

	// SaveWithLock saves with optimistic locking (checks version)
	SaveWithLock(ctx context.Context, level *InventoryLevel) error

	// Delete removes a level. Levels are deleted when their quantity reaches
	// exactly zero after a decrease.
	Delete(ctx context.Context, id uuid.UUID) error

	// SumValueByWarehouse sums total stock value at a location
	SumValueByWarehouse(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error)
}

// SequenceRepository reserves document sequence numbers atomically. Counting
// existing rows and incrementing is not safe under concurrency; reservation
// must be a single atomic store operation.
type SequenceRepository interface {
	// Next reserves and returns the next value of a named sequence
	Next(ctx context.Context, name string) (int64, error)
}
