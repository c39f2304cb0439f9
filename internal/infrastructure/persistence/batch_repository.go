package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBatchRepository implements BatchRepository using GORM.
// Lookups return (nil, nil) when the batch does not exist; the application
// layer decides which absence is an error.
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Batch, error) {
	var batch ledger.Batch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindByBatchNumber finds a batch by its human-readable batch number
func (r *GormBatchRepository) FindByBatchNumber(ctx context.Context, batchNumber string) (*ledger.Batch, error) {
	var batch ledger.Batch
	if err := r.db.WithContext(ctx).
		Where("batch_number = ?", batchNumber).
		First(&batch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &batch, nil
}

// FindByIDs finds multiple batches by their IDs
func (r *GormBatchRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ledger.Batch, error) {
	if len(ids) == 0 {
		return []ledger.Batch{}, nil
	}

	var batches []ledger.Batch
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindAvailableByProduct finds batches with remaining quantity for a product
// in FIFO order: inbound timestamp ascending, insert sequence breaking ties.
func (r *GormBatchRepository) FindAvailableByProduct(ctx context.Context, productID uuid.UUID) ([]ledger.Batch, error) {
	var batches []ledger.Batch
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND remaining_quantity > 0", productID).
		Order("received_at ASC, sequence ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindByProduct finds all batches for a product, exhausted included
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]ledger.Batch, error) {
	var batches []ledger.Batch
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.Batch{}).
			Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// FindBySource finds batches created by a given source document
func (r *GormBatchRepository) FindBySource(ctx context.Context, sourceKind ledger.SourceKind, sourceRef string) ([]ledger.Batch, error) {
	var batches []ledger.Batch
	if err := r.db.WithContext(ctx).
		Where("source_kind = ? AND source_ref = ?", sourceKind, sourceRef).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *ledger.Batch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormBatchRepository) SaveWithLock(ctx context.Context, batch *ledger.Batch) error {
	result := r.db.WithContext(ctx).
		Model(batch).
		Where("id = ? AND version = ?", batch.ID, batch.Version-1).
		Updates(map[string]interface{}{
			"remaining_quantity": batch.RemainingQuantity,
			"version":            batch.Version,
			"updated_at":         batch.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// CountByProduct counts batches for a product
func (r *GormBatchRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Batch{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumRemainingByProduct sums remaining quantity across a product's open batches
func (r *GormBatchRepository) SumRemainingByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.Batch{}).
		Select("COALESCE(SUM(remaining_quantity), 0) AS total").
		Where("product_id = ? AND remaining_quantity > 0", productID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ExistsByBatchNumber checks if a batch number is already taken
func (r *GormBatchRepository) ExistsByBatchNumber(ctx context.Context, batchNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Batch{}).
		Where("batch_number = ?", batchNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies pagination and ordering from a shared.Filter
func (r *GormBatchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, BatchSortFields, "received_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("received_at ASC, sequence ASC")
	}

	return query
}

// Ensure GormBatchRepository implements BatchRepository
var _ ledger.BatchRepository = (*GormBatchRepository)(nil)
