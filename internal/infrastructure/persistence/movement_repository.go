package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMovementRepository implements MovementRepository using GORM. The
// movements table is append-only: this repository exposes no update or delete.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// FindByID finds a movement by its ID
func (r *GormMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Movement, error) {
	var movement ledger.Movement
	if err := r.db.WithContext(ctx).First(&movement, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &movement, nil
}

// FindByBatch finds movements for a batch in chronological order
func (r *GormMovementRepository) FindByBatch(ctx context.Context, batchID uuid.UUID, filter shared.Filter) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.Movement{}).
			Where("batch_id = ?", batchID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByProduct finds movements for a product in chronological order
func (r *GormMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.Movement{}).
			Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindBySource finds movements recorded for a given source document
func (r *GormMovementRepository) FindBySource(ctx context.Context, sourceKind ledger.SourceKind, sourceRef string) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	if err := r.db.WithContext(ctx).
		Where("source_kind = ? AND source_ref = ?", sourceKind, sourceRef).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByPeriod finds movements within a time window
func (r *GormMovementRepository) FindByPeriod(ctx context.Context, productID uuid.UUID, from, to time.Time, filter shared.Filter) ([]ledger.Movement, error) {
	var movements []ledger.Movement
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.Movement{}).
			Where("product_id = ? AND occurred_at >= ? AND occurred_at < ?", productID, from, to),
		filter,
	)

	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Append persists new movements. It never updates existing rows.
func (r *GormMovementRepository) Append(ctx context.Context, movements ...*ledger.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(movements).Error
}

// ExistsBySource reports whether any movement was recorded for the source document
func (r *GormMovementRepository) ExistsBySource(ctx context.Context, sourceKind ledger.SourceKind, sourceRef string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Where("source_kind = ? AND source_ref = ?", sourceKind, sourceRef).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumQuantityByBatch sums the signed quantity deltas of a batch's movements
func (r *GormMovementRepository) SumQuantityByBatch(ctx context.Context, batchID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("batch_id = ?", batchID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// CountByProduct counts movements for a product
func (r *GormMovementRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Movement{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies pagination and ordering from a shared.Filter
func (r *GormMovementRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, MovementSortFields, "occurred_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("occurred_at ASC")
	}

	return query
}

// Ensure GormMovementRepository implements MovementRepository
var _ ledger.MovementRepository = (*GormMovementRepository)(nil)
