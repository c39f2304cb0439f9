package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLevelRepository implements LevelRepository using GORM
type GormLevelRepository struct {
	db *gorm.DB
}

// NewGormLevelRepository creates a new GormLevelRepository
func NewGormLevelRepository(db *gorm.DB) *GormLevelRepository {
	return &GormLevelRepository{db: db}
}

// FindByID finds an inventory level by its ID
func (r *GormLevelRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.InventoryLevel, error) {
	var level ledger.InventoryLevel
	if err := r.db.WithContext(ctx).First(&level, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// FindByProductAndWarehouse finds the level for a product-location pair
func (r *GormLevelRepository) FindByProductAndWarehouse(ctx context.Context, productID, warehouseID uuid.UUID) (*ledger.InventoryLevel, error) {
	var level ledger.InventoryLevel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&level).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &level, nil
}

// FindByProduct finds all levels for a product across locations
func (r *GormLevelRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]ledger.InventoryLevel, error) {
	var levels []ledger.InventoryLevel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("warehouse_id ASC").
		Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// FindByWarehouse finds all levels at a location
func (r *GormLevelRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID, filter shared.Filter) ([]ledger.InventoryLevel, error) {
	var levels []ledger.InventoryLevel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&ledger.InventoryLevel{}).
			Where("warehouse_id = ?", warehouseID),
		filter,
	)

	if err := query.Find(&levels).Error; err != nil {
		return nil, err
	}
	return levels, nil
}

// GetOrCreate gets the existing level or creates an empty one. Creation uses
// ON CONFLICT DO NOTHING so two racing transactions converge on one row.
func (r *GormLevelRepository) GetOrCreate(ctx context.Context, productID, warehouseID uuid.UUID) (*ledger.InventoryLevel, error) {
	level, err := r.FindByProductAndWarehouse(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if level != nil {
		return level, nil
	}

	level, err = ledger.NewInventoryLevel(productID, warehouseID)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
			DoNothing: true,
		}).
		Create(level)
	if result.Error != nil {
		return nil, result.Error
	}

	// Lost the race: another transaction created the row first.
	if result.RowsAffected == 0 {
		existing, err := r.FindByProductAndWarehouse(ctx, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, shared.ErrConcurrentModification
		}
		return existing, nil
	}

	return level, nil
}

// Save creates or updates a level
func (r *GormLevelRepository) Save(ctx context.Context, level *ledger.InventoryLevel) error {
	return r.db.WithContext(ctx).Save(level).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormLevelRepository) SaveWithLock(ctx context.Context, level *ledger.InventoryLevel) error {
	result := r.db.WithContext(ctx).
		Model(level).
		Where("id = ? AND version = ?", level.ID, level.Version-1).
		Updates(map[string]interface{}{
			"quantity_on_hand":  level.QuantityOnHand,
			"reserved_quantity": level.ReservedQuantity,
			"unit_cost":         level.UnitCost,
			"version":           level.Version,
			"updated_at":        level.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification
	}
	return nil
}

// Delete removes a level
func (r *GormLevelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ledger.InventoryLevel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SumValueByWarehouse sums total stock value at a location
func (r *GormLevelRepository) SumValueByWarehouse(ctx context.Context, warehouseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.InventoryLevel{}).
		Select("COALESCE(SUM(quantity_on_hand * unit_cost), 0) AS total").
		Where("warehouse_id = ?", warehouseID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies pagination and ordering from a shared.Filter
func (r *GormLevelRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, LevelSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// Ensure GormLevelRepository implements LevelRepository
var _ ledger.LevelRepository = (*GormLevelRepository)(nil)
