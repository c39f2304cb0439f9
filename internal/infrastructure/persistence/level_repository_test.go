package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelColumns() []string {
	return []string{
		"id", "product_id", "warehouse_id",
		"quantity_on_hand", "reserved_quantity", "unit_cost", "version",
	}
}

func TestGormLevelRepository_FindByProductAndWarehouse(t *testing.T) {
	t.Run("finds existing level", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		productID := uuid.New()
		warehouseID := uuid.New()

		rows := sqlmock.NewRows(levelColumns()).AddRow(
			uuid.New(), productID, warehouseID,
			decimal.NewFromInt(150), decimal.NewFromInt(0), decimal.NewFromFloat(16.00), 3,
		)

		mock.ExpectQuery(`SELECT \* FROM "inventory_levels" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(rows)

		level, err := repo.FindByProductAndWarehouse(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		require.NotNil(t, level)
		assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(150)))
		assert.True(t, level.UnitCost.Equal(decimal.NewFromFloat(16.00)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing level", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_levels" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows(levelColumns()))

		level, err := repo.FindByProductAndWarehouse(context.Background(), productID, warehouseID)

		assert.NoError(t, err)
		assert.Nil(t, level)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLevelRepository_GetOrCreate(t *testing.T) {
	t.Run("returns existing level without insert", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		productID := uuid.New()
		warehouseID := uuid.New()

		rows := sqlmock.NewRows(levelColumns()).AddRow(
			uuid.New(), productID, warehouseID,
			decimal.NewFromInt(10), decimal.Zero, decimal.NewFromInt(5), 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "inventory_levels" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(rows)

		level, err := repo.GetOrCreate(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		require.NotNil(t, level)
		assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(10)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates level when absent", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_levels" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows(levelColumns()))
		mock.ExpectExec(`INSERT INTO "inventory_levels"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		level, err := repo.GetOrCreate(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		require.NotNil(t, level)
		assert.Equal(t, productID, level.ProductID)
		assert.True(t, level.QuantityOnHand.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refetches after losing insert race", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		productID := uuid.New()
		warehouseID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "inventory_levels" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows(levelColumns()))
		mock.ExpectExec(`INSERT INTO "inventory_levels"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "inventory_levels" WHERE product_id = \$1 AND warehouse_id = \$2`).
			WithArgs(productID, warehouseID, 1).
			WillReturnRows(sqlmock.NewRows(levelColumns()).AddRow(
				uuid.New(), productID, warehouseID,
				decimal.NewFromInt(25), decimal.Zero, decimal.NewFromInt(8), 1,
			))

		level, err := repo.GetOrCreate(context.Background(), productID, warehouseID)

		require.NoError(t, err)
		require.NotNil(t, level)
		assert.True(t, level.QuantityOnHand.Equal(decimal.NewFromInt(25)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLevelRepository_SaveWithLock(t *testing.T) {
	t.Run("reports conflict when version moved on", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		level, err := ledger.NewInventoryLevel(uuid.New(), uuid.New())
		require.NoError(t, err)
		cost := decimal.NewFromFloat(15.75)
		require.NoError(t, level.Increase(decimal.NewFromInt(100), &cost))

		mock.ExpectExec(`UPDATE "inventory_levels" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), level)

		assert.ErrorIs(t, err, shared.ErrConcurrentModification)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLevelRepository_Delete(t *testing.T) {
	t.Run("deletes existing level", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		levelID := uuid.New()
		mock.ExpectExec(`DELETE FROM "inventory_levels" WHERE id = \$1`).
			WithArgs(levelID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), levelID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing level", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormLevelRepository(gormDB)

		levelID := uuid.New()
		mock.ExpectExec(`DELETE FROM "inventory_levels" WHERE id = \$1`).
			WithArgs(levelID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), levelID), shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
