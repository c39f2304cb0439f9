package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stockledger/backend/internal/domain/ledger"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM DB backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func batchColumns() []string {
	return []string{
		"id", "batch_number", "product_id",
		"original_quantity", "remaining_quantity", "unit_cost",
		"source_kind", "source_ref", "received_at", "sequence", "version",
	}
}

func TestGormBatchRepository_FindByID(t *testing.T) {
	t.Run("finds existing batch", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBatchRepository(gormDB)

		batchID := uuid.New()
		productID := uuid.New()

		rows := sqlmock.NewRows(batchColumns()).AddRow(
			batchID, "B-000042", productID,
			decimal.NewFromInt(100), decimal.NewFromInt(60), decimal.NewFromFloat(15.75),
			"PURCHASE", "PO-2001", time.Now(), int64(7), 1,
		)

		mock.ExpectQuery(`SELECT \* FROM "batches" WHERE id = \$1`).
			WithArgs(batchID, 1).
			WillReturnRows(rows)

		batch, err := repo.FindByID(context.Background(), batchID)

		require.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, batchID, batch.ID)
		assert.Equal(t, "B-000042", batch.BatchNumber)
		assert.True(t, batch.RemainingQuantity.Equal(decimal.NewFromInt(60)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing batch", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBatchRepository(gormDB)

		batchID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "batches" WHERE id = \$1`).
			WithArgs(batchID, 1).
			WillReturnRows(sqlmock.NewRows(batchColumns()))

		batch, err := repo.FindByID(context.Background(), batchID)

		assert.NoError(t, err)
		assert.Nil(t, batch)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_FindAvailableByProduct(t *testing.T) {
	t.Run("orders by received_at then sequence", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBatchRepository(gormDB)

		productID := uuid.New()
		received := time.Now().Add(-24 * time.Hour)

		rows := sqlmock.NewRows(batchColumns()).
			AddRow(uuid.New(), "B-000001", productID,
				decimal.NewFromInt(100), decimal.NewFromInt(100), decimal.NewFromFloat(15.75),
				"PURCHASE", "PO-2001", received, int64(1), 1).
			AddRow(uuid.New(), "B-000002", productID,
				decimal.NewFromInt(50), decimal.NewFromInt(50), decimal.NewFromFloat(16.00),
				"PURCHASE", "PO-2002", received, int64(2), 1)

		mock.ExpectQuery(`SELECT \* FROM "batches" WHERE product_id = \$1 AND remaining_quantity > 0 ORDER BY received_at ASC, sequence ASC`).
			WithArgs(productID).
			WillReturnRows(rows)

		batches, err := repo.FindAvailableByProduct(context.Background(), productID)

		require.NoError(t, err)
		require.Len(t, batches, 2)
		assert.Equal(t, "B-000001", batches[0].BatchNumber)
		assert.Equal(t, "B-000002", batches[1].BatchNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_SaveWithLock(t *testing.T) {
	t.Run("updates when version matches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBatchRepository(gormDB)

		batch, err := ledger.NewBatch("B-000042", uuid.New(), nil,
			decimal.NewFromInt(100), decimal.NewFromFloat(15.75),
			ledger.SourceKindPurchase, "PO-2001", time.Now())
		require.NoError(t, err)
		require.NoError(t, batch.Consume(decimal.NewFromInt(40)))

		mock.ExpectExec(`UPDATE "batches" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithLock(context.Background(), batch)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports conflict when no rows match", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBatchRepository(gormDB)

		batch, err := ledger.NewBatch("B-000042", uuid.New(), nil,
			decimal.NewFromInt(100), decimal.NewFromFloat(15.75),
			ledger.SourceKindPurchase, "PO-2001", time.Now())
		require.NoError(t, err)
		require.NoError(t, batch.Consume(decimal.NewFromInt(40)))

		mock.ExpectExec(`UPDATE "batches" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), batch)

		assert.ErrorIs(t, err, shared.ErrConcurrentModification)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_SumRemainingByProduct(t *testing.T) {
	t.Run("sums open batches", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBatchRepository(gormDB)

		productID := uuid.New()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(remaining_quantity\), 0\) AS total FROM "batches"`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("150"))

		total, err := repo.SumRemainingByProduct(context.Background(), productID)

		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(150)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_ExistsByBatchNumber(t *testing.T) {
	t.Run("reports taken number", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBatchRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "batches" WHERE batch_number = \$1`).
			WithArgs("B-000042").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByBatchNumber(context.Background(), "B-000042")

		require.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
