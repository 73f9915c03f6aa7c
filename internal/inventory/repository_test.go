package inventory

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_AllocateFIFO(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("ConsumesOldestBatchesFirst", func(t *testing.T) {
		// B1 entered before B2; allocating 7 drains B1 (5) then takes 2 of B2.
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, remaining_quantity\s+FROM inventory_batches`).
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "remaining_quantity"}).
				AddRow(10, 5).
				AddRow(11, 5))
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(10), 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(11), 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.AllocateFIFO(ctx, 1, 7)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExactlyDrainsStock", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, remaining_quantity\s+FROM inventory_batches`).
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "remaining_quantity"}).
				AddRow(10, 4))
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(10), 4).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.AllocateFIFO(ctx, 1, 4)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsufficientStockCommitsPartialDeduction", func(t *testing.T) {
		// 6 units across two batches cannot cover 10; both batches are
		// still drained and committed, the call reports failure.
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, remaining_quantity\s+FROM inventory_batches`).
			WithArgs(uint(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "remaining_quantity"}).
				AddRow(20, 4).
				AddRow(21, 2))
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(20), 4).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(21), 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.AllocateFIFO(ctx, 2, 10)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NoBatches", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, remaining_quantity\s+FROM inventory_batches`).
			WithArgs(uint(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "remaining_quantity"}))
		mock.ExpectRollback()

		err := repo.AllocateFIFO(ctx, 3, 1)
		assert.ErrorIs(t, err, ErrNoBatches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, remaining_quantity\s+FROM inventory_batches`).
			WillReturnError(errors.New("db error"))
		mock.ExpectRollback()

		err := repo.AllocateFIFO(ctx, 1, 1)
		assert.Error(t, err)
	})
}

func TestRepository_RestoreLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("CreditsMostRecentBatch", func(t *testing.T) {
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(1), 3).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.RestoreLatest(ctx, 1, 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("InsertsRestockBatchWhenNoneExists", func(t *testing.T) {
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(1), 3).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO inventory_batches`).
			WithArgs(uint(1), 3).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.RestoreLatest(ctx, 1, 3)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ImportBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()
	in := ImportInput{Quantity: 10, CostPrice: 500, SalePrice: 900, Supplier: "ACME"}

	t.Run("IncrementsExistingSupplierBatch", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(1), "ACME", 10, int64(500), int64(900)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO import_records`).
			WithArgs(sqlmock.AnyArg(), uint(1), 10, int64(500), int64(900), "ACME").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.ImportBatch(ctx, 1, in)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreatesBatchForNewSupplier", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE inventory_batches`).
			WithArgs(uint(1), "ACME", 10, int64(500), int64(900)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO inventory_batches`).
			WithArgs(uint(1), 10, int64(500), int64(900), "ACME").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`INSERT INTO import_records`).
			WithArgs(sqlmock.AnyArg(), uint(1), 10, int64(500), int64(900), "ACME").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := repo.ImportBatch(ctx, 1, in)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_TotalRemaining(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("SumsBatches", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(remaining_quantity\), 0\)`).
			WithArgs(uint(1)).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8))

		total, err := repo.TotalRemaining(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, 8, total)
	})

	t.Run("ZeroWhenNoBatches", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(remaining_quantity\), 0\)`).
			WithArgs(uint(9)).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

		total, err := repo.TotalRemaining(context.Background(), 9)
		assert.NoError(t, err)
		assert.Equal(t, 0, total)
	})
}
