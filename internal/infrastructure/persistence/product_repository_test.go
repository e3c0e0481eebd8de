package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_FindByIDForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	p := seedProduct(t, db, tenantID, "abc", 10, 2)

	t.Run("finds own product", func(t *testing.T) {
		found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "ABC", found.Code)
		assert.Equal(t, 10, found.Stock)
		assert.True(t, found.UnitPrice.Equal(dec("10")))
		assert.True(t, found.IsActive)
	})

	t.Run("other tenant sees not found", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.New(), p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("nil tenant is rejected", func(t *testing.T) {
		_, err := repo.FindByIDForTenant(ctx, uuid.Nil, p.ID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_FindByIDsForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	tenantID := uuid.New()
	a := seedProduct(t, db, tenantID, "a", 1, 0)
	b := seedProduct(t, db, tenantID, "b", 1, 0)
	foreign := seedProduct(t, db, uuid.New(), "c", 1, 0)

	found, err := repo.FindByIDsForTenant(context.Background(), tenantID, []uuid.UUID{a.ID, b.ID, foreign.ID})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	empty, err := repo.FindByIDsForTenant(context.Background(), tenantID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormProductRepository_DecrementStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("decrements and bumps version", func(t *testing.T) {
		p := seedProduct(t, db, tenantID, "dec-1", 10, 0)

		require.NoError(t, repo.DecrementStock(ctx, tenantID, p.ID, 4))

		found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, found.Stock)
		assert.Equal(t, p.Version+1, found.Version)
	})

	t.Run("takes the last units", func(t *testing.T) {
		p := seedProduct(t, db, tenantID, "dec-2", 3, 0)

		require.NoError(t, repo.DecrementStock(ctx, tenantID, p.ID, 3))

		found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, found.Stock)
	})

	t.Run("insufficient stock leaves the row untouched", func(t *testing.T) {
		p := seedProduct(t, db, tenantID, "dec-3", 3, 0)

		err := repo.DecrementStock(ctx, tenantID, p.ID, 5)

		var stockErr *shared.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.Equal(t, 3, stockErr.Available)
		assert.Equal(t, 5, stockErr.Requested)
		assert.Equal(t, p.ID, stockErr.ProductID)

		found, err := repo.FindByIDForTenant(ctx, tenantID, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, found.Stock)
	})

	t.Run("missing product", func(t *testing.T) {
		err := repo.DecrementStock(ctx, tenantID, uuid.New(), 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("other tenant cannot decrement", func(t *testing.T) {
		p := seedProduct(t, db, tenantID, "dec-4", 3, 0)
		err := repo.DecrementStock(ctx, uuid.New(), p.ID, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		err := repo.DecrementStock(ctx, tenantID, uuid.New(), 0)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestGormProductRepository_DecrementStock_SQL(t *testing.T) {
	t.Run("guards on stock in the update", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB)
		tenantID, productID := uuid.New(), uuid.New()

		mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1,"updated_at"=\$2,"version"=version \+ 1 WHERE tenant_id = \$3 AND id = \$4 AND stock >= \$5`).
			WithArgs(5, sqlmock.AnyArg(), tenantID, productID, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DecrementStock(context.Background(), tenantID, productID, 5))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-reads stock when no row matched", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB)
		tenantID, productID := uuid.New(), uuid.New()

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT "stock" FROM "products" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, productID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(3))

		err := repo.DecrementStock(context.Background(), tenantID, productID, 5)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a conflict when stock recovered", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormProductRepository(gormDB)

		mock.ExpectExec(`UPDATE "products" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT "stock" FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"stock"}).AddRow(9))

		err := repo.DecrementStock(context.Background(), uuid.New(), uuid.New(), 5)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_FindLowStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	seedProduct(t, db, tenantID, "ok", 10, 2)
	low := seedProduct(t, db, tenantID, "low", 2, 5)
	out := seedProduct(t, db, tenantID, "out", 0, 1)
	edge := seedProduct(t, db, tenantID, "edge", 4, 4)
	inactive, err := repo.FindByIDForTenant(ctx, tenantID, seedProduct(t, db, tenantID, "gone", 0, 3).ID)
	require.NoError(t, err)
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))
	seedProduct(t, db, uuid.New(), "foreign", 0, 3)

	found, err := repo.FindLowStock(ctx, tenantID, 0)
	require.NoError(t, err)
	require.Len(t, found, 3)
	assert.Equal(t, out.ID, found[0].ID)
	assert.Equal(t, low.ID, found[1].ID)
	assert.Equal(t, edge.ID, found[2].ID)

	capped, err := repo.FindLowStock(ctx, tenantID, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}
