package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSaleRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	p1 := seedProduct(t, db, tenantID, "a", 10, 0)
	p2 := seedProduct(t, db, tenantID, "b", 10, 0)

	sale, err := trade.NewSale(trade.NewSaleParams{
		TenantID:      tenantID,
		UserID:        uuid.New(),
		Folio:         "V-20261019-000001",
		PaymentMethod: trade.PaymentMethodCash,
		Lines: []trade.SaleLine{
			{ProductID: p1.ID, Quantity: 2, UnitPrice: dec("12.5")},
			{ProductID: p2.ID, Quantity: 1, UnitPrice: dec("5")},
		},
		TaxRate: decimal.Zero,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, sale))

	found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "V-20261019-000001", found.Folio)
	assert.True(t, found.Total.Equal(dec("30")))
	assert.True(t, found.AmountPaid.Equal(dec("30")))
	assert.True(t, found.RemainingBalance.IsZero())
	assert.Equal(t, trade.PaymentStatusPaid, found.PaymentStatus)
	assert.Nil(t, found.DueDate)
	assert.Len(t, found.Items, 2)
	assert.True(t, found.AmountPaid.Add(found.RemainingBalance).Equal(found.Total))

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), sale.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSaleRepository_FindOutstandingByCustomer(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	c := seedCustomer(t, db, tenantID, "5000", "0")
	other := seedCustomer(t, db, tenantID, "5000", "0")
	base := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	newest := seedCreditSale(t, db, tenantID, c.ID, "70", base.Add(2*time.Hour))
	oldest := seedCreditSale(t, db, tenantID, c.ID, "50", base)
	seedCreditSale(t, db, tenantID, other.ID, "10", base)
	settled := seedCreditSale(t, db, tenantID, c.ID, "20", base.Add(time.Hour))
	require.NoError(t, repo.ApplyPayment(ctx, tenantID, settled.ID, dec("20")))

	found, err := repo.FindOutstandingByCustomer(ctx, tenantID, c.ID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, oldest.ID, found[0].ID)
	assert.Equal(t, newest.ID, found[1].ID)

	all, err := repo.FindOutstandingCredit(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGormSaleRepository_ApplyPayment(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	c := seedCustomer(t, db, tenantID, "5000", "0")
	sale := seedCreditSale(t, db, tenantID, c.ID, "100", time.Now())

	require.NoError(t, repo.ApplyPayment(ctx, tenantID, sale.ID, dec("40")))
	found, err := repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.True(t, found.AmountPaid.Equal(dec("40")))
	assert.True(t, found.RemainingBalance.Equal(dec("60")))
	assert.Equal(t, trade.PaymentStatusPartial, found.PaymentStatus)

	err = repo.ApplyPayment(ctx, tenantID, sale.ID, dec("60.5"))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

	require.NoError(t, repo.ApplyPayment(ctx, tenantID, sale.ID, dec("60")))
	found, err = repo.FindByIDForTenant(ctx, tenantID, sale.ID)
	require.NoError(t, err)
	assert.True(t, found.RemainingBalance.IsZero())
	assert.Equal(t, trade.PaymentStatusPaid, found.PaymentStatus)
	assert.True(t, found.AmountPaid.Add(found.RemainingBalance).Equal(found.Total))
}

func TestGormSaleRepository_ApplyPayment_SQL(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormSaleRepository(gormDB)
	tenantID, saleID := uuid.New(), uuid.New()

	mock.ExpectExec(`UPDATE "sales" SET "amount_paid"=amount_paid \+ \$1,"payment_status"=CASE WHEN remaining_balance - \$2 = 0 THEN 'PAID' ELSE 'PARTIAL' END,"remaining_balance"=remaining_balance - \$3,"updated_at"=\$4,"version"=version \+ 1 WHERE tenant_id = \$5 AND id = \$6 AND remaining_balance >= \$7`).
		WithArgs(dec("25"), dec("25"), dec("25"), sqlmock.AnyArg(), tenantID, saleID, dec("25")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyPayment(context.Background(), tenantID, saleID, dec("25"))
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
