package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCustomerPaymentRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerPaymentRepository(db)
	ctx := context.Background()
	tenantID, customerID, saleID := uuid.New(), uuid.New(), uuid.New()
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	newPayment := func(sale *uuid.UUID, amount string, date time.Time) *finance.CustomerPayment {
		p, err := finance.NewCustomerPayment(finance.PaymentDetails{
			TenantID:      tenantID,
			CustomerID:    customerID,
			UserID:        uuid.New(),
			PaymentMethod: trade.PaymentMethodTransfer,
			PaymentDate:   date,
		}, sale, dec(amount))
		require.NoError(t, err)
		return p
	}

	first := newPayment(&saleID, "50", day)
	second := newPayment(&saleID, "25.5", day.Add(24*time.Hour))
	advance := newPayment(nil, "10", day.Add(48*time.Hour))
	require.NoError(t, repo.Create(ctx, first, second, advance))
	require.NoError(t, repo.Create(ctx))

	t.Run("recent newest first", func(t *testing.T) {
		found, err := repo.FindRecentByCustomer(ctx, tenantID, customerID, 2)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, advance.ID, found[0].ID)
		assert.Nil(t, found[0].SaleID)
		assert.Equal(t, trade.PaymentMethodTransfer, found[0].PaymentMethod)
		assert.Equal(t, second.ID, found[1].ID)
	})

	t.Run("tenant isolation", func(t *testing.T) {
		found, err := repo.FindRecentByCustomer(ctx, uuid.New(), customerID, 10)
		require.NoError(t, err)
		assert.Empty(t, found)
	})
}

func TestGormCustomerPaymentRepository_FindAllocationMismatches(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCustomerPaymentRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()
	c := seedCustomer(t, db, tenantID, "5000", "300")
	day := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	pay := func(tenantID uuid.UUID, saleID uuid.UUID, amount string) {
		p, err := finance.NewCustomerPayment(finance.PaymentDetails{
			TenantID:      tenantID,
			CustomerID:    c.ID,
			UserID:        uuid.New(),
			PaymentMethod: trade.PaymentMethodCash,
			PaymentDate:   day,
		}, &saleID, dec(amount))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, p))
	}
	setPaid := func(saleID uuid.UUID, paid, remaining string) {
		require.NoError(t, db.Model(&models.SaleModel{}).Where("id = ?", saleID).Updates(map[string]any{
			"amount_paid":       dec(paid),
			"remaining_balance": dec(remaining),
		}).Error)
	}

	settled := seedCreditSale(t, db, tenantID, c.ID, "100", day)
	pay(tenantID, settled.ID, "40")
	pay(tenantID, settled.ID, "60")
	setPaid(settled.ID, "100", "0")

	untouched := seedCreditSale(t, db, tenantID, c.ID, "100", day)

	unrecorded := seedCreditSale(t, db, tenantID, c.ID, "100", day)
	pay(tenantID, unrecorded.ID, "30")

	unbalanced := seedCreditSale(t, db, tenantID, c.ID, "100", day)
	pay(tenantID, unbalanced.ID, "20")
	setPaid(unbalanced.ID, "20", "90")

	otherTenant := uuid.New()
	foreign := seedCreditSale(t, db, otherTenant, c.ID, "100", day)
	pay(otherTenant, foreign.ID, "10")

	mismatches, err := repo.FindAllocationMismatches(ctx, tenantID)
	require.NoError(t, err)

	got := map[uuid.UUID]finance.SaleAllocation{}
	for _, m := range mismatches {
		got[m.SaleID] = m
	}
	require.Len(t, got, 2)
	assert.NotContains(t, got, settled.ID)
	assert.NotContains(t, got, untouched.ID)
	assert.NotContains(t, got, foreign.ID)
	assert.True(t, got[unrecorded.ID].Allocated.Equal(dec("30")))
	assert.True(t, got[unrecorded.ID].AmountPaid.IsZero())
	assert.True(t, got[unbalanced.ID].Allocated.Equal(got[unbalanced.ID].AmountPaid))
	assert.False(t, got[unbalanced.ID].Consistent())
}
