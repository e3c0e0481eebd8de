package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaleModel_RoundTripKeepsLedgerState(t *testing.T) {
	customerID := uuid.New()
	sale, err := trade.NewSale(trade.NewSaleParams{
		TenantID:      uuid.New(),
		UserID:        uuid.New(),
		CustomerID:    &customerID,
		Folio:         "V-20261019-000007",
		PaymentMethod: trade.PaymentMethodCredit,
		Lines: []trade.SaleLine{
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.NewFromInt(15)},
		},
		Now: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	m := SaleModelFromDomain(sale)
	require.Len(t, m.Items, 1)
	assert.Equal(t, sale.ID, m.Items[0].SaleID)
	assert.Equal(t, sale.TenantID, m.Items[0].TenantID)

	back := m.ToDomain()
	assert.Equal(t, sale.ID, back.ID)
	assert.Equal(t, sale.TenantID, back.TenantID)
	assert.Equal(t, sale.Folio, back.Folio)
	assert.True(t, back.Total.Equal(decimal.NewFromInt(30)))
	assert.True(t, back.AmountPaid.Add(back.RemainingBalance).Equal(back.Total))
	assert.Equal(t, trade.PaymentStatusPending, back.PaymentStatus)
	assert.Equal(t, sale.DueDate, back.DueDate)
	assert.Empty(t, back.GetDomainEvents())
}
