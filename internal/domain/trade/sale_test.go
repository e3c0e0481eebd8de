package trade

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// balanced checks amountPaid + remainingBalance == total exactly
func balanced(s *Sale) bool {
	return s.AmountPaid.Add(s.RemainingBalance).Equal(s.Total)
}

func creditParams(t *testing.T, lines ...SaleLine) NewSaleParams {
	t.Helper()
	customerID := uuid.New()
	return NewSaleParams{
		TenantID:      uuid.New(),
		UserID:        uuid.New(),
		CustomerID:    &customerID,
		Folio:         "V-20261019-000001",
		PaymentMethod: PaymentMethodCredit,
		Lines:         lines,
		Now:           time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewSale_CreditInitialState(t *testing.T) {
	params := creditParams(t,
		SaleLine{ProductID: uuid.New(), Quantity: 2, UnitPrice: dec("25.50")},
		SaleLine{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("49")},
	)

	sale, err := NewSale(params)
	require.NoError(t, err)

	assert.True(t, sale.Subtotal.Equal(dec("100")))
	assert.True(t, sale.Tax.IsZero())
	assert.True(t, sale.Total.Equal(dec("100")))
	assert.True(t, sale.AmountPaid.IsZero())
	assert.True(t, sale.RemainingBalance.Equal(dec("100")))
	assert.Equal(t, PaymentStatusPending, sale.PaymentStatus)
	require.NotNil(t, sale.DueDate)
	assert.Equal(t, params.Now.AddDate(0, 0, 30), *sale.DueDate)
	assert.True(t, balanced(sale))
	assert.True(t, sale.IsOutstanding())
	assert.Len(t, sale.Items, 2)
	assert.True(t, sale.Items[0].LineTotal.Equal(dec("51")))
	assert.Equal(t, sale.ID, sale.Items[0].SaleID)

	events := sale.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeSaleCompleted, events[0].EventType())
}

func TestNewSale_CashIsPaidAtCheckout(t *testing.T) {
	params := creditParams(t, SaleLine{ProductID: uuid.New(), Quantity: 3, UnitPrice: dec("10")})
	params.PaymentMethod = PaymentMethodCash
	params.CustomerID = nil

	sale, err := NewSale(params)
	require.NoError(t, err)

	assert.True(t, sale.AmountPaid.Equal(dec("30")))
	assert.True(t, sale.RemainingBalance.IsZero())
	assert.Equal(t, PaymentStatusPaid, sale.PaymentStatus)
	assert.Nil(t, sale.DueDate)
	assert.False(t, sale.IsOutstanding())
}

func TestNewSale_TaxIsRoundedToCents(t *testing.T) {
	params := creditParams(t, SaleLine{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("10.03")})
	params.TaxRate = dec("0.16")

	sale, err := NewSale(params)
	require.NoError(t, err)

	assert.True(t, sale.Tax.Equal(dec("1.60")), "tax %s", sale.Tax)
	assert.True(t, sale.Total.Equal(dec("11.63")), "total %s", sale.Total)
	assert.True(t, balanced(sale))
}

func TestNewSale_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *NewSaleParams)
	}{
		{"no items", func(p *NewSaleParams) { p.Lines = nil }},
		{"zero quantity", func(p *NewSaleParams) { p.Lines[0].Quantity = 0 }},
		{"negative price", func(p *NewSaleParams) { p.Lines[0].UnitPrice = dec("-1") }},
		{"zero total", func(p *NewSaleParams) { p.Lines[0].UnitPrice = decimal.Zero }},
		{"credit without customer", func(p *NewSaleParams) { p.CustomerID = nil }},
		{"unknown method", func(p *NewSaleParams) { p.PaymentMethod = "BARTER" }},
		{"missing folio", func(p *NewSaleParams) { p.Folio = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := creditParams(t, SaleLine{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("10")})
			tt.mutate(&params)

			sale, err := NewSale(params)
			assert.Nil(t, sale)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
		})
	}
}

func TestSale_ApplyPayment(t *testing.T) {
	newSale := func(t *testing.T) *Sale {
		s, err := NewSale(creditParams(t, SaleLine{ProductID: uuid.New(), Quantity: 1, UnitPrice: dec("100")}))
		require.NoError(t, err)
		return s
	}

	t.Run("partial then full", func(t *testing.T) {
		s := newSale(t)

		require.NoError(t, s.ApplyPayment(dec("70")))
		assert.Equal(t, PaymentStatusPartial, s.PaymentStatus)
		assert.True(t, s.RemainingBalance.Equal(dec("30")))
		assert.True(t, balanced(s))

		require.NoError(t, s.ApplyPayment(dec("30")))
		assert.Equal(t, PaymentStatusPaid, s.PaymentStatus)
		assert.True(t, s.RemainingBalance.IsZero())
		assert.True(t, balanced(s))
	})

	t.Run("excess payment is rejected", func(t *testing.T) {
		s := newSale(t)

		err := s.ApplyPayment(dec("100.01"))

		var excess *shared.ExcessPaymentError
		require.ErrorAs(t, err, &excess)
		assert.True(t, excess.RemainingBalance.Equal(dec("100")))
		assert.True(t, excess.Amount.Equal(dec("100.01")))
		assert.True(t, s.RemainingBalance.Equal(dec("100")))
	})

	t.Run("non-positive amount is invalid", func(t *testing.T) {
		s := newSale(t)
		assert.ErrorIs(t, s.ApplyPayment(decimal.Zero), shared.ErrInvalidInput)
	})
}

func TestSale_DueDates(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	overdue := now.Add(-3*24*time.Hour - time.Hour)
	s := &Sale{DueDate: &overdue}
	assert.Equal(t, 3, s.DaysOverdue(now))
	assert.Equal(t, 0, s.DaysUntilDue(now))

	soon := now.Add(5*24*time.Hour + time.Hour)
	s = &Sale{DueDate: &soon}
	assert.Equal(t, 0, s.DaysOverdue(now))
	assert.Equal(t, 5, s.DaysUntilDue(now))
}

func TestDerivePaymentStatus(t *testing.T) {
	assert.Equal(t, PaymentStatusPending, DerivePaymentStatus(decimal.Zero, dec("10")))
	assert.Equal(t, PaymentStatusPartial, DerivePaymentStatus(dec("1"), dec("9")))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(dec("10"), decimal.Zero))
}

func TestQuantitiesByProduct(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	qty, order, err := QuantitiesByProduct([]SaleLine{
		{ProductID: p1, Quantity: 2},
		{ProductID: p2, Quantity: 1},
		{ProductID: p1, Quantity: 3},
	})

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p1, p2}, order)
	assert.Equal(t, 5, qty[p1])
	assert.Equal(t, 1, qty[p2])
}

func TestQuantitiesByProduct_RejectsOverflowingMerge(t *testing.T) {
	gum := uuid.New()

	tests := []struct {
		name  string
		lines []SaleLine
	}{
		{"single line above cap", []SaleLine{{ProductID: gum, Quantity: math.MaxInt64}}},
		{"repeated lines above cap", []SaleLine{
			{ProductID: gum, Quantity: math.MaxInt32},
			{ProductID: gum, Quantity: 1},
		}},
		{"huge repeated lines", []SaleLine{
			{ProductID: gum, Quantity: math.MaxInt64},
			{ProductID: gum, Quantity: math.MaxInt64},
			{ProductID: gum, Quantity: 3, UnitPrice: dec("1")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := QuantitiesByProduct(tt.lines)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.ErrorIs(t, ValidateLines(tt.lines), shared.ErrInvalidInput)
		})
	}
}

func TestQuantitiesByProduct_AcceptsMergeAtCap(t *testing.T) {
	gum := uuid.New()

	qty, _, err := QuantitiesByProduct([]SaleLine{
		{ProductID: gum, Quantity: math.MaxInt32 - 1},
		{ProductID: gum, Quantity: 1},
	})

	require.NoError(t, err)
	assert.Equal(t, math.MaxInt32, qty[gum])
}

func TestPaymentMethod(t *testing.T) {
	assert.True(t, PaymentMethodCash.CanSettle())
	assert.True(t, PaymentMethodTransfer.CanSettle())
	assert.False(t, PaymentMethodCredit.CanSettle())
	assert.False(t, PaymentMethod("CHEQUE").IsValid())
}
