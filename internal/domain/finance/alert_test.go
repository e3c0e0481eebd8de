package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alertNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func creditSale(due time.Time, remaining string) trade.Sale {
	customerID := uuid.New()
	s := trade.Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(uuid.New()),
		CustomerID:          &customerID,
		Folio:               "V-20260901-000001",
		PaymentMethod:       trade.PaymentMethodCredit,
		Total:               dec(remaining),
		AmountPaid:          dec("0"),
		RemainingBalance:    dec(remaining),
		PaymentStatus:       trade.PaymentStatusPending,
		DueDate:             &due,
	}
	return s
}

func customer(limit, debt string) partner.Customer {
	c, _ := partner.NewCustomer(uuid.New(), "Ana", dec(limit))
	c.CurrentDebt = dec(debt)
	return *c
}

func product(stock, minStock int) inventory.Product {
	p, _ := inventory.NewProduct(uuid.New(), "p-1", "Widget", dec("1"), stock, minStock)
	return *p
}

func TestDerive_OverdueScenario(t *testing.T) {
	snapshot := LedgerSnapshot{
		OutstandingSales: []trade.Sale{creditSale(alertNow.Add(-3*24*time.Hour), "100")},
	}

	alerts := NewAlertDeriver(0, 0).Derive(snapshot, alertNow)

	require.Len(t, alerts, 1)
	assert.Equal(t, AlertTypeOverdue, alerts[0].Type)
	assert.Equal(t, AlertPriorityHigh, alerts[0].Priority)
	assert.Equal(t, 3, alerts[0].DaysOverdue)
}

func TestDerive_OverdueFloorsPartialDays(t *testing.T) {
	snapshot := LedgerSnapshot{
		OutstandingSales: []trade.Sale{creditSale(alertNow.Add(-(2*24*time.Hour + 23*time.Hour)), "10")},
	}

	alerts := NewAlertDeriver(0, 0).Derive(snapshot, alertNow)

	require.Len(t, alerts, 1)
	assert.Equal(t, 2, alerts[0].DaysOverdue)
}

func TestDerive_DueSoonWindow(t *testing.T) {
	inWindow := creditSale(alertNow.Add(2*24*time.Hour), "10")
	onEdge := creditSale(alertNow.Add(7*24*time.Hour), "10")
	dueNow := creditSale(alertNow, "10")
	beyond := creditSale(alertNow.Add(8*24*time.Hour), "10")

	alerts := NewAlertDeriver(7, 20).Derive(LedgerSnapshot{
		OutstandingSales: []trade.Sale{beyond, onEdge, inWindow, dueNow},
	}, alertNow)

	require.Len(t, alerts, 3)
	for _, a := range alerts {
		assert.Equal(t, AlertTypeDueSoon, a.Type)
		assert.Equal(t, AlertPriorityMedium, a.Priority)
	}
	assert.Equal(t, dueNow.ID, alerts[0].EntityID)
	assert.Equal(t, 0, alerts[0].DaysUntilDue)
	assert.Equal(t, inWindow.ID, alerts[1].EntityID)
	assert.Equal(t, 2, alerts[1].DaysUntilDue)
	assert.Equal(t, onEdge.ID, alerts[2].EntityID)
	assert.Equal(t, 7, alerts[2].DaysUntilDue)
}

func TestDerive_IgnoresSettledAndNonCredit(t *testing.T) {
	paid := creditSale(alertNow.Add(-24*time.Hour), "10")
	paid.PaymentStatus = trade.PaymentStatusPaid
	cash := creditSale(alertNow.Add(-24*time.Hour), "10")
	cash.PaymentMethod = trade.PaymentMethodCash

	alerts := NewAlertDeriver(0, 0).Derive(LedgerSnapshot{OutstandingSales: []trade.Sale{paid, cash}}, alertNow)
	assert.Empty(t, alerts)
}

func TestDerive_CreditLimit(t *testing.T) {
	over := customer("1000", "1200")
	full := customer("1000", "1000")
	near := customer("1000", "950")
	below := customer("1000", "899")
	zeroLimit := customer("0", "5")
	noDebt := customer("0", "0")

	alerts := NewAlertDeriver(0, 0).Derive(LedgerSnapshot{
		IndebtedCustomers: []partner.Customer{below, near, full, over, zeroLimit, noDebt},
	}, alertNow)

	require.Len(t, alerts, 4)
	// HIGH sorted by overage, highest first
	assert.Equal(t, over.ID, alerts[0].EntityID)
	assert.Equal(t, AlertPriorityHigh, alerts[0].Priority)
	assert.True(t, alerts[0].ExceededAmount.Equal(dec("200")))
	assert.Equal(t, zeroLimit.ID, alerts[1].EntityID)
	assert.True(t, alerts[1].ExceededAmount.Equal(dec("5")))
	assert.Equal(t, full.ID, alerts[2].EntityID)
	assert.True(t, alerts[2].ExceededAmount.IsZero())
	assert.Equal(t, near.ID, alerts[3].EntityID)
	assert.Equal(t, AlertPriorityMedium, alerts[3].Priority)
	assert.True(t, alerts[3].UsagePercent.Equal(dec("95")))
}

func TestDerive_LowStock(t *testing.T) {
	products := []inventory.Product{product(5, 10), product(0, 2), product(2, 4), product(8, 5)}
	inactive := product(0, 1)
	inactive.Deactivate()
	products = append(products, inactive)

	alerts := NewAlertDeriver(0, 0).Derive(LedgerSnapshot{LowStockProducts: products}, alertNow)

	require.Len(t, alerts, 3)
	assert.Equal(t, 0, alerts[0].Stock)
	assert.Equal(t, AlertPriorityHigh, alerts[0].Priority)
	assert.Equal(t, 2, alerts[1].Stock)
	assert.Equal(t, AlertPriorityMedium, alerts[1].Priority)
	assert.Equal(t, 5, alerts[2].Stock)
	assert.Equal(t, AlertPriorityLow, alerts[2].Priority)
}

func TestDerive_LowStockIsCapped(t *testing.T) {
	products := make([]inventory.Product, 0, 30)
	for i := 0; i < 30; i++ {
		products = append(products, product(i%5, 10))
	}

	alerts := NewAlertDeriver(0, 20).Derive(LedgerSnapshot{LowStockProducts: products}, alertNow)

	assert.Len(t, alerts, 20)
	for _, a := range alerts {
		assert.LessOrEqual(t, a.Stock, 3)
	}
}

func TestDerive_MergedOrderAndFilter(t *testing.T) {
	snapshot := LedgerSnapshot{
		OutstandingSales:  []trade.Sale{creditSale(alertNow.Add(3*24*time.Hour), "10"), creditSale(alertNow.Add(-24*time.Hour), "10")},
		IndebtedCustomers: []partner.Customer{customer("100", "120"), customer("100", "92")},
		LowStockProducts:  []inventory.Product{product(0, 1), product(6, 9)},
	}

	alerts := NewAlertDeriver(0, 0).Derive(snapshot, alertNow)

	require.Len(t, alerts, 6)
	got := make([]AlertType, 0, len(alerts))
	for _, a := range alerts {
		got = append(got, a.Type)
	}
	assert.Equal(t, []AlertType{
		AlertTypeOverdue, AlertTypeCreditLimit, AlertTypeLowStock,
		AlertTypeDueSoon, AlertTypeCreditLimit,
		AlertTypeLowStock,
	}, got)

	high := AlertFilter{Priority: AlertPriorityHigh}.Apply(alerts)
	assert.Len(t, high, 3)
	credit := AlertFilter{Type: AlertTypeCreditLimit}.Apply(alerts)
	assert.Len(t, credit, 2)
	both := AlertFilter{Type: AlertTypeCreditLimit, Priority: AlertPriorityMedium}.Apply(alerts)
	assert.Len(t, both, 1)
}

func TestDerive_DoesNotMutateSnapshot(t *testing.T) {
	products := []inventory.Product{product(3, 5), product(0, 5)}
	firstID := products[0].ID

	NewAlertDeriver(0, 0).Derive(LedgerSnapshot{LowStockProducts: products}, alertNow)

	assert.Equal(t, firstID, products[0].ID)
}

func TestAlertFilter_Validate(t *testing.T) {
	assert.NoError(t, AlertFilter{}.Validate())
	assert.NoError(t, AlertFilter{Type: AlertTypeLowStock, Priority: AlertPriorityLow}.Validate())
	assert.ErrorIs(t, AlertFilter{Type: "NOPE"}.Validate(), shared.ErrInvalidInput)
	assert.ErrorIs(t, AlertFilter{Priority: "URGENT"}.Validate(), shared.ErrInvalidInput)
}
