package finance

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// AlertType identifies the family an alert was derived from
type AlertType string

const (
	AlertTypeOverdue     AlertType = "OVERDUE"
	AlertTypeDueSoon     AlertType = "DUE_SOON"
	AlertTypeCreditLimit AlertType = "CREDIT_LIMIT"
	AlertTypeLowStock    AlertType = "LOW_STOCK"
)

// IsValid checks if the alert type is known
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeOverdue, AlertTypeDueSoon, AlertTypeCreditLimit, AlertTypeLowStock:
		return true
	}
	return false
}

func (t AlertType) rank() int {
	switch t {
	case AlertTypeOverdue:
		return 0
	case AlertTypeDueSoon:
		return 1
	case AlertTypeCreditLimit:
		return 2
	default:
		return 3
	}
}

// AlertPriority orders alerts, HIGH first
type AlertPriority string

const (
	AlertPriorityHigh   AlertPriority = "HIGH"
	AlertPriorityMedium AlertPriority = "MEDIUM"
	AlertPriorityLow    AlertPriority = "LOW"
)

// IsValid checks if the priority is known
func (p AlertPriority) IsValid() bool {
	switch p {
	case AlertPriorityHigh, AlertPriorityMedium, AlertPriorityLow:
		return true
	}
	return false
}

func (p AlertPriority) rank() int {
	switch p {
	case AlertPriorityHigh:
		return 0
	case AlertPriorityMedium:
		return 1
	default:
		return 2
	}
}

// Alert is a derived, never persisted, operational signal
type Alert struct {
	ID         string
	Type       AlertType
	Priority   AlertPriority
	Title      string
	Message    string
	EntityType string
	EntityID   uuid.UUID

	// Sale families
	CustomerID       *uuid.UUID
	Folio            string
	DueDate          *time.Time
	DaysOverdue      int
	DaysUntilDue     int
	RemainingBalance decimal.Decimal

	// Credit family
	CreditLimit    decimal.Decimal
	CurrentDebt    decimal.Decimal
	UsagePercent   decimal.Decimal
	ExceededAmount decimal.Decimal

	// Stock family
	ProductCode string
	Stock       int
	MinStock    int
}

// AlertFilter narrows the derived list. Zero values match everything.
type AlertFilter struct {
	Type     AlertType
	Priority AlertPriority
}

// Validate rejects unknown filter values
func (f AlertFilter) Validate() error {
	if f.Type != "" && !f.Type.IsValid() {
		return shared.NewValidationError("type", "unknown alert type")
	}
	if f.Priority != "" && !f.Priority.IsValid() {
		return shared.NewValidationError("priority", "unknown alert priority")
	}
	return nil
}

// Matches reports whether an alert passes the filter
func (f AlertFilter) Matches(a Alert) bool {
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Priority != "" && a.Priority != f.Priority {
		return false
	}
	return true
}

// Apply returns the alerts that pass the filter, keeping their order
func (f AlertFilter) Apply(alerts []Alert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		if f.Matches(a) {
			out = append(out, a)
		}
	}
	return out
}

// LedgerSnapshot is the read-only input of the deriver, taken in one
// consistent read
type LedgerSnapshot struct {
	// OutstandingSales are CREDIT sales in PENDING or PARTIAL
	OutstandingSales []trade.Sale
	// IndebtedCustomers are customers with current debt > 0
	IndebtedCustomers []partner.Customer
	// LowStockProducts are active products with stock <= min stock
	LowStockProducts []inventory.Product
}

const (
	DefaultDueSoonDays   = 7
	DefaultLowStockLimit = 20
)

var (
	creditWarnPercent = decimal.NewFromInt(90)
	creditFullPercent = decimal.NewFromInt(100)
)

// AlertDeriver turns a ledger snapshot into a prioritized alert list.
// It has no dependencies and never mutates its input.
type AlertDeriver struct {
	dueSoonDays   int
	lowStockLimit int
}

// NewAlertDeriver creates a deriver; non-positive arguments fall back to defaults
func NewAlertDeriver(dueSoonDays, lowStockLimit int) *AlertDeriver {
	if dueSoonDays <= 0 {
		dueSoonDays = DefaultDueSoonDays
	}
	if lowStockLimit <= 0 {
		lowStockLimit = DefaultLowStockLimit
	}
	return &AlertDeriver{dueSoonDays: dueSoonDays, lowStockLimit: lowStockLimit}
}

// LowStockLimit is the cap on LOW_STOCK alerts
func (d *AlertDeriver) LowStockLimit() int {
	return d.lowStockLimit
}

// Derive computes every family against now and returns the merged, sorted list
func (d *AlertDeriver) Derive(snapshot LedgerSnapshot, now time.Time) []Alert {
	alerts := make([]Alert, 0)
	alerts = append(alerts, d.saleAlerts(snapshot.OutstandingSales, now)...)
	alerts = append(alerts, d.creditAlerts(snapshot.IndebtedCustomers)...)
	alerts = append(alerts, d.stockAlerts(snapshot.LowStockProducts)...)
	SortAlerts(alerts)
	return alerts
}

func (d *AlertDeriver) saleAlerts(sales []trade.Sale, now time.Time) []Alert {
	horizon := now.Add(time.Duration(d.dueSoonDays) * 24 * time.Hour)
	alerts := make([]Alert, 0)
	for i := range sales {
		s := &sales[i]
		if !s.IsOutstanding() || s.DueDate == nil {
			continue
		}
		due := *s.DueDate
		base := Alert{
			EntityType:       "sale",
			EntityID:         s.ID,
			CustomerID:       s.CustomerID,
			Folio:            s.Folio,
			DueDate:          &due,
			RemainingBalance: s.RemainingBalance,
		}
		switch {
		case due.Before(now):
			a := base
			a.Type = AlertTypeOverdue
			a.Priority = AlertPriorityHigh
			a.DaysOverdue = s.DaysOverdue(now)
			a.Title = "Overdue sale"
			a.Message = fmt.Sprintf("Sale %s is %d day(s) overdue with %s outstanding", s.Folio, a.DaysOverdue, s.RemainingBalance.StringFixed(2))
			a.ID = alertID(a.Type, s.ID)
			alerts = append(alerts, a)
		case !due.After(horizon):
			a := base
			a.Type = AlertTypeDueSoon
			a.Priority = AlertPriorityMedium
			a.DaysUntilDue = s.DaysUntilDue(now)
			a.Title = "Sale due soon"
			a.Message = fmt.Sprintf("Sale %s is due in %d day(s) with %s outstanding", s.Folio, a.DaysUntilDue, s.RemainingBalance.StringFixed(2))
			a.ID = alertID(a.Type, s.ID)
			alerts = append(alerts, a)
		}
	}
	return alerts
}

func (d *AlertDeriver) creditAlerts(customers []partner.Customer) []Alert {
	alerts := make([]Alert, 0)
	for i := range customers {
		c := &customers[i]
		if !c.CurrentDebt.IsPositive() {
			continue
		}
		usage := c.CreditUsagePercent()
		if usage.LessThan(creditWarnPercent) {
			continue
		}
		customerID := c.ID
		a := Alert{
			ID:           alertID(AlertTypeCreditLimit, c.ID),
			Type:         AlertTypeCreditLimit,
			EntityType:   "customer",
			EntityID:     c.ID,
			CustomerID:   &customerID,
			CreditLimit:  c.CreditLimit,
			CurrentDebt:  c.CurrentDebt,
			UsagePercent: usage.Round(2),
		}
		if usage.GreaterThanOrEqual(creditFullPercent) {
			a.Priority = AlertPriorityHigh
			a.ExceededAmount = decimal.Max(c.CurrentDebt.Sub(c.CreditLimit), decimal.Zero)
			a.Title = "Credit limit reached"
			a.Message = fmt.Sprintf("%s is at %s%% of the credit limit (%s over)", c.Name, a.UsagePercent.StringFixed(2), a.ExceededAmount.StringFixed(2))
		} else {
			a.Priority = AlertPriorityMedium
			a.Title = "Credit limit nearly reached"
			a.Message = fmt.Sprintf("%s is at %s%% of the credit limit", c.Name, a.UsagePercent.StringFixed(2))
		}
		alerts = append(alerts, a)
	}
	return alerts
}

func (d *AlertDeriver) stockAlerts(products []inventory.Product) []Alert {
	candidates := make([]inventory.Product, 0, len(products))
	for _, p := range products {
		if p.IsActive && p.IsLowStock() {
			candidates = append(candidates, p)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Stock != candidates[j].Stock {
			return candidates[i].Stock < candidates[j].Stock
		}
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	if len(candidates) > d.lowStockLimit {
		candidates = candidates[:d.lowStockLimit]
	}

	alerts := make([]Alert, 0, len(candidates))
	for _, p := range candidates {
		a := Alert{
			ID:          alertID(AlertTypeLowStock, p.ID),
			Type:        AlertTypeLowStock,
			EntityType:  "product",
			EntityID:    p.ID,
			ProductCode: p.Code,
			Stock:       p.Stock,
			MinStock:    p.MinStock,
		}
		switch {
		case p.Stock == 0:
			a.Priority = AlertPriorityHigh
			a.Title = "Out of stock"
		case p.Stock <= 3:
			a.Priority = AlertPriorityMedium
			a.Title = "Low stock"
		default:
			a.Priority = AlertPriorityLow
			a.Title = "Low stock"
		}
		a.Message = fmt.Sprintf("%s (%s) has %d in stock, minimum is %d", p.Name, p.Code, p.Stock, p.MinStock)
		alerts = append(alerts, a)
	}
	return alerts
}

// SortAlerts orders by priority, then family, then the family's most
// time-relevant field: earliest due date, highest overage, lowest stock.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Priority != b.Priority {
			return a.Priority.rank() < b.Priority.rank()
		}
		if a.Type != b.Type {
			return a.Type.rank() < b.Type.rank()
		}
		switch a.Type {
		case AlertTypeOverdue, AlertTypeDueSoon:
			if !a.DueDate.Equal(*b.DueDate) {
				return a.DueDate.Before(*b.DueDate)
			}
		case AlertTypeCreditLimit:
			if !a.ExceededAmount.Equal(b.ExceededAmount) {
				return a.ExceededAmount.GreaterThan(b.ExceededAmount)
			}
			if !a.UsagePercent.Equal(b.UsagePercent) {
				return a.UsagePercent.GreaterThan(b.UsagePercent)
			}
		case AlertTypeLowStock:
			if a.Stock != b.Stock {
				return a.Stock < b.Stock
			}
		}
		return a.ID < b.ID
	})
}

func alertID(t AlertType, entityID uuid.UUID) string {
	return string(t) + ":" + entityID.String()
}
