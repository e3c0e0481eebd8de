package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	// DefaultCreditDays is the credit term applied to CREDIT sales
	DefaultCreditDays = 30
	moneyScale        = 2
)

// SaleLine is one requested line of a sale before it is persisted
type SaleLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// SaleItem is an immutable line of a committed sale
type SaleItem struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Sale is the ledger record of a checkout. After creation its balances only
// change through payments, and Total == AmountPaid + RemainingBalance always holds.
type Sale struct {
	shared.TenantAggregateRoot
	CustomerID       *uuid.UUID
	Folio            string
	PaymentMethod    PaymentMethod
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	Total            decimal.Decimal
	AmountPaid       decimal.Decimal
	RemainingBalance decimal.Decimal
	PaymentStatus    PaymentStatus
	DueDate          *time.Time
	Notes            string
	Items            []SaleItem
}

// NewSaleParams carries everything needed to open a sale
type NewSaleParams struct {
	TenantID      uuid.UUID
	UserID        uuid.UUID
	CustomerID    *uuid.UUID
	Folio         string
	PaymentMethod PaymentMethod
	Lines         []SaleLine
	TaxRate       decimal.Decimal
	CreditDays    int
	Notes         string
	Now           time.Time
}

// Totals is the computed money breakdown of a set of lines
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// ValidateLines checks line shape: at least one line, qty > 0, unitPrice >= 0
func ValidateLines(lines []SaleLine) error {
	if len(lines) == 0 {
		return shared.NewValidationError("items", "a sale needs at least one item")
	}
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return shared.NewValidationError("items.product_id", "product is required")
		}
		if err := inventory.ValidateQuantity(l.Quantity); err != nil {
			return err
		}
		if l.UnitPrice.IsNegative() {
			return shared.NewValidationError("items.unit_price", "unit price cannot be negative")
		}
	}
	_, _, err := QuantitiesByProduct(lines)
	return err
}

// CalculateTotals computes subtotal, tax and total. Line totals are exact;
// tax is rounded to cents.
func CalculateTotals(lines []SaleLine, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := subtotal.Mul(taxRate).Round(moneyScale)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// QuantitiesByProduct sums requested quantities per product so each product
// is decremented from stock once per sale. The second result keeps first-seen
// order. A merged quantity above inventory.MaxQuantity is a ValidationError.
func QuantitiesByProduct(lines []SaleLine) (map[uuid.UUID]int, []uuid.UUID, error) {
	qty := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if err := inventory.ValidateQuantity(l.Quantity); err != nil {
			return nil, nil, err
		}
		current, seen := qty[l.ProductID]
		if !seen {
			order = append(order, l.ProductID)
		}
		if current > inventory.MaxQuantity-l.Quantity {
			return nil, nil, shared.NewValidationError("items.quantity", "total quantity per product cannot exceed 2147483647")
		}
		qty[l.ProductID] = current + l.Quantity
	}
	return qty, order, nil
}

// NewSale builds a sale with its initial ledger state. CREDIT sales start
// PENDING with the full total outstanding and a due date; every other method
// is settled at checkout.
func NewSale(p NewSaleParams) (*Sale, error) {
	if err := ValidateLines(p.Lines); err != nil {
		return nil, err
	}
	if !p.PaymentMethod.IsValid() {
		return nil, shared.NewValidationError("payment_method", "unknown payment method")
	}
	if p.PaymentMethod.IsCredit() && (p.CustomerID == nil || *p.CustomerID == uuid.Nil) {
		return nil, shared.NewValidationError("customer_id", "credit sales require a customer")
	}
	if p.Folio == "" {
		return nil, shared.NewValidationError("folio", "folio is required")
	}
	totals := CalculateTotals(p.Lines, p.TaxRate)
	if !totals.Total.IsPositive() {
		return nil, shared.NewValidationError("items", "sale total must be greater than zero")
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(p.TenantID),
		CustomerID:          p.CustomerID,
		Folio:               p.Folio,
		PaymentMethod:       p.PaymentMethod,
		Subtotal:            totals.Subtotal,
		Tax:                 totals.Tax,
		Total:               totals.Total,
		Notes:               p.Notes,
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now
	sale.SetCreatedBy(p.UserID)

	if p.PaymentMethod.IsCredit() {
		days := p.CreditDays
		if days <= 0 {
			days = DefaultCreditDays
		}
		due := now.AddDate(0, 0, days)
		sale.AmountPaid = decimal.Zero
		sale.RemainingBalance = totals.Total
		sale.DueDate = &due
	} else {
		sale.AmountPaid = totals.Total
		sale.RemainingBalance = decimal.Zero
	}
	sale.PaymentStatus = DerivePaymentStatus(sale.AmountPaid, sale.RemainingBalance)

	sale.Items = make([]SaleItem, 0, len(p.Lines))
	for _, l := range p.Lines {
		sale.Items = append(sale.Items, SaleItem{
			ID:        uuid.New(),
			SaleID:    sale.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}

	sale.AddDomainEvent(NewSaleCompletedEvent(sale))
	return sale, nil
}

// ApplyPayment applies amount to the in-memory balances. The persisted balance
// is changed through SaleRepository.ApplyPayment.
func (s *Sale) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "payment amount must be greater than zero")
	}
	if amount.GreaterThan(s.RemainingBalance) {
		return &shared.ExcessPaymentError{SaleID: s.ID, RemainingBalance: s.RemainingBalance, Amount: amount}
	}
	s.AmountPaid = s.AmountPaid.Add(amount)
	s.RemainingBalance = s.RemainingBalance.Sub(amount)
	s.PaymentStatus = DerivePaymentStatus(s.AmountPaid, s.RemainingBalance)
	s.IncrementVersion()
	s.Touch()
	return nil
}

// IsOutstanding reports whether the sale is an unpaid CREDIT sale
func (s *Sale) IsOutstanding() bool {
	return s.PaymentMethod.IsCredit() && s.PaymentStatus.IsOutstanding()
}

// BelongsToCustomer checks the sale's customer
func (s *Sale) BelongsToCustomer(customerID uuid.UUID) bool {
	return s.CustomerID != nil && *s.CustomerID == customerID
}

// DaysOverdue returns whole days elapsed since the due date, 0 if not yet due
func (s *Sale) DaysOverdue(now time.Time) int {
	if s.DueDate == nil || !s.DueDate.Before(now) {
		return 0
	}
	return int(now.Sub(*s.DueDate) / (24 * time.Hour))
}

// DaysUntilDue returns whole days left until the due date, 0 if already due
func (s *Sale) DaysUntilDue(now time.Time) int {
	if s.DueDate == nil || s.DueDate.Before(now) {
		return 0
	}
	return int(s.DueDate.Sub(now) / (24 * time.Hour))
}
