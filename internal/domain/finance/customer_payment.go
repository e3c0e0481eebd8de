package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CustomerPayment is an append-only ledger entry for money received from a
// customer. SaleID is nil for advance (unallocated) payments.
type CustomerPayment struct {
	ID            uuid.UUID
	TenantID      uuid.UUID
	CustomerID    uuid.UUID
	SaleID        *uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod trade.PaymentMethod
	PaymentDate   time.Time
	Reference     string
	Notes         string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

// PaymentDetails is what every row produced by one recordPayment call shares
type PaymentDetails struct {
	TenantID      uuid.UUID
	CustomerID    uuid.UUID
	UserID        uuid.UUID
	PaymentMethod trade.PaymentMethod
	PaymentDate   time.Time
	Reference     string
	Notes         string
}

// Validate checks the shared payment fields
func (d PaymentDetails) Validate() error {
	if d.CustomerID == uuid.Nil {
		return shared.NewValidationError("customer_id", "customer is required")
	}
	if !d.PaymentMethod.CanSettle() {
		return shared.NewValidationError("payment_method", "payment method must be CASH, CARD or TRANSFER")
	}
	if len(d.Reference) > 100 {
		return shared.NewValidationError("reference", "reference cannot exceed 100 characters")
	}
	return nil
}

// NewCustomerPayment creates a ledger row for amount, optionally tied to a sale
func NewCustomerPayment(d PaymentDetails, saleID *uuid.UUID, amount decimal.Decimal) (*CustomerPayment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "payment amount must be greater than zero")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	paymentDate := d.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	p := &CustomerPayment{
		ID:            uuid.New(),
		TenantID:      d.TenantID,
		CustomerID:    d.CustomerID,
		SaleID:        saleID,
		Amount:        amount,
		PaymentMethod: d.PaymentMethod,
		PaymentDate:   paymentDate,
		Reference:     strings.TrimSpace(d.Reference),
		Notes:         d.Notes,
		CreatedAt:     time.Now(),
	}
	if d.UserID != uuid.Nil {
		userID := d.UserID
		p.CreatedBy = &userID
	}
	return p, nil
}

// IsAdvance reports whether the payment is not tied to any sale
func (p *CustomerPayment) IsAdvance() bool {
	return p.SaleID == nil
}

// SumPayments totals the amounts of payments
func SumPayments(payments []*CustomerPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
