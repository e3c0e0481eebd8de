package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Customer is a buyer that may purchase on credit up to CreditLimit.
// CurrentDebt is an incrementally maintained aggregate of the customer's
// outstanding CREDIT sales; the reconciliation job corrects any drift.
type Customer struct {
	shared.TenantAggregateRoot
	Name        string
	CreditLimit decimal.Decimal
	CurrentDebt decimal.Decimal
	IsActive    bool
}

// NewCustomer creates an active customer with no debt
func NewCustomer(tenantID uuid.UUID, name string, creditLimit decimal.Decimal) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "customer name cannot be empty")
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewValidationError("credit_limit", "credit limit cannot be negative")
	}
	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		CreditLimit:         creditLimit,
		CurrentDebt:         decimal.Zero,
		IsActive:            true,
	}, nil
}

// AvailableCredit returns creditLimit - currentDebt. It is negative when the
// customer is over the limit.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.CurrentDebt)
}

// CreditUsagePercent returns currentDebt / creditLimit * 100.
// A customer with debt and a zero limit is treated as fully used.
func (c *Customer) CreditUsagePercent() decimal.Decimal {
	if c.CreditLimit.IsZero() {
		if c.CurrentDebt.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return c.CurrentDebt.Div(c.CreditLimit).Mul(hundred)
}

// CheckCredit verifies that amount fits in the available credit
func (c *Customer) CheckCredit(amount decimal.Decimal) error {
	if c.CurrentDebt.Add(amount).GreaterThan(c.CreditLimit) {
		return &shared.CreditLimitExceededError{
			CustomerID:  c.ID,
			Limit:       c.CreditLimit,
			CurrentDebt: c.CurrentDebt,
			Attempted:   amount,
		}
	}
	return nil
}

// IncreaseDebt mirrors the guarded debt increment on the in-memory copy
func (c *Customer) IncreaseDebt(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "amount must be greater than zero")
	}
	if err := c.CheckCredit(amount); err != nil {
		return err
	}
	c.CurrentDebt = c.CurrentDebt.Add(amount)
	c.IncrementVersion()
	c.Touch()
	return nil
}

// DecreaseDebt lowers the debt, flooring at zero
func (c *Customer) DecreaseDebt(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("amount", "amount must be greater than zero")
	}
	c.CurrentDebt = decimal.Max(c.CurrentDebt.Sub(amount), decimal.Zero)
	c.IncrementVersion()
	c.Touch()
	return nil
}

// Deactivate blocks new credit sales for the customer
func (c *Customer) Deactivate() {
	c.IsActive = false
	c.IncrementVersion()
	c.Touch()
}
