package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtDrift is a customer whose recorded debt differs from the sum of its
// outstanding CREDIT sale balances
type DebtDrift struct {
	CustomerID uuid.UUID
	Recorded   decimal.Decimal
	Computed   decimal.Decimal
}

// Difference returns recorded - computed
func (d DebtDrift) Difference() decimal.Decimal {
	return d.Recorded.Sub(d.Computed)
}

// CustomerRepository is the debt aggregator's persistence port
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
	// IncreaseDebt re-checks current_debt + amount <= credit_limit inside the
	// same conditional update that increments it. Rejections return
	// shared.CreditLimitExceededError with the balance observed afterwards.
	IncreaseDebt(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error
	// DecreaseDebt subtracts amount, flooring at zero
	DecreaseDebt(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal) error
	// FindWithDebt lists customers with current_debt > 0
	FindWithDebt(ctx context.Context, tenantID uuid.UUID) ([]Customer, error)

	// FindDebtDrift compares recorded debt with outstanding CREDIT sale balances
	FindDebtDrift(ctx context.Context, tenantID uuid.UUID) ([]DebtDrift, error)
	// CorrectDebt sets current_debt to corrected only if it still equals expected.
	// Returns false when a concurrent writer changed the row first.
	CorrectDebt(ctx context.Context, tenantID, customerID uuid.UUID, expected, corrected decimal.Decimal) (bool, error)
	// ListTenantIDs returns every tenant that owns at least one customer
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}
