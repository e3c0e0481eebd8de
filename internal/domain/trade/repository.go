package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRepository persists sales and applies payments to their balances
type SaleRepository interface {
	// Create inserts the sale and its items
	Create(ctx context.Context, sale *Sale) error
	// FindByIDForTenant loads a sale with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)
	// FindOutstandingByCustomer lists the customer's CREDIT sales in PENDING or
	// PARTIAL, oldest first (created_at, then id)
	FindOutstandingByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Sale, error)
	// FindOutstandingCredit lists every outstanding CREDIT sale of the tenant
	FindOutstandingCredit(ctx context.Context, tenantID uuid.UUID) ([]Sale, error)
	// ApplyPayment adds amount to amount_paid and subtracts it from
	// remaining_balance in one conditional update guarded by
	// remaining_balance >= amount. Zero rows affected yields
	// shared.ConcurrencyConflictError.
	ApplyPayment(ctx context.Context, tenantID, saleID uuid.UUID, amount decimal.Decimal) error
}
