package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerPaymentRepository appends payment rows. Rows are never updated or deleted.
type CustomerPaymentRepository interface {
	Create(ctx context.Context, payments ...*CustomerPayment) error
	// FindRecentByCustomer returns the latest payments, newest first
	FindRecentByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, limit int) ([]CustomerPayment, error)
	// FindAllocationMismatches returns the CREDIT sales whose balances disagree
	// with the payment rows applied to them
	FindAllocationMismatches(ctx context.Context, tenantID uuid.UUID) ([]SaleAllocation, error)
}

// SaleAllocation puts a CREDIT sale's recorded balances next to the sum of
// the payment rows that reference it
type SaleAllocation struct {
	SaleID           uuid.UUID
	Total            decimal.Decimal
	AmountPaid       decimal.Decimal
	RemainingBalance decimal.Decimal
	Allocated        decimal.Decimal
}

// Consistent reports whether amountPaid equals the allocated payments and
// amountPaid + remainingBalance equals the total
func (a SaleAllocation) Consistent() bool {
	return a.Allocated.Equal(a.AmountPaid) && a.AmountPaid.Add(a.RemainingBalance).Equal(a.Total)
}
