package finance

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// AllocationTarget is an outstanding sale that can absorb part of a payment
type AllocationTarget struct {
	SaleID           uuid.UUID
	Folio            string
	RemainingBalance decimal.Decimal
	CreatedAt        time.Time
}

// Allocation is the share of a payment assigned to one sale
type Allocation struct {
	SaleID uuid.UUID
	Folio  string
	Amount decimal.Decimal
	// SettlesSale is true when the allocation brings the sale to zero
	SettlesSale bool
}

// AllocationResult is the outcome of spreading one payment
type AllocationResult struct {
	Allocations    []Allocation
	TotalAllocated decimal.Decimal
	// Unallocated is what is left after every target is exhausted; it becomes
	// an advance payment
	Unallocated decimal.Decimal
}

// HasUnallocated reports whether part of the payment is an advance
func (r *AllocationResult) HasUnallocated() bool {
	return r.Unallocated.IsPositive()
}

// FIFOAllocationStrategy pays the oldest outstanding sale first
type FIFOAllocationStrategy struct{}

// NewFIFOAllocationStrategy creates a new FIFO allocation strategy
func NewFIFOAllocationStrategy() *FIFOAllocationStrategy {
	return &FIFOAllocationStrategy{}
}

// Allocate walks targets by creation time (ties broken by id) and assigns
// min(remaining, sale balance) to each until the amount runs out.
func (s *FIFOAllocationStrategy) Allocate(amount decimal.Decimal, targets []AllocationTarget) (*AllocationResult, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount", "allocation amount must be greater than zero")
	}

	ordered := make([]AllocationTarget, len(targets))
	copy(ordered, targets)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].SaleID.String() < ordered[j].SaleID.String()
	})

	result := &AllocationResult{
		Allocations:    make([]Allocation, 0, len(ordered)),
		TotalAllocated: decimal.Zero,
	}
	remaining := amount
	for _, target := range ordered {
		if remaining.IsZero() {
			break
		}
		if !target.RemainingBalance.IsPositive() {
			continue
		}

		applied := decimal.Min(remaining, target.RemainingBalance)
		result.Allocations = append(result.Allocations, Allocation{
			SaleID:      target.SaleID,
			Folio:       target.Folio,
			Amount:      applied,
			SettlesSale: applied.Equal(target.RemainingBalance),
		})
		result.TotalAllocated = result.TotalAllocated.Add(applied)
		remaining = remaining.Sub(applied)
	}
	result.Unallocated = remaining
	return result, nil
}

// TargetsFromSales converts outstanding sales into allocation targets
func TargetsFromSales(sales []trade.Sale) []AllocationTarget {
	targets := make([]AllocationTarget, 0, len(sales))
	for _, s := range sales {
		targets = append(targets, AllocationTarget{
			SaleID:           s.ID,
			Folio:            s.Folio,
			RemainingBalance: s.RemainingBalance,
			CreatedAt:        s.CreatedAt,
		})
	}
	return targets
}
