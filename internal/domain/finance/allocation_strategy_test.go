package finance

import (
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

var baseTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func target(balance string, age time.Duration) AllocationTarget {
	return AllocationTarget{
		SaleID:           uuid.New(),
		Folio:            "V-" + balance,
		RemainingBalance: dec(balance),
		CreatedAt:        baseTime.Add(age),
	}
}

func TestFIFOAllocation_OldestFirst(t *testing.T) {
	older := target("50", 0)
	newer := target("100", time.Hour)

	// deliberately unordered input
	result, err := NewFIFOAllocationStrategy().Allocate(dec("120"), []AllocationTarget{newer, older})
	require.NoError(t, err)

	require.Len(t, result.Allocations, 2)
	assert.Equal(t, older.SaleID, result.Allocations[0].SaleID)
	assert.True(t, result.Allocations[0].Amount.Equal(dec("50")))
	assert.True(t, result.Allocations[0].SettlesSale)
	assert.Equal(t, newer.SaleID, result.Allocations[1].SaleID)
	assert.True(t, result.Allocations[1].Amount.Equal(dec("70")))
	assert.False(t, result.Allocations[1].SettlesSale)
	assert.True(t, result.TotalAllocated.Equal(dec("120")))
	assert.True(t, result.Unallocated.IsZero())
	assert.False(t, result.HasUnallocated())
}

func TestFIFOAllocation_OverflowBecomesUnallocated(t *testing.T) {
	targets := []AllocationTarget{target("50", 0), target("70", time.Minute)}

	result, err := NewFIFOAllocationStrategy().Allocate(dec("500"), targets)
	require.NoError(t, err)

	assert.Len(t, result.Allocations, 2)
	assert.True(t, result.TotalAllocated.Equal(dec("120")))
	assert.True(t, result.Unallocated.Equal(dec("380")))
	assert.True(t, result.HasUnallocated())
}

func TestFIFOAllocation_NoTargets(t *testing.T) {
	result, err := NewFIFOAllocationStrategy().Allocate(dec("75.5"), nil)
	require.NoError(t, err)

	assert.Empty(t, result.Allocations)
	assert.True(t, result.TotalAllocated.IsZero())
	assert.True(t, result.Unallocated.Equal(dec("75.5")))
}

func TestFIFOAllocation_StopsWhenExhausted(t *testing.T) {
	targets := []AllocationTarget{target("30", 0), target("40", time.Minute), target("50", 2*time.Minute)}

	result, err := NewFIFOAllocationStrategy().Allocate(dec("30"), targets)
	require.NoError(t, err)

	require.Len(t, result.Allocations, 1)
	assert.Equal(t, targets[0].SaleID, result.Allocations[0].SaleID)
	assert.True(t, result.Allocations[0].SettlesSale)
}

func TestFIFOAllocation_SkipsSettledTargets(t *testing.T) {
	settled := target("0", 0)
	open := target("25", time.Minute)

	result, err := NewFIFOAllocationStrategy().Allocate(dec("10"), []AllocationTarget{settled, open})
	require.NoError(t, err)

	require.Len(t, result.Allocations, 1)
	assert.Equal(t, open.SaleID, result.Allocations[0].SaleID)
}

func TestFIFOAllocation_TieBreaksOnID(t *testing.T) {
	a := target("10", 0)
	b := target("10", 0)
	first, second := a, b
	if b.SaleID.String() < a.SaleID.String() {
		first, second = b, a
	}

	result, err := NewFIFOAllocationStrategy().Allocate(dec("15"), []AllocationTarget{second, first})
	require.NoError(t, err)

	require.Len(t, result.Allocations, 2)
	assert.Equal(t, first.SaleID, result.Allocations[0].SaleID)
	assert.True(t, result.Allocations[1].Amount.Equal(dec("5")))
}

func TestFIFOAllocation_RejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-1"} {
		_, err := NewFIFOAllocationStrategy().Allocate(dec(amount), nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	}
}

func TestPaymentTarget_FromOptionalSale(t *testing.T) {
	saleID := uuid.New()
	nilID := uuid.Nil

	assert.Equal(t, GeneralPayment{}, TargetFromOptionalSale(nil))
	assert.Equal(t, GeneralPayment{}, TargetFromOptionalSale(&nilID))
	assert.Equal(t, TargetedPayment{SaleID: saleID}, TargetFromOptionalSale(&saleID))
	assert.Equal(t, "general", TargetGeneral().String())
	assert.Equal(t, "targeted:"+saleID.String(), TargetSale(saleID).String())
}
