package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCustomer(t *testing.T, limit, debt int64) *Customer {
	t.Helper()
	c, err := NewCustomer(uuid.New(), "Abarrotes Lupita", decimal.NewFromInt(limit))
	require.NoError(t, err)
	c.CurrentDebt = decimal.NewFromInt(debt)
	return c
}

func TestNewCustomer(t *testing.T) {
	t.Run("creates active customer without debt", func(t *testing.T) {
		c, err := NewCustomer(uuid.New(), "Abarrotes Lupita", decimal.NewFromInt(1000))

		require.NoError(t, err)
		assert.True(t, c.IsActive)
		assert.True(t, c.CurrentDebt.IsZero())
		assert.True(t, c.AvailableCredit().Equal(decimal.NewFromInt(1000)))
	})

	t.Run("rejects negative credit limit", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), "X", decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewCustomer(uuid.New(), "  ", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestCustomer_IncreaseDebt(t *testing.T) {
	t.Run("rejects amount beyond the limit", func(t *testing.T) {
		c := newTestCustomer(t, 1000, 950)

		err := c.IncreaseDebt(decimal.NewFromInt(100))

		var creditErr *shared.CreditLimitExceededError
		require.ErrorAs(t, err, &creditErr)
		assert.True(t, creditErr.Limit.Equal(decimal.NewFromInt(1000)))
		assert.True(t, creditErr.CurrentDebt.Equal(decimal.NewFromInt(950)))
		assert.True(t, creditErr.Attempted.Equal(decimal.NewFromInt(100)))
		assert.True(t, c.CurrentDebt.Equal(decimal.NewFromInt(950)))
	})

	t.Run("allows reaching the limit exactly", func(t *testing.T) {
		c := newTestCustomer(t, 1000, 950)

		require.NoError(t, c.IncreaseDebt(decimal.NewFromInt(50)))
		assert.True(t, c.CurrentDebt.Equal(decimal.NewFromInt(1000)))
		assert.True(t, c.AvailableCredit().IsZero())
	})
}

func TestCustomer_DecreaseDebt(t *testing.T) {
	t.Run("floors at zero", func(t *testing.T) {
		c := newTestCustomer(t, 1000, 120)

		require.NoError(t, c.DecreaseDebt(decimal.NewFromInt(500)))
		assert.True(t, c.CurrentDebt.IsZero())
	})

	t.Run("partial decrease", func(t *testing.T) {
		c := newTestCustomer(t, 1000, 120)

		require.NoError(t, c.DecreaseDebt(decimal.NewFromInt(20)))
		assert.True(t, c.CurrentDebt.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		c := newTestCustomer(t, 1000, 120)
		assert.ErrorIs(t, c.DecreaseDebt(decimal.Zero), shared.ErrInvalidInput)
	})
}

func TestCustomer_CreditUsagePercent(t *testing.T) {
	tests := []struct {
		name  string
		limit int64
		debt  int64
		want  int64
	}{
		{"half used", 1000, 500, 50},
		{"at limit", 1000, 1000, 100},
		{"over limit", 1000, 1500, 150},
		{"zero limit with debt", 0, 10, 100},
		{"zero limit without debt", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCustomer(t, tt.limit, tt.debt)
			assert.True(t, c.CreditUsagePercent().Equal(decimal.NewFromInt(tt.want)),
				"got %s", c.CreditUsagePercent())
		})
	}
}
