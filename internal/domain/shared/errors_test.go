package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "customer not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
}

func TestTypedErrors_UnwrapToSentinel(t *testing.T) {
	productID := uuid.New()
	tests := []struct {
		name     string
		err      error
		sentinel *DomainError
	}{
		{"validation", NewValidationError("items", "must not be empty"), ErrInvalidInput},
		{"not found", NewNotFoundError("product"), ErrNotFound},
		{"stock", &InsufficientStockError{ProductID: productID, Available: 3, Requested: 5}, ErrInsufficientStock},
		{"credit", &CreditLimitExceededError{Limit: decimal.NewFromInt(1000)}, ErrCreditLimitExceeded},
		{"excess", &ExcessPaymentError{RemainingBalance: decimal.NewFromInt(10), Amount: decimal.NewFromInt(20)}, ErrExcessPayment},
		{"conflict", NewConcurrencyConflictError("sale", uuid.New()), ErrConcurrencyConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("processing: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)

			var domainErr *DomainError
			require.True(t, errors.As(wrapped, &domainErr))
			assert.Equal(t, tt.sentinel.Code, domainErr.Code)
		})
	}
}

func TestInsufficientStockError_AsExposesFields(t *testing.T) {
	productID := uuid.New()
	err := fmt.Errorf("sale: %w", &InsufficientStockError{ProductID: productID, Available: 3, Requested: 5})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, map[string]any{
		"product_id": productID.String(),
		"available":  3,
		"requested":  5,
	}, stockErr.Details())
}

func TestNotFoundError_DoesNotLeakIdentifiers(t *testing.T) {
	err := NewNotFoundError("customer")
	assert.Equal(t, "customer not found", err.Error())
}

func TestTenantContext_Validate(t *testing.T) {
	assert.Error(t, TenantContext{}.Validate())
	assert.NoError(t, TenantContext{TenantID: uuid.New()}.Validate())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "INSUFFICIENT_STOCK", ErrorCode(fmt.Errorf("sale: %w", &InsufficientStockError{})))
	assert.Equal(t, "DUPLICATE_REQUEST", ErrorCode(ErrDuplicateRequest))
	assert.Equal(t, "INVALID_STATE", ErrorCode(NewDomainError("INVALID_STATE", "customer is inactive")))
	assert.Empty(t, ErrorCode(errors.New("connection refused")))
	assert.Empty(t, ErrorCode(nil))
}
