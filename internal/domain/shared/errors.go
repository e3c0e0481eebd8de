package shared

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so an error built with
// NewDomainError("NOT_FOUND", ...) satisfies errors.Is(err, ErrNotFound).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrCreditLimitExceeded = NewDomainError("CREDIT_LIMIT_EXCEEDED", "Credit limit exceeded")
	ErrExcessPayment       = NewDomainError("EXCESS_PAYMENT", "Payment exceeds remaining balance")
	ErrDuplicateRequest    = NewDomainError("DUPLICATE_REQUEST", "Request has already been submitted")
)

// DetailedError is implemented by errors that carry structured fields for the caller.
type DetailedError interface {
	error
	Details() map[string]any
}

// ValidationError reports malformed input. It is raised before any transaction opens.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func (e *ValidationError) Details() map[string]any {
	if e.Field == "" {
		return nil
	}
	return map[string]any{"field": e.Field}
}

// NotFoundError never says whether the row is missing or owned by another tenant.
type NotFoundError struct {
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError is returned when a conditional stock decrement matched no row
// because the product holds fewer units than requested.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

func (e *InsufficientStockError) Details() map[string]any {
	return map[string]any{
		"product_id": e.ProductID.String(),
		"available":  e.Available,
		"requested":  e.Requested,
	}
}

// CreditLimitExceededError carries the customer balance observed when the guarded
// debt increment was rejected.
type CreditLimitExceededError struct {
	CustomerID  uuid.UUID
	Limit       decimal.Decimal
	CurrentDebt decimal.Decimal
	Attempted   decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded: limit %s, current debt %s, attempted %s",
		e.Limit.StringFixed(2), e.CurrentDebt.StringFixed(2), e.Attempted.StringFixed(2))
}

func (e *CreditLimitExceededError) Unwrap() error { return ErrCreditLimitExceeded }

func (e *CreditLimitExceededError) Details() map[string]any {
	return map[string]any{
		"limit":        e.Limit.String(),
		"current_debt": e.CurrentDebt.String(),
		"attempted":    e.Attempted.String(),
	}
}

// ExcessPaymentError is raised by targeted payments larger than the sale balance.
type ExcessPaymentError struct {
	SaleID           uuid.UUID
	RemainingBalance decimal.Decimal
	Amount           decimal.Decimal
}

func (e *ExcessPaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance %s",
		e.Amount.StringFixed(2), e.RemainingBalance.StringFixed(2))
}

func (e *ExcessPaymentError) Unwrap() error { return ErrExcessPayment }

func (e *ExcessPaymentError) Details() map[string]any {
	return map[string]any{
		"sale_id":           e.SaleID.String(),
		"remaining_balance": e.RemainingBalance.String(),
		"amount":            e.Amount.String(),
	}
}

// ConcurrencyConflictError means an atomic conditional update affected zero rows
// because another writer changed the row first. Callers may resubmit.
type ConcurrencyConflictError struct {
	Resource string
	ID       uuid.UUID
}

func NewConcurrencyConflictError(resource string, id uuid.UUID) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{Resource: resource, ID: id}
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %s was modified by another process", e.Resource, e.ID)
}

func (e *ConcurrencyConflictError) Unwrap() error { return ErrConcurrencyConflict }

// ErrorCode returns the domain error code carried by err, or "" for
// infrastructure errors.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
