package trade

import "github.com/shopspring/decimal"

// PaymentMethod is how a sale (or a later customer payment) is settled
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCredit   PaymentMethod = "CREDIT"
)

// IsValid checks if the method is one of the known payment methods
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCredit:
		return true
	}
	return false
}

// IsCredit reports whether the sale is billed to the customer's account
func (m PaymentMethod) IsCredit() bool {
	return m == PaymentMethodCredit
}

// CanSettle reports whether money can be received through this method.
// CREDIT defers payment and therefore cannot settle a balance.
func (m PaymentMethod) CanSettle() bool {
	return m.IsValid() && !m.IsCredit()
}

func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus is derived from a sale's balances
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING" // nothing paid yet
	PaymentStatusPartial PaymentStatus = "PARTIAL" // 0 < amountPaid < total
	PaymentStatusPaid    PaymentStatus = "PAID"    // remainingBalance == 0
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPartial, PaymentStatusPaid:
		return true
	}
	return false
}

// IsOutstanding returns true while a balance remains
func (s PaymentStatus) IsOutstanding() bool {
	return s == PaymentStatusPending || s == PaymentStatusPartial
}

func (s PaymentStatus) String() string {
	return string(s)
}

// OutstandingStatuses lists the statuses that still carry a balance
func OutstandingStatuses() []PaymentStatus {
	return []PaymentStatus{PaymentStatusPending, PaymentStatusPartial}
}

// DerivePaymentStatus computes the status implied by a sale's balances:
// PAID iff remaining is zero, PENDING iff nothing was paid, PARTIAL otherwise.
func DerivePaymentStatus(amountPaid, remaining decimal.Decimal) PaymentStatus {
	switch {
	case remaining.IsZero():
		return PaymentStatusPaid
	case amountPaid.IsZero():
		return PaymentStatusPending
	default:
		return PaymentStatusPartial
	}
}
