package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

const (
	EventTypeCustomerPaymentRecorded = "CustomerPaymentRecorded"
	AggregateTypeCustomer            = "Customer"
)

// PaymentAllocationLine is one row created by a payment, as published
type PaymentAllocationLine struct {
	PaymentID uuid.UUID       `json:"payment_id"`
	SaleID    *uuid.UUID      `json:"sale_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// CustomerPaymentRecordedEvent is raised once per recorded payment, however
// many ledger rows it fanned out into
type CustomerPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	CustomerID    uuid.UUID               `json:"customer_id"`
	Amount        decimal.Decimal         `json:"amount"`
	PaymentMethod trade.PaymentMethod     `json:"payment_method"`
	Target        string                  `json:"target"`
	PaymentDate   time.Time               `json:"payment_date"`
	Lines         []PaymentAllocationLine `json:"lines"`
}

// NewCustomerPaymentRecordedEvent creates the event for the rows of one payment
func NewCustomerPaymentRecordedEvent(tenantID, customerID uuid.UUID, target PaymentTarget, payments []*CustomerPayment) *CustomerPaymentRecordedEvent {
	evt := &CustomerPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerPaymentRecorded, AggregateTypeCustomer, customerID, tenantID),
		CustomerID:      customerID,
		Amount:          SumPayments(payments),
		Target:          target.String(),
		Lines:           make([]PaymentAllocationLine, 0, len(payments)),
	}
	for _, p := range payments {
		evt.Lines = append(evt.Lines, PaymentAllocationLine{PaymentID: p.ID, SaleID: p.SaleID, Amount: p.Amount})
	}
	if len(payments) > 0 {
		evt.PaymentMethod = payments[0].PaymentMethod
		evt.PaymentDate = payments[0].PaymentDate
	}
	return evt
}
