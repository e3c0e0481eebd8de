package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeSaleCompleted = "SaleCompleted"
	AggregateTypeSale      = "Sale"
)

// SaleCompletedEvent is raised when a sale commits. Notification and
// receipt collaborators consume it from the outbox.
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID           uuid.UUID       `json:"sale_id"`
	Folio            string          `json:"folio"`
	CustomerID       *uuid.UUID      `json:"customer_id,omitempty"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	ItemCount        int             `json:"item_count"`
}

// NewSaleCompletedEvent creates a new SaleCompletedEvent
func NewSaleCompletedEvent(s *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:           s.ID,
		Folio:            s.Folio,
		CustomerID:       s.CustomerID,
		PaymentMethod:    s.PaymentMethod,
		Total:            s.Total,
		RemainingBalance: s.RemainingBalance,
		DueDate:          s.DueDate,
		ItemCount:        len(s.Items),
	}
}
