package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ==================== Sale DTOs ====================

// SaleItemInput is one requested line of a sale
type SaleItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

// ProcessSaleRequest represents a checkout submitted by a POS terminal
type ProcessSaleRequest struct {
	CustomerID    *uuid.UUID
	Items         []SaleItemInput
	PaymentMethod trade.PaymentMethod
	Notes         string
}

func (r ProcessSaleRequest) lines() []trade.SaleLine {
	lines := make([]trade.SaleLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, trade.SaleLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return lines
}

// ProcessSaleResult is returned for a committed sale
type ProcessSaleResult struct {
	SaleID        uuid.UUID           `json:"sale_id"`
	Folio         string              `json:"folio"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Tax           decimal.Decimal     `json:"tax"`
	Total         decimal.Decimal     `json:"total"`
	PaymentStatus trade.PaymentStatus `json:"payment_status"`
	DueDate       *time.Time          `json:"due_date,omitempty"`
}

// SaleItemResponse represents a sale line in API responses
type SaleItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleResponse represents a sale with its items in API responses
type SaleResponse struct {
	ID               uuid.UUID           `json:"id"`
	Folio            string              `json:"folio"`
	CustomerID       *uuid.UUID          `json:"customer_id,omitempty"`
	PaymentMethod    trade.PaymentMethod `json:"payment_method"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Tax              decimal.Decimal     `json:"tax"`
	Total            decimal.Decimal     `json:"total"`
	AmountPaid       decimal.Decimal     `json:"amount_paid"`
	RemainingBalance decimal.Decimal     `json:"remaining_balance"`
	PaymentStatus    trade.PaymentStatus `json:"payment_status"`
	DueDate          *time.Time          `json:"due_date,omitempty"`
	Notes            string              `json:"notes,omitempty"`
	CreatedBy        *uuid.UUID          `json:"created_by,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	Items            []SaleItemResponse  `json:"items"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	return SaleResponse{
		ID:               s.ID,
		Folio:            s.Folio,
		CustomerID:       s.CustomerID,
		PaymentMethod:    s.PaymentMethod,
		Subtotal:         s.Subtotal,
		Tax:              s.Tax,
		Total:            s.Total,
		AmountPaid:       s.AmountPaid,
		RemainingBalance: s.RemainingBalance,
		PaymentStatus:    s.PaymentStatus,
		DueDate:          s.DueDate,
		Notes:            s.Notes,
		CreatedBy:        s.CreatedBy,
		CreatedAt:        s.CreatedAt,
		Items:            items,
	}
}

func toProcessSaleResult(s *trade.Sale) *ProcessSaleResult {
	return &ProcessSaleResult{
		SaleID:        s.ID,
		Folio:         s.Folio,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Total:         s.Total,
		PaymentStatus: s.PaymentStatus,
		DueDate:       s.DueDate,
	}
}
