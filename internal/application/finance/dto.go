package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest is an incoming customer payment
type RecordPaymentRequest struct {
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod trade.PaymentMethod
	// Target is TargetSale(id) or TargetGeneral(); nil means general
	Target      finance.PaymentTarget
	Reference   string
	Notes       string
	PaymentDate *time.Time
	// IdempotencyKey is optional; a repeated key within the TTL is rejected
	IdempotencyKey string
}

// PaymentResponse is one ledger row created by a payment
type PaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	SaleID        *uuid.UUID      `json:"sale_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method"`
	PaymentDate   time.Time       `json:"payment_date"`
	Reference     string          `json:"reference,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	IsAdvance     bool            `json:"is_advance"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a payment row to its response
func ToPaymentResponse(p *finance.CustomerPayment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		CustomerID:    p.CustomerID,
		SaleID:        p.SaleID,
		Amount:        p.Amount,
		PaymentMethod: string(p.PaymentMethod),
		PaymentDate:   p.PaymentDate,
		Reference:     p.Reference,
		Notes:         p.Notes,
		IsAdvance:     p.IsAdvance(),
		CreatedAt:     p.CreatedAt,
	}
}

// ToPaymentResponses converts payment rows keeping their order
func ToPaymentResponses(payments []*finance.CustomerPayment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, ToPaymentResponse(p))
	}
	return out
}

// OutstandingSaleResponse is an unpaid credit sale in a customer ledger
type OutstandingSaleResponse struct {
	SaleID           uuid.UUID       `json:"sale_id"`
	Folio            string          `json:"folio"`
	Total            decimal.Decimal `json:"total"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	PaymentStatus    string          `json:"payment_status"`
	DueDate          *time.Time      `json:"due_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CustomerLedgerResponse is the credit position of one customer
type CustomerLedgerResponse struct {
	CustomerID       uuid.UUID                 `json:"customer_id"`
	CustomerName     string                    `json:"customer_name"`
	CreditLimit      decimal.Decimal           `json:"credit_limit"`
	CurrentDebt      decimal.Decimal           `json:"current_debt"`
	AvailableCredit  decimal.Decimal           `json:"available_credit"`
	OutstandingSales []OutstandingSaleResponse `json:"outstanding_sales"`
	RecentPayments   []PaymentResponse         `json:"recent_payments"`
}

// AlertResponse is a derived alert
type AlertResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Priority   string    `json:"priority"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"`

	CustomerID       *uuid.UUID       `json:"customer_id,omitempty"`
	Folio            string           `json:"folio,omitempty"`
	DueDate          *time.Time       `json:"due_date,omitempty"`
	DaysOverdue      *int             `json:"days_overdue,omitempty"`
	DaysUntilDue     *int             `json:"days_until_due,omitempty"`
	RemainingBalance *decimal.Decimal `json:"remaining_balance,omitempty"`

	CreditLimit    *decimal.Decimal `json:"credit_limit,omitempty"`
	CurrentDebt    *decimal.Decimal `json:"current_debt,omitempty"`
	UsagePercent   *decimal.Decimal `json:"usage_percent,omitempty"`
	ExceededAmount *decimal.Decimal `json:"exceeded_amount,omitempty"`

	ProductCode string `json:"product_code,omitempty"`
	Stock       *int   `json:"stock,omitempty"`
	MinStock    *int   `json:"min_stock,omitempty"`
}

// ToAlertResponse converts an alert, emitting only the fields of its family
func ToAlertResponse(a finance.Alert) AlertResponse {
	r := AlertResponse{
		ID:         a.ID,
		Type:       string(a.Type),
		Priority:   string(a.Priority),
		Title:      a.Title,
		Message:    a.Message,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
	}
	switch a.Type {
	case finance.AlertTypeOverdue, finance.AlertTypeDueSoon:
		r.CustomerID = a.CustomerID
		r.Folio = a.Folio
		r.DueDate = a.DueDate
		r.RemainingBalance = &a.RemainingBalance
		if a.Type == finance.AlertTypeOverdue {
			r.DaysOverdue = &a.DaysOverdue
		} else {
			r.DaysUntilDue = &a.DaysUntilDue
		}
	case finance.AlertTypeCreditLimit:
		r.CustomerID = a.CustomerID
		r.CreditLimit = &a.CreditLimit
		r.CurrentDebt = &a.CurrentDebt
		r.UsagePercent = &a.UsagePercent
		if a.ExceededAmount.IsPositive() {
			r.ExceededAmount = &a.ExceededAmount
		}
	case finance.AlertTypeLowStock:
		r.ProductCode = a.ProductCode
		r.Stock = &a.Stock
		r.MinStock = &a.MinStock
	}
	return r
}

// ToAlertResponses converts alerts keeping their order
func ToAlertResponses(alerts []finance.Alert) []AlertResponse {
	out := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, ToAlertResponse(a))
	}
	return out
}

// ReconciliationReport summarizes a debt reconciliation run
type ReconciliationReport struct {
	TenantsScanned     int `json:"tenants_scanned"`
	CustomersCorrected int `json:"customers_corrected"`
	// Skipped counts customers whose debt changed between reading and correcting
	Skipped int `json:"skipped"`
	// AllocationMismatches counts credit sales whose amount_paid differs from
	// the payments applied to them
	AllocationMismatches int `json:"allocation_mismatches"`
}

func (r *ReconciliationReport) add(other *ReconciliationReport) {
	r.TenantsScanned += other.TenantsScanned
	r.CustomersCorrected += other.CustomersCorrected
	r.Skipped += other.Skipped
	r.AllocationMismatches += other.AllocationMismatches
}
