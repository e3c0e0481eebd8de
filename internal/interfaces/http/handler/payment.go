package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/posledger/backend/internal/application/finance"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader lets a terminal retry a payment without double posting
const IdempotencyKeyHeader = "Idempotency-Key"

// PaymentRecorder records customer payments
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, tc shared.TenantContext, req financeapp.RecordPaymentRequest) ([]*finance.CustomerPayment, error)
}

// LedgerReader reads a customer's account
type LedgerReader interface {
	GetCustomerLedger(ctx context.Context, tc shared.TenantContext, customerID uuid.UUID) (*financeapp.CustomerLedgerResponse, error)
}

// CustomerAccountHandler serves payments and the ledger of one customer
type CustomerAccountHandler struct {
	BaseHandler
	payments PaymentRecorder
	ledger   LedgerReader
}

// NewCustomerAccountHandler creates a new CustomerAccountHandler
func NewCustomerAccountHandler(payments PaymentRecorder, ledger LedgerReader) *CustomerAccountHandler {
	return &CustomerAccountHandler{payments: payments, ledger: ledger}
}

// RecordPaymentRequest is the payment body. Without sale_id the amount is
// spread over the customer's outstanding sales, oldest first.
type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required,decimal_gt0"`
	PaymentMethod string          `json:"payment_method" binding:"required,oneof=CASH CARD TRANSFER"`
	SaleID        *string         `json:"sale_id" binding:"omitempty,uuid"`
	Reference     string          `json:"reference" binding:"max=100"`
	Notes         string          `json:"notes" binding:"max=500"`
	PaymentDate   *time.Time      `json:"payment_date"`
}

func (r RecordPaymentRequest) toCommand(customerID uuid.UUID, idempotencyKey string) financeapp.RecordPaymentRequest {
	var saleID *uuid.UUID
	if r.SaleID != nil {
		id := uuid.MustParse(*r.SaleID)
		saleID = &id
	}
	return financeapp.RecordPaymentRequest{
		CustomerID:     customerID,
		Amount:         r.Amount,
		PaymentMethod:  trade.PaymentMethod(r.PaymentMethod),
		Target:         finance.TargetFromOptionalSale(saleID),
		Reference:      r.Reference,
		Notes:          r.Notes,
		PaymentDate:    r.PaymentDate,
		IdempotencyKey: idempotencyKey,
	}
}

// RecordPayment godoc
// POST /customers/:id/payments
func (h *CustomerAccountHandler) RecordPayment(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	customerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payments, err := h.payments.RecordPayment(c.Request.Context(), tc,
		req.toCommand(customerID, c.GetHeader(IdempotencyKeyHeader)))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, financeapp.ToPaymentResponses(payments))
}

// GetLedger godoc
// GET /customers/:id/ledger
func (h *CustomerAccountHandler) GetLedger(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	customerID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	ledger, err := h.ledger.GetCustomerLedger(c.Request.Context(), tc, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}
