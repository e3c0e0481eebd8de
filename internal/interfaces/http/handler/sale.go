package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	tradeapp "github.com/posledger/backend/internal/application/trade"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleProcessor is the part of the sale service the HTTP layer needs
type SaleProcessor interface {
	ProcessSale(ctx context.Context, tc shared.TenantContext, req tradeapp.ProcessSaleRequest) (*tradeapp.ProcessSaleResult, error)
	GetSale(ctx context.Context, tc shared.TenantContext, saleID uuid.UUID) (*tradeapp.SaleResponse, error)
}

// SaleHandler handles POS checkout endpoints
type SaleHandler struct {
	BaseHandler
	sales SaleProcessor
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales SaleProcessor) *SaleHandler {
	return &SaleHandler{sales: sales}
}

// SaleItemRequest is one line of a checkout
type SaleItemRequest struct {
	ProductID string          `json:"product_id" binding:"required,uuid"`
	Quantity  int             `json:"quantity" binding:"required,gt=0,lte=2147483647"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required,decimal_gte0"`
}

// ProcessSaleRequest is the checkout body
type ProcessSaleRequest struct {
	CustomerID    *string           `json:"customer_id" binding:"omitempty,uuid"`
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" binding:"required,oneof=CASH CARD TRANSFER CREDIT"`
	Notes         string            `json:"notes" binding:"max=500"`
}

func (r ProcessSaleRequest) toCommand() tradeapp.ProcessSaleRequest {
	cmd := tradeapp.ProcessSaleRequest{
		PaymentMethod: trade.PaymentMethod(r.PaymentMethod),
		Notes:         r.Notes,
		Items:         make([]tradeapp.SaleItemInput, 0, len(r.Items)),
	}
	if r.CustomerID != nil {
		id := uuid.MustParse(*r.CustomerID)
		cmd.CustomerID = &id
	}
	for _, item := range r.Items {
		cmd.Items = append(cmd.Items, tradeapp.SaleItemInput{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return cmd
}

// ProcessSale godoc
// POST /sales
func (h *SaleHandler) ProcessSale(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	var req ProcessSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.sales.ProcessSale(c.Request.Context(), tc, req.toCommand())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetSale godoc
// GET /sales/:id
func (h *SaleHandler) GetSale(c *gin.Context) {
	tc, ok := h.tenantContext(c)
	if !ok {
		return
	}
	saleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetSale(c.Request.Context(), tc, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}
