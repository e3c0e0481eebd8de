package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SaleServiceConfig holds the ledger settings used at checkout
type SaleServiceConfig struct {
	TaxRate     decimal.Decimal
	CreditDays  int
	FolioPrefix string
}

// SaleService records POS sales: stock, customer debt, the sale itself and
// its event all commit in one transaction or not at all
type SaleService struct {
	txManager shared.TransactionManager
	products  inventory.ProductRepository
	customers partner.CustomerRepository
	sales     trade.SaleRepository
	folios    trade.FolioSequencer
	events    shared.OutboxEventSaver
	config    SaleServiceConfig
	logger    *zap.Logger
	metrics   *telemetry.LedgerMetrics
	now       func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(
	txManager shared.TransactionManager,
	products inventory.ProductRepository,
	customers partner.CustomerRepository,
	sales trade.SaleRepository,
	folios trade.FolioSequencer,
	events shared.OutboxEventSaver,
	config SaleServiceConfig,
	logger *zap.Logger,
) *SaleService {
	if config.CreditDays <= 0 {
		config.CreditDays = trade.DefaultCreditDays
	}
	if config.FolioPrefix == "" {
		config.FolioPrefix = trade.DefaultFolioPrefix
	}
	return &SaleService{
		txManager: txManager,
		products:  products,
		customers: customers,
		sales:     sales,
		folios:    folios,
		events:    events,
		config:    config,
		logger:    logger,
		now:       time.Now,
	}
}

// SetMetrics attaches business metrics
func (s *SaleService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// ProcessSale validates the request, then inside one transaction decrements
// stock, charges customer credit for CREDIT sales, allocates the folio and
// persists the sale with its SaleCompleted event.
func (s *SaleService) ProcessSale(ctx context.Context, tc shared.TenantContext, req ProcessSaleRequest) (*ProcessSaleResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "process")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tc.TenantID,
		telemetry.SpanAttrPaymentMethod, string(req.PaymentMethod),
		telemetry.SpanAttrLineCount, len(req.Items),
	)

	lines := req.lines()
	if err := s.validate(tc, req, lines); err != nil {
		return nil, s.reject(ctx, span, err)
	}

	var sale *trade.Sale
	err := s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.reserveStock(ctx, tc.TenantID, lines); err != nil {
			return err
		}

		totals := trade.CalculateTotals(lines, s.config.TaxRate)
		if err := s.chargeCustomer(ctx, tc.TenantID, req, totals.Total); err != nil {
			return err
		}

		now := s.now()
		seq, err := s.folios.NextFolioSequence(ctx, tc.TenantID, trade.FolioDay(now))
		if err != nil {
			return err
		}
		if err := trade.CheckFolioSequence(seq); err != nil {
			return err
		}

		sale, err = trade.NewSale(trade.NewSaleParams{
			TenantID:      tc.TenantID,
			UserID:        tc.UserID,
			CustomerID:    req.CustomerID,
			Folio:         trade.FormatFolio(s.config.FolioPrefix, now, seq),
			PaymentMethod: req.PaymentMethod,
			Lines:         lines,
			TaxRate:       s.config.TaxRate,
			CreditDays:    s.config.CreditDays,
			Notes:         req.Notes,
			Now:           now,
		})
		if err != nil {
			return err
		}

		if err := s.sales.Create(ctx, sale); err != nil {
			return err
		}
		return s.events.SaveEvents(ctx, sale.GetDomainEvents()...)
	})
	if err != nil {
		return nil, s.reject(ctx, span, err)
	}
	sale.ClearDomainEvents()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, sale.ID,
		telemetry.SpanAttrFolio, sale.Folio,
		telemetry.SpanAttrAmount, sale.Total,
	)
	telemetry.SetOK(span)
	s.metrics.RecordSale(ctx, tc.TenantID, string(sale.PaymentMethod), sale.Total)

	logger.Enrich(ctx, s.logger).Info("sale processed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("folio", sale.Folio),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("total", sale.Total.String()),
		zap.String("payment_status", string(sale.PaymentStatus)),
	)

	return toProcessSaleResult(sale), nil
}

func (s *SaleService) validate(tc shared.TenantContext, req ProcessSaleRequest, lines []trade.SaleLine) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	if err := trade.ValidateLines(lines); err != nil {
		return err
	}
	if !req.PaymentMethod.IsValid() {
		return shared.NewValidationError("payment_method", "payment method must be CASH, CARD, TRANSFER or CREDIT")
	}
	if req.CustomerID != nil && *req.CustomerID == uuid.Nil {
		return shared.NewValidationError("customer_id", "customer id is invalid")
	}
	if req.PaymentMethod.IsCredit() && req.CustomerID == nil {
		return shared.NewValidationError("customer_id", "credit sales require a customer")
	}
	if !trade.CalculateTotals(lines, s.config.TaxRate).Total.IsPositive() {
		return shared.NewValidationError("items", "sale total must be greater than zero")
	}
	return nil
}

// reserveStock decrements every product once by its merged quantity.
// Inactive products cannot be sold and read as not found.
func (s *SaleService) reserveStock(ctx context.Context, tenantID uuid.UUID, lines []trade.SaleLine) error {
	quantities, order, err := trade.QuantitiesByProduct(lines)
	if err != nil {
		return err
	}

	products, err := s.products.FindByIDsForTenant(ctx, tenantID, order)
	if err != nil {
		return err
	}
	active := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		active[p.ID] = p.IsActive
	}

	for _, productID := range order {
		if !active[productID] {
			return shared.NewNotFoundError("product")
		}
	}
	for _, productID := range order {
		if err := s.products.DecrementStock(ctx, tenantID, productID, quantities[productID]); err != nil {
			return err
		}
	}
	return nil
}

// chargeCustomer checks the customer and, for CREDIT sales, raises its debt
// under the credit limit guard
func (s *SaleService) chargeCustomer(ctx context.Context, tenantID uuid.UUID, req ProcessSaleRequest, total decimal.Decimal) error {
	if req.CustomerID == nil {
		return nil
	}
	customer, err := s.customers.FindByIDForTenant(ctx, tenantID, *req.CustomerID)
	if err != nil {
		return err
	}
	if !req.PaymentMethod.IsCredit() {
		return nil
	}
	if !customer.IsActive {
		return fmt.Errorf("%w: inactive customers cannot buy on credit", shared.ErrInvalidState)
	}
	return s.customers.IncreaseDebt(ctx, tenantID, customer.ID, total)
}

// reject records a failed sale and returns err unchanged
func (s *SaleService) reject(ctx context.Context, span trace.Span, err error) error {
	telemetry.RecordError(span, err)

	code := shared.ErrorCode(err)
	if code == "" {
		logger.Enrich(ctx, s.logger).Error("sale failed", zap.Error(err))
		return err
	}
	s.metrics.RecordRejection(ctx, "process_sale", code)
	logger.Enrich(ctx, s.logger).Warn("sale rejected",
		zap.String("code", code),
		zap.Error(err),
	)
	return err
}

// GetSale returns a sale with its items
func (s *SaleService) GetSale(ctx context.Context, tc shared.TenantContext, saleID uuid.UUID) (*SaleResponse, error) {
	if err := tc.Validate(); err != nil {
		return nil, err
	}
	sale, err := s.sales.FindByIDForTenant(ctx, tc.TenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}
