package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/logger"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PaymentService records customer payments against credit sales
type PaymentService struct {
	txManager shared.TransactionManager
	customers partner.CustomerRepository
	sales     trade.SaleRepository
	payments  finance.CustomerPaymentRepository
	events    shared.OutboxEventSaver
	allocator *finance.FIFOAllocationStrategy
	logger    *zap.Logger
	metrics   *telemetry.LedgerMetrics
	now       func() time.Time

	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	txManager shared.TransactionManager,
	customers partner.CustomerRepository,
	sales trade.SaleRepository,
	payments finance.CustomerPaymentRepository,
	events shared.OutboxEventSaver,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		txManager: txManager,
		customers: customers,
		sales:     sales,
		payments:  payments,
		events:    events,
		allocator: finance.NewFIFOAllocationStrategy(),
		logger:    logger,
		now:       time.Now,
	}
}

// SetMetrics attaches business metrics
func (s *PaymentService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// SetIdempotencyStore enables Idempotency-Key handling
func (s *PaymentService) SetIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	s.idempotency = store
	s.idempotencyTTL = ttl
}

// RecordPayment books a payment and settles sale balances. A targeted payment
// goes to one sale; a general payment is spread over the customer's
// outstanding credit sales oldest first and any leftover is kept as an
// advance. Customer debt drops by the full amount once.
func (s *PaymentService) RecordPayment(ctx context.Context, tc shared.TenantContext, req RecordPaymentRequest) ([]*finance.CustomerPayment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	target := req.Target
	if target == nil {
		target = finance.TargetGeneral()
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tc.TenantID,
		telemetry.SpanAttrCustomerID, req.CustomerID,
		telemetry.SpanAttrAmount, req.Amount,
		telemetry.SpanAttrPaymentMethod, string(req.PaymentMethod),
		telemetry.SpanAttrTargetKind, targetKind(target),
	)

	details, err := s.validate(tc, req, target)
	if err != nil {
		return nil, s.reject(ctx, span, err)
	}

	release, err := s.claim(ctx, tc, req.IdempotencyKey)
	if err != nil {
		return nil, s.reject(ctx, span, err)
	}

	var payments []*finance.CustomerPayment
	err = s.txManager.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.customers.FindByIDForTenant(ctx, tc.TenantID, req.CustomerID); err != nil {
			return err
		}

		var err error
		switch t := target.(type) {
		case finance.TargetedPayment:
			payments, err = s.payTargeted(ctx, details, t.SaleID, req.Amount)
		case finance.GeneralPayment:
			payments, err = s.payGeneral(ctx, details, req.Amount)
		default:
			err = shared.NewValidationError("target", "unknown payment target")
		}
		if err != nil {
			return err
		}

		if err := s.payments.Create(ctx, payments...); err != nil {
			return err
		}
		if err := s.customers.DecreaseDebt(ctx, tc.TenantID, req.CustomerID, req.Amount); err != nil {
			return err
		}
		return s.events.SaveEvents(ctx, finance.NewCustomerPaymentRecordedEvent(tc.TenantID, req.CustomerID, target, payments))
	})
	if err != nil {
		release()
		return nil, s.reject(ctx, span, err)
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrAllocations, len(payments))
	telemetry.SetOK(span)
	s.metrics.RecordPayment(ctx, tc.TenantID, targetKind(target), req.Amount)

	advance := decimal.Zero
	for _, p := range payments {
		if p.IsAdvance() {
			advance = advance.Add(p.Amount)
		}
	}
	logger.Enrich(ctx, s.logger).Info("payment recorded",
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("target", target.String()),
		zap.String("amount", req.Amount.String()),
		zap.Int("rows", len(payments)),
		zap.String("advance", advance.String()),
	)
	return payments, nil
}

func (s *PaymentService) validate(tc shared.TenantContext, req RecordPaymentRequest, target finance.PaymentTarget) (finance.PaymentDetails, error) {
	if err := tc.Validate(); err != nil {
		return finance.PaymentDetails{}, err
	}
	if !req.Amount.IsPositive() {
		return finance.PaymentDetails{}, shared.NewValidationError("amount", "payment amount must be greater than zero")
	}
	if t, ok := target.(finance.TargetedPayment); ok && t.SaleID == uuid.Nil {
		return finance.PaymentDetails{}, shared.NewValidationError("sale_id", "sale id is invalid")
	}

	paymentDate := s.now()
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		paymentDate = *req.PaymentDate
	}
	details := finance.PaymentDetails{
		TenantID:      tc.TenantID,
		CustomerID:    req.CustomerID,
		UserID:        tc.UserID,
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   paymentDate,
		Reference:     req.Reference,
		Notes:         req.Notes,
	}
	if err := details.Validate(); err != nil {
		return finance.PaymentDetails{}, err
	}
	return details, nil
}

// payTargeted applies the whole amount to one sale of the customer
func (s *PaymentService) payTargeted(ctx context.Context, d finance.PaymentDetails, saleID uuid.UUID, amount decimal.Decimal) ([]*finance.CustomerPayment, error) {
	sale, err := s.sales.FindByIDForTenant(ctx, d.TenantID, saleID)
	if err != nil {
		return nil, err
	}
	if !sale.BelongsToCustomer(d.CustomerID) {
		return nil, shared.NewNotFoundError("sale")
	}
	if err := sale.ApplyPayment(amount); err != nil {
		return nil, err
	}

	payment, err := finance.NewCustomerPayment(d, &sale.ID, amount)
	if err != nil {
		return nil, err
	}
	if err := s.sales.ApplyPayment(ctx, d.TenantID, sale.ID, amount); err != nil {
		return nil, err
	}
	return []*finance.CustomerPayment{payment}, nil
}

// payGeneral allocates FIFO over outstanding credit sales. What is left
// becomes a single advance row.
func (s *PaymentService) payGeneral(ctx context.Context, d finance.PaymentDetails, amount decimal.Decimal) ([]*finance.CustomerPayment, error) {
	outstanding, err := s.sales.FindOutstandingByCustomer(ctx, d.TenantID, d.CustomerID)
	if err != nil {
		return nil, err
	}
	result, err := s.allocator.Allocate(amount, finance.TargetsFromSales(outstanding))
	if err != nil {
		return nil, err
	}

	payments := make([]*finance.CustomerPayment, 0, len(result.Allocations)+1)
	for _, alloc := range result.Allocations {
		saleID := alloc.SaleID
		payment, err := finance.NewCustomerPayment(d, &saleID, alloc.Amount)
		if err != nil {
			return nil, err
		}
		if err := s.sales.ApplyPayment(ctx, d.TenantID, saleID, alloc.Amount); err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	if result.HasUnallocated() {
		advance, err := finance.NewCustomerPayment(d, nil, result.Unallocated)
		if err != nil {
			return nil, err
		}
		payments = append(payments, advance)
	}
	return payments, nil
}

// claim reserves the idempotency key and returns a func that frees it again.
// Keys are scoped by tenant.
func (s *PaymentService) claim(ctx context.Context, tc shared.TenantContext, key string) (func(), error) {
	if s.idempotency == nil || key == "" {
		return func() {}, nil
	}
	scoped := fmt.Sprintf("payment:%s:%s", tc.TenantID, key)
	claimed, err := s.idempotency.MarkProcessed(ctx, scoped, s.idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !claimed {
		return nil, shared.ErrDuplicateRequest
	}
	return func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), scoped); err != nil {
			logger.Enrich(ctx, s.logger).Warn("failed to release idempotency key",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}, nil
}

// reject records a failed payment and returns err unchanged
func (s *PaymentService) reject(ctx context.Context, span trace.Span, err error) error {
	telemetry.RecordError(span, err)

	code := shared.ErrorCode(err)
	if code == "" {
		logger.Enrich(ctx, s.logger).Error("payment failed", zap.Error(err))
		return err
	}
	s.metrics.RecordRejection(ctx, "record_payment", code)
	logger.Enrich(ctx, s.logger).Warn("payment rejected",
		zap.String("code", code),
		zap.Error(err),
	)
	return err
}

func targetKind(target finance.PaymentTarget) string {
	if _, ok := target.(finance.TargetedPayment); ok {
		return "targeted"
	}
	return "general"
}
