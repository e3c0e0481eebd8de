package finance

import (
	"context"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
)

// DefaultRecentPaymentsLimit is used when no limit is configured
const DefaultRecentPaymentsLimit = 20

// LedgerService answers customer credit position queries
type LedgerService struct {
	txManager           shared.TransactionManager
	customers           partner.CustomerRepository
	sales               trade.SaleRepository
	payments            finance.CustomerPaymentRepository
	recentPaymentsLimit int
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	txManager shared.TransactionManager,
	customers partner.CustomerRepository,
	sales trade.SaleRepository,
	payments finance.CustomerPaymentRepository,
	recentPaymentsLimit int,
) *LedgerService {
	if recentPaymentsLimit <= 0 {
		recentPaymentsLimit = DefaultRecentPaymentsLimit
	}
	return &LedgerService{
		txManager:           txManager,
		customers:           customers,
		sales:               sales,
		payments:            payments,
		recentPaymentsLimit: recentPaymentsLimit,
	}
}

// GetCustomerLedger returns credit limit, debt, outstanding credit sales
// (oldest first) and the latest payments, all read from one snapshot
func (s *LedgerService) GetCustomerLedger(ctx context.Context, tc shared.TenantContext, customerID uuid.UUID) (*CustomerLedgerResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "get_customer_ledger")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tc.TenantID,
		telemetry.SpanAttrCustomerID, customerID,
	)

	if err := tc.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var ledger *CustomerLedgerResponse
	err := s.txManager.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		customer, err := s.customers.FindByIDForTenant(ctx, tc.TenantID, customerID)
		if err != nil {
			return err
		}
		outstanding, err := s.sales.FindOutstandingByCustomer(ctx, tc.TenantID, customerID)
		if err != nil {
			return err
		}
		recent, err := s.payments.FindRecentByCustomer(ctx, tc.TenantID, customerID, s.recentPaymentsLimit)
		if err != nil {
			return err
		}
		ledger = buildLedger(customer, outstanding, recent)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	return ledger, nil
}

func buildLedger(customer *partner.Customer, outstanding []trade.Sale, recent []finance.CustomerPayment) *CustomerLedgerResponse {
	ledger := &CustomerLedgerResponse{
		CustomerID:       customer.ID,
		CustomerName:     customer.Name,
		CreditLimit:      customer.CreditLimit,
		CurrentDebt:      customer.CurrentDebt,
		AvailableCredit:  customer.AvailableCredit(),
		OutstandingSales: make([]OutstandingSaleResponse, 0, len(outstanding)),
		RecentPayments:   make([]PaymentResponse, 0, len(recent)),
	}
	for _, sale := range outstanding {
		ledger.OutstandingSales = append(ledger.OutstandingSales, OutstandingSaleResponse{
			SaleID:           sale.ID,
			Folio:            sale.Folio,
			Total:            sale.Total,
			AmountPaid:       sale.AmountPaid,
			RemainingBalance: sale.RemainingBalance,
			PaymentStatus:    string(sale.PaymentStatus),
			DueDate:          sale.DueDate,
			CreatedAt:        sale.CreatedAt,
		})
	}
	for i := range recent {
		ledger.RecentPayments = append(ledger.RecentPayments, ToPaymentResponse(&recent[i]))
	}
	return ledger
}
