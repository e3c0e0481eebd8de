package finance

import (
	"context"
	"time"

	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
)

// AlertService derives operational alerts from a consistent ledger snapshot.
// Alerts are computed on every call and never stored.
type AlertService struct {
	txManager shared.TransactionManager
	sales     trade.SaleRepository
	customers partner.CustomerRepository
	products  inventory.ProductRepository
	deriver   *finance.AlertDeriver
	now       func() time.Time
}

// NewAlertService creates a new AlertService
func NewAlertService(
	txManager shared.TransactionManager,
	sales trade.SaleRepository,
	customers partner.CustomerRepository,
	products inventory.ProductRepository,
	deriver *finance.AlertDeriver,
) *AlertService {
	return &AlertService{
		txManager: txManager,
		sales:     sales,
		customers: customers,
		products:  products,
		deriver:   deriver,
		now:       time.Now,
	}
}

// DeriveAlerts returns the tenant's alerts sorted by priority, narrowed by filter
func (s *AlertService) DeriveAlerts(ctx context.Context, tc shared.TenantContext, filter finance.AlertFilter) ([]finance.Alert, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "alert", "derive")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tc.TenantID,
		"alert.type", string(filter.Type),
		"alert.priority", string(filter.Priority),
	)

	if err := tc.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	snapshot, err := s.snapshot(ctx, tc)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	alerts := filter.Apply(s.deriver.Derive(snapshot, s.now()))
	telemetry.SetAttribute(span, "alert.count", len(alerts))
	telemetry.SetOK(span)
	return alerts, nil
}

func (s *AlertService) snapshot(ctx context.Context, tc shared.TenantContext) (finance.LedgerSnapshot, error) {
	var snapshot finance.LedgerSnapshot
	err := s.txManager.WithinReadSnapshot(ctx, func(ctx context.Context) error {
		sales, err := s.sales.FindOutstandingCredit(ctx, tc.TenantID)
		if err != nil {
			return err
		}
		customers, err := s.customers.FindWithDebt(ctx, tc.TenantID)
		if err != nil {
			return err
		}
		products, err := s.products.FindLowStock(ctx, tc.TenantID, s.deriver.LowStockLimit())
		if err != nil {
			return err
		}
		snapshot = finance.LedgerSnapshot{
			OutstandingSales:  sales,
			IndebtedCustomers: customers,
			LowStockProducts:  products,
		}
		return nil
	})
	return snapshot, err
}
