package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DebtReconciliationService repairs customers whose current_debt no longer
// equals the remaining balance of their outstanding credit sales, and reports
// credit sales whose amount_paid disagrees with their payment rows
type DebtReconciliationService struct {
	customers partner.CustomerRepository
	payments  finance.CustomerPaymentRepository
	logger    *zap.Logger
	metrics   *telemetry.LedgerMetrics
}

// NewDebtReconciliationService creates a new DebtReconciliationService
func NewDebtReconciliationService(
	customers partner.CustomerRepository,
	payments finance.CustomerPaymentRepository,
	logger *zap.Logger,
) *DebtReconciliationService {
	return &DebtReconciliationService{
		customers: customers,
		payments:  payments,
		logger:    logger,
	}
}

// SetMetrics attaches business metrics
func (s *DebtReconciliationService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// ReconcileTenant corrects drifted customers of one tenant. Each correction is
// a compare-and-set on the recorded debt; a customer written concurrently is
// skipped and picked up by the next run.
func (s *DebtReconciliationService) ReconcileTenant(ctx context.Context, tenantID uuid.UUID) (*ReconciliationReport, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "debt_reconciliation", "reconcile_tenant",
		telemetry.WithAttribute(telemetry.SpanAttrTenantID, tenantID.String()))
	defer span.End()

	report := &ReconciliationReport{TenantsScanned: 1}

	drifts, err := s.customers.FindDebtDrift(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to compute debt drift: %w", err)
	}

	for _, drift := range drifts {
		corrected, err := s.customers.CorrectDebt(ctx, tenantID, drift.CustomerID, drift.Recorded, drift.Computed)
		if err != nil {
			telemetry.RecordError(span, err)
			return report, fmt.Errorf("failed to correct customer debt: %w", err)
		}
		if !corrected {
			report.Skipped++
			continue
		}
		report.CustomersCorrected++
		s.logger.Warn("customer debt corrected",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", drift.CustomerID.String()),
			zap.String("recorded", drift.Recorded.String()),
			zap.String("computed", drift.Computed.String()),
			zap.String("difference", drift.Difference().String()),
		)
	}

	// payment rows are append-only, so a mismatch is reported for manual review
	// rather than corrected
	mismatches, err := s.payments.FindAllocationMismatches(ctx, tenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return report, fmt.Errorf("failed to audit payment allocations: %w", err)
	}
	for _, m := range mismatches {
		s.logger.Error("sale balance disagrees with its payments",
			zap.String("tenant_id", tenantID.String()),
			zap.String("sale_id", m.SaleID.String()),
			zap.String("total", m.Total.String()),
			zap.String("amount_paid", m.AmountPaid.String()),
			zap.String("remaining_balance", m.RemainingBalance.String()),
			zap.String("allocated", m.Allocated.String()),
		)
	}
	report.AllocationMismatches = len(mismatches)

	s.metrics.RecordDebtCorrections(ctx, report.CustomersCorrected)
	telemetry.SetAttributes(span,
		"reconciliation.corrected", report.CustomersCorrected,
		"reconciliation.skipped", report.Skipped,
		"reconciliation.allocation_mismatches", report.AllocationMismatches,
	)
	telemetry.SetOK(span)
	return report, nil
}

// ReconcileAll runs ReconcileTenant for every tenant with customers. A failing
// tenant does not stop the others; its error is joined into the result.
func (s *DebtReconciliationService) ReconcileAll(ctx context.Context) (*ReconciliationReport, error) {
	tenants, err := s.customers.ListTenantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}

	total := &ReconciliationReport{}
	var errs []error
	for _, tenantID := range tenants {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		report, err := s.ReconcileTenant(ctx, tenantID)
		if report != nil {
			total.add(report)
		}
		if err != nil {
			s.logger.Error("debt reconciliation failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
		}
	}
	return total, errors.Join(errs...)
}
