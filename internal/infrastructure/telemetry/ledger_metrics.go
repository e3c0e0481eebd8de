package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics records sale, payment and reconciliation metrics.
// A nil *LedgerMetrics is valid and records nothing.
type LedgerMetrics struct {
	salesTotal      *Counter
	saleAmount      *Histogram
	paymentsTotal   *Counter
	paymentAmount   *Histogram
	rejections      *Counter
	debtCorrections *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	var (
		m   LedgerMetrics
		err error
	)

	if m.salesTotal, err = NewCounter(meter, "pos_sales_total", "Completed sales", "{sale}"); err != nil {
		return nil, err
	}
	if m.saleAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos_sale_amount",
		Description: "Sale totals",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.paymentsTotal, err = NewCounter(meter, "pos_customer_payments_total", "Recorded customer payments", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewHistogram(meter, HistogramOpts{
		Name:        "pos_customer_payment_amount",
		Description: "Customer payment amounts",
		Unit:        "{currency}",
		Boundaries:  AmountBuckets,
	}); err != nil {
		return nil, err
	}
	if m.rejections, err = NewCounter(meter, "pos_ledger_rejections_total", "Operations rejected with a domain error", "{operation}"); err != nil {
		return nil, err
	}
	if m.debtCorrections, err = NewCounter(meter, "pos_debt_corrections_total", "Customer debts rewritten by reconciliation", "{customer}"); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordSale counts a completed sale and its total.
func (m *LedgerMetrics) RecordSale(ctx context.Context, tenantID uuid.UUID, method string, total decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String()), AttrPaymentMethod.String(method)}
	m.salesTotal.Inc(ctx, attrs...)
	m.saleAmount.Record(ctx, total.InexactFloat64(), attrs...)
}

// RecordPayment counts a recorded customer payment by target kind.
func (m *LedgerMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, targetKind string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrTenantID.String(tenantID.String()), AttrTargetKind.String(targetKind)}
	m.paymentsTotal.Inc(ctx, attrs...)
	m.paymentAmount.Record(ctx, amount.InexactFloat64(), attrs...)
}

// RecordRejection counts an operation refused with the given error code.
func (m *LedgerMetrics) RecordRejection(ctx context.Context, operation, code string) {
	if m == nil {
		return
	}
	m.rejections.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}

// RecordDebtCorrections counts customers whose debt was corrected.
func (m *LedgerMetrics) RecordDebtCorrections(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.debtCorrections.Add(ctx, int64(n))
}
