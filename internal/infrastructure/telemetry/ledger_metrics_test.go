package telemetry_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byName := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}
	return byName
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestLedgerMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := telemetry.NewLedgerMetrics(provider.Meter("ledger-test"))
	require.NoError(t, err)

	ctx := context.Background()
	tenantID := uuid.New()
	m.RecordSale(ctx, tenantID, "CASH", decimal.NewFromInt(250))
	m.RecordSale(ctx, tenantID, "CREDIT", decimal.NewFromInt(900))
	m.RecordPayment(ctx, tenantID, "general", decimal.NewFromInt(300))
	m.RecordRejection(ctx, "process_sale", "INSUFFICIENT_STOCK")
	m.RecordDebtCorrections(ctx, 2)
	m.RecordDebtCorrections(ctx, 0)

	metrics := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, metrics["pos_sales_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["pos_customer_payments_total"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["pos_ledger_rejections_total"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["pos_debt_corrections_total"]))

	hist, ok := metrics["pos_sale_amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestLedgerMetrics_NilIsNoop(t *testing.T) {
	var m *telemetry.LedgerMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordSale(ctx, uuid.New(), "CASH", decimal.NewFromInt(1))
		m.RecordPayment(ctx, uuid.New(), "targeted", decimal.NewFromInt(1))
		m.RecordRejection(ctx, "record_payment", "EXCESS_PAYMENT")
		m.RecordDebtCorrections(ctx, 1)
	})
}
