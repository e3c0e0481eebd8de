package event

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/shared"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/posledger/backend/internal/infrastructure/persistence"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompletedSale(tenantID uuid.UUID) *trade.SaleCompletedEvent {
	return &trade.SaleCompletedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(trade.EventTypeSaleCompleted, trade.AggregateTypeSale, uuid.New(), tenantID),
		Folio:            "V-20261019-000001",
		PaymentMethod:    trade.PaymentMethodCash,
		Total:            decimal.NewFromInt(150),
		RemainingBalance: decimal.Zero,
		ItemCount:        2,
	}
}

func TestOutboxPublisher_SaveEvents(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := NewOutboxPublisher(repo, NewLedgerEventSerializer(), 3)
	tenantID := uuid.New()

	first := newCompletedSale(tenantID)
	second := newCompletedSale(tenantID)
	require.NoError(t, publisher.SaveEvents(context.Background(), first, second))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[shared.OutboxStatusPending])

	for _, e := range repo.entries {
		assert.Equal(t, tenantID, e.TenantID)
		assert.Equal(t, trade.EventTypeSaleCompleted, e.EventType)
		assert.Equal(t, 3, e.MaxRetries)
		assert.Contains(t, string(e.Payload), `"folio":"V-20261019-000001"`)
	}
}

func TestOutboxPublisher_SaveEvents_Empty(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := NewOutboxPublisher(repo, NewLedgerEventSerializer(), 0)

	require.NoError(t, publisher.SaveEvents(context.Background()))
	assert.Empty(t, repo.entries)
}

func TestOutboxPublisher_DefaultMaxRetries(t *testing.T) {
	repo := newMockOutboxRepository()
	publisher := NewOutboxPublisher(repo, NewLedgerEventSerializer(), 0)

	require.NoError(t, publisher.SaveEvents(context.Background(), newCompletedSale(uuid.New())))
	for _, e := range repo.entries {
		assert.Equal(t, shared.DefaultMaxRetries, e.MaxRetries)
	}
}

func TestOutboxPublisher_RolledBackWithTransaction(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewGormOutboxRepository(db)
	publisher := NewOutboxPublisher(repo, NewLedgerEventSerializer(), 0)
	txm := persistence.NewGormTransactionManager(db)
	ctx := context.Background()

	err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := publisher.SaveEvents(ctx, newCompletedSale(uuid.New())); err != nil {
			return err
		}
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	due, err := repo.FindDue(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	require.NoError(t, txm.WithinTransaction(ctx, func(ctx context.Context) error {
		return publisher.SaveEvents(ctx, newCompletedSale(uuid.New()))
	}))
	due, err = repo.FindDue(ctx, time.Now().UTC(), 10)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}
