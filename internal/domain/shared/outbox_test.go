package shared

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	BaseDomainEvent
}

func TestNewOutboxEntry(t *testing.T) {
	tenantID := uuid.New()
	aggID := uuid.New()
	evt := &testEvent{BaseDomainEvent: NewBaseDomainEvent("SaleCompleted", "Sale", aggID, tenantID)}

	entry := NewOutboxEntry(evt, []byte(`{"ok":true}`))

	assert.Equal(t, tenantID, entry.TenantID)
	assert.Equal(t, evt.EventID(), entry.EventID)
	assert.Equal(t, "SaleCompleted", entry.EventType)
	assert.Equal(t, aggID, entry.AggregateID)
	assert.Equal(t, "Sale", entry.AggregateType)
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkFailed(t *testing.T) {
	t.Run("schedules retry with backoff", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, MaxRetries: 3}

		entry.MarkFailed("broker down")
		require.NotNil(t, entry.NextRetryAt)
		assert.Equal(t, OutboxStatusFailed, entry.Status)
		assert.Equal(t, 1, entry.RetryCount)
		assert.Equal(t, "broker down", entry.LastError)
		assert.Equal(t, time.Second, entry.NextRetryAt.Sub(entry.UpdatedAt))

		entry.MarkFailed("broker down")
		assert.Equal(t, 2*time.Second, entry.NextRetryAt.Sub(entry.UpdatedAt))
	})

	t.Run("goes dead after max retries", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusProcessing, RetryCount: 2, MaxRetries: 3}

		entry.MarkFailed("still down")
		assert.True(t, entry.IsDead())
		assert.Nil(t, entry.NextRetryAt)
	})
}

func TestOutboxEntry_Requeue(t *testing.T) {
	t.Run("requeues dead entry", func(t *testing.T) {
		entry := &OutboxEntry{Status: OutboxStatusDead, RetryCount: 5, LastError: "x"}

		require.NoError(t, entry.Requeue())
		assert.Equal(t, OutboxStatusPending, entry.Status)
		assert.Zero(t, entry.RetryCount)
		assert.Empty(t, entry.LastError)
	})

	t.Run("rejects live entries", func(t *testing.T) {
		for _, status := range []OutboxStatus{OutboxStatusPending, OutboxStatusProcessing, OutboxStatusSent, OutboxStatusFailed} {
			entry := &OutboxEntry{Status: status}
			assert.Error(t, entry.Requeue())
		}
	})
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := &OutboxEntry{Status: OutboxStatusProcessing}
	entry.MarkSent()
	assert.Equal(t, OutboxStatusSent, entry.Status)
	assert.NotNil(t, entry.ProcessedAt)
}
