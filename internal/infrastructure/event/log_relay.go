package event

import (
	"context"

	"github.com/posledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LogRelay writes entries to the log. Used when no broker is configured.
type LogRelay struct {
	logger *zap.Logger
}

func NewLogRelay(logger *zap.Logger) *LogRelay {
	return &LogRelay{logger: logger}
}

func (r *LogRelay) Relay(_ context.Context, entry *shared.OutboxEntry) error {
	r.logger.Info("domain event",
		zap.String("event_id", entry.EventID.String()),
		zap.String("event_type", entry.EventType),
		zap.String("tenant_id", entry.TenantID.String()),
		zap.String("aggregate_type", entry.AggregateType),
		zap.String("aggregate_id", entry.AggregateID.String()),
		zap.ByteString("payload", entry.Payload),
	)
	return nil
}

var _ shared.OutboxRelay = (*LogRelay)(nil)
