package event

import (
	"context"

	"github.com/posledger/backend/internal/domain/shared"
)

// OutboxPublisher writes domain events to the outbox through the repository,
// which joins the transaction carried by ctx
type OutboxPublisher struct {
	repo       shared.OutboxRepository
	serializer *EventSerializer
	maxRetries int
}

// NewOutboxPublisher creates a new outbox publisher. maxRetries <= 0 keeps
// shared.DefaultMaxRetries.
func NewOutboxPublisher(repo shared.OutboxRepository, serializer *EventSerializer, maxRetries int) *OutboxPublisher {
	return &OutboxPublisher{repo: repo, serializer: serializer, maxRetries: maxRetries}
}

// SaveEvents serializes events and stores them as pending outbox entries
func (p *OutboxPublisher) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	entries := make([]*shared.OutboxEntry, 0, len(events))
	for _, evt := range events {
		payload, err := p.serializer.Serialize(evt)
		if err != nil {
			return err
		}
		entry := shared.NewOutboxEntry(evt, payload)
		if p.maxRetries > 0 {
			entry.MaxRetries = p.maxRetries
		}
		entries = append(entries, entry)
	}
	return p.repo.Save(ctx, entries...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
