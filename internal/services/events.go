package services

import (
	"context"
	"log/slog"

	"saldo/internal/amqp"
)

// EventPublisher delivers ledger events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev *amqp.LedgerEvent) error
}

// publish never fails the caller: the write it reports is already stored.
func publish(ctx context.Context, p EventPublisher, ev *amqp.LedgerEvent) {
	if p == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping event", "type", ev.Type)
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"owner_id", ev.OwnerID,
			"error", err)
	}
}
