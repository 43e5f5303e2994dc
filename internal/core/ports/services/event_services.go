package services

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// EventPublisher delivers a ledger event to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.LedgerEvent) error
	Close() error
}

// EventRelaySvc moves pending outbox events to the publisher.
type EventRelaySvc interface {
	// RelayPending publishes one batch and returns how many events were sent.
	RelayPending(ctx context.Context) (int, error)

	// Run relays batches until the context is cancelled.
	Run(ctx context.Context) error
}
