package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// EventWriter appends outbox events. It is called inside the unit of work of the change being described.
type EventWriter interface {
	SaveEvent(ctx context.Context, event domain.LedgerEvent) error
}

// EventRelayStore is used by the relay to deliver pending events.
type EventRelayStore interface {
	// ClaimPendingEvents locks up to limit pending events, oldest first, skipping rows
	// locked by other relays. It must run inside a unit of work.
	ClaimPendingEvents(ctx context.Context, limit int) ([]domain.LedgerEvent, error)

	// MarkEventSent records a successful delivery.
	MarkEventSent(ctx context.Context, eventID string, at time.Time) error

	// MarkEventAttemptFailed records a failed delivery; when final is true the event becomes FAILED.
	MarkEventAttemptFailed(ctx context.Context, eventID string, reason string, final bool, at time.Time) error
}

// EventRepositoryFacade combines all outbox repository interfaces
type EventRepositoryFacade interface {
	EventWriter
	EventRelayStore
}

// IdempotencyStore reserves client supplied idempotency keys.
type IdempotencyStore interface {
	// Reserve returns false when the key is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a key so it can be used again.
	Release(ctx context.Context, key string) error
}
