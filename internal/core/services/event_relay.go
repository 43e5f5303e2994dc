package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// Metric results reported by the relay.
const (
	relayResultSent    = "sent"
	relayResultRetried = "retried"
	relayResultFailed  = "failed"
)

// RelayConfig tunes the outbox relay.
type RelayConfig struct {
	BatchSize    int
	MaxRetries   int
	PollInterval time.Duration
}

// eventRelay delivers outbox events written by the transaction service.
type eventRelay struct {
	BaseService
	uow       portsrepo.UnitOfWork
	store     portsrepo.EventRelayStore
	publisher portssvc.EventPublisher
	cfg       RelayConfig
}

// NewEventRelay creates the outbox relay.
func NewEventRelay(uow portsrepo.UnitOfWork, store portsrepo.EventRelayStore, publisher portssvc.EventPublisher, cfg RelayConfig, options ...ServiceOption) portssvc.EventRelaySvc {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	svc := &eventRelay{
		BaseService: newBaseService(),
		uow:         uow,
		store:       store,
		publisher:   publisher,
		cfg:         cfg,
	}
	applyOptions(&svc.BaseService, options)
	return svc
}

var _ portssvc.EventRelaySvc = (*eventRelay)(nil)

// RelayPending claims one batch of pending events and publishes them.
// A publish failure is recorded on the event and does not abort the batch.
func (r *eventRelay) RelayPending(ctx context.Context) (int, error) {
	sent := 0
	err := r.uow.Atomic(ctx, func(ctx context.Context) error {
		events, err := r.store.ClaimPendingEvents(ctx, r.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to claim pending events: %w", err)
		}

		for _, event := range events {
			if pubErr := r.publisher.Publish(ctx, event); pubErr != nil {
				final := event.Attempts+1 >= r.cfg.MaxRetries
				if err := r.store.MarkEventAttemptFailed(ctx, event.EventID, pubErr.Error(), final, r.Now()); err != nil {
					return fmt.Errorf("failed to record publish failure for event %s: %w", event.EventID, err)
				}
				result := relayResultRetried
				if final {
					result = relayResultFailed
				}
				r.Metrics.OutboxEvent(result)
				r.GetLogger(ctx).Warn("Failed to publish ledger event",
					slog.String("event_id", event.EventID),
					slog.String("event_type", string(event.EventType)),
					slog.Int("attempts", event.Attempts+1),
					slog.Bool("final", final),
					slog.String("error", pubErr.Error()))
				continue
			}

			if err := r.store.MarkEventSent(ctx, event.EventID, r.Now()); err != nil {
				return fmt.Errorf("failed to mark event %s as sent: %w", event.EventID, err)
			}
			r.Metrics.OutboxEvent(relayResultSent)
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if sent > 0 {
		r.LogDebug(ctx, "Ledger events relayed", slog.Int("count", sent))
	}
	return sent, nil
}

// Run polls the outbox until ctx is cancelled. A full batch is followed by
// another batch straight away.
func (r *eventRelay) Run(ctx context.Context) error {
	r.LogInfo(ctx, "Outbox relay started",
		slog.Duration("poll_interval", r.cfg.PollInterval),
		slog.Int("batch_size", r.cfg.BatchSize))

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		sent, err := r.RelayPending(ctx)
		if err != nil && ctx.Err() == nil {
			r.LogError(ctx, err, "Outbox relay batch failed")
		}
		if err == nil && sent == r.cfg.BatchSize {
			continue
		}

		select {
		case <-ctx.Done():
			r.LogInfo(ctx, "Outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}
