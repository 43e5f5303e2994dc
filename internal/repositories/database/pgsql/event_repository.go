package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxEventRepository stores ledger events in the ledger_events outbox table.
type PgxEventRepository struct {
	BaseRepository
}

func newPgxEventRepository(pool *pgxpool.Pool) *PgxEventRepository {
	return &PgxEventRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EventRepositoryFacade = (*PgxEventRepository)(nil)

// SaveEvent appends an event; it joins the caller's transaction when there is one.
func (r *PgxEventRepository) SaveEvent(ctx context.Context, event domain.LedgerEvent) error {
	m := mapping.ToModelLedgerEvent(event)

	query := `
		INSERT INTO ledger_events (event_id, aggregate_id, event_type, payload, status, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		m.EventID,
		m.AggregateID,
		m.EventType,
		m.Payload,
		m.Status,
		m.Attempts,
		m.LastError,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save %s event %s: %w", m.EventType, m.EventID, err)
	}
	return nil
}

// ClaimPendingEvents locks up to limit pending events, oldest first.
func (r *PgxEventRepository) ClaimPendingEvents(ctx context.Context, limit int) ([]domain.LedgerEvent, error) {
	if _, ok := txFromContext(ctx); !ok {
		return nil, fmt.Errorf("claiming events requires a unit of work")
	}

	query, args, err := buildClaimEventsQuery(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build claim query: %w", err)
	}

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending events: %w", err)
	}
	defer rows.Close()

	events := []domain.LedgerEvent{}
	for rows.Next() {
		var m models.LedgerEvent
		if err := rows.Scan(
			&m.EventID,
			&m.AggregateID,
			&m.EventType,
			&m.Payload,
			&m.Status,
			&m.Attempts,
			&m.LastError,
			&m.CreatedAt,
			&m.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, mapping.ToDomainLedgerEvent(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

// MarkEventSent records a successful delivery.
func (r *PgxEventRepository) MarkEventSent(ctx context.Context, eventID string, at time.Time) error {
	query := `
		UPDATE ledger_events
		SET status = 'SENT', attempts = attempts + 1, last_error = NULL, processed_at = $1
		WHERE event_id = $2;
	`
	return r.execOne(ctx, eventID, query, at, eventID)
}

// MarkEventAttemptFailed records a failed delivery; a final failure parks the event as FAILED.
func (r *PgxEventRepository) MarkEventAttemptFailed(ctx context.Context, eventID string, reason string, final bool, at time.Time) error {
	status := domain.EventPending
	var processedAt *time.Time
	if final {
		status = domain.EventFailed
		processedAt = &at
	}

	query := `
		UPDATE ledger_events
		SET status = $1, attempts = attempts + 1, last_error = $2, processed_at = $3
		WHERE event_id = $4;
	`
	return r.execOne(ctx, eventID, query, string(status), reason, processedAt, eventID)
}

func (r *PgxEventRepository) execOne(ctx context.Context, eventID, query string, args ...any) error {
	cmdTag, err := r.db(ctx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: event %s", apperrors.ErrNotFound, eventID)
	}
	return nil
}
