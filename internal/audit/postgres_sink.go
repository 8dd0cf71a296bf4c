package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSink persists audit events to the audit_events table.
// Used by the worker to durably store events consumed from Pub/Sub.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink creates a PostgreSQL-backed audit sink.
func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{pool: pool}
}

// Record inserts the event. Event IDs are unique so replayed Pub/Sub
// deliveries are dropped instead of duplicated.
func (s *PostgresSink) Record(ctx context.Context, event Event) error {
	query := `
		INSERT INTO audit_events (
			id, event_type, person_id, actor_id, outcome, severity,
			ip, user_agent, details, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query,
		event.ID,
		event.Type,
		event.PersonID,
		event.ActorID,
		event.Outcome,
		event.Severity,
		event.IP,
		event.UserAgent,
		event.Details,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("recording audit event: %w", err)
	}
	return nil
}

var _ Sink = (*PostgresSink)(nil)
