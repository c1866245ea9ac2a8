package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists audit events for compliance retention.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO audit_events
			(category, action, occurred_at, user_id, event_id,
			 verification_id, decision, reason, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(event.Category), string(event.Action), event.Timestamp,
		event.UserID.String(), nullable(event.EventID.String()),
		nullable(event.VerificationID), nullable(event.Decision),
		nullable(event.Reason), nullable(event.RequestID),
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// nullable maps empty and nil-UUID strings to SQL NULL.
func nullable(s string) *string {
	if s == "" || s == "00000000-0000-0000-0000-000000000000" {
		return nil
	}
	return &s
}
