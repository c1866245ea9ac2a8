package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/token"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// Postgres persists scan tokens. Single-use consumption relies on a
// conditional UPDATE, so the database orders concurrent consumers: the first
// one matches the WHERE clause, the rest classify the row they find.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const tokenColumns = `id, user_id, event_id, device_hash, payload_hash,
	issued_at, expires_at, consumed, consumed_at, scanner_id, revoked, revoked_at`

func (s *Postgres) Create(ctx context.Context, t *token.ScanToken) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scan_tokens (`+tokenColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID.String(), t.UserID.String(), t.EventID.String(), t.DeviceHash, t.PayloadHash,
		t.IssuedAt, t.ExpiresAt, t.Consumed, t.ConsumedAt, t.ScannerID, t.Revoked, t.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("create scan token: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, tokenID id.TokenID) (*token.ScanToken, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+tokenColumns+` FROM scan_tokens WHERE id = $1`, tokenID.String())
	return scanToken(row)
}

func (s *Postgres) Consume(ctx context.Context, tokenID id.TokenID, scannerID string, now time.Time) (*token.ScanToken, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE scan_tokens
		SET consumed = TRUE, consumed_at = $2, scanner_id = $3
		WHERE id = $1 AND NOT consumed AND NOT revoked AND expires_at >= $2
		RETURNING `+tokenColumns,
		tokenID.String(), now, scannerID,
	)
	t, err := scanToken(row)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// The conditional update matched nothing; classify the loss.
	existing, ferr := s.Find(ctx, tokenID)
	if ferr != nil {
		return nil, ferr
	}
	switch {
	case existing.Consumed:
		return existing, fmt.Errorf("token already consumed: %w", sentinel.ErrAlreadyUsed)
	case existing.Revoked:
		return existing, fmt.Errorf("token revoked: %w", sentinel.ErrInvalidState)
	default:
		return existing, fmt.Errorf("token expired: %w", sentinel.ErrExpired)
	}
}

func (s *Postgres) Revoke(ctx context.Context, tokenID id.TokenID, now time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE scan_tokens
		SET revoked = TRUE, revoked_at = $2
		WHERE id = $1 AND NOT consumed`,
		tokenID.String(), now,
	)
	if err != nil {
		return fmt.Errorf("revoke scan token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		existing, ferr := s.Find(ctx, tokenID)
		if ferr != nil {
			return ferr
		}
		if existing.Consumed {
			return fmt.Errorf("token already consumed: %w", sentinel.ErrAlreadyUsed)
		}
		return nil // already revoked; idempotent
	}
	return nil
}

func (s *Postgres) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scan_tokens WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired scan tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanToken(row pgx.Row) (*token.ScanToken, error) {
	var (
		t                          token.ScanToken
		tokenID, userID, eventID   string
		consumedAt, revokedAt      *time.Time
	)
	err := row.Scan(&tokenID, &userID, &eventID, &t.DeviceHash, &t.PayloadHash,
		&t.IssuedAt, &t.ExpiresAt, &t.Consumed, &consumedAt, &t.ScannerID, &t.Revoked, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("token not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan token row: %w", err)
	}

	if t.ID, err = id.ParseTokenID(tokenID); err != nil {
		return nil, fmt.Errorf("token id column: %w", err)
	}
	if t.UserID, err = id.ParseUserID(userID); err != nil {
		return nil, fmt.Errorf("user id column: %w", err)
	}
	if t.EventID, err = id.ParseEventID(eventID); err != nil {
		return nil, fmt.Errorf("event id column: %w", err)
	}
	t.ConsumedAt = consumedAt
	t.RevokedAt = revokedAt
	return &t, nil
}
