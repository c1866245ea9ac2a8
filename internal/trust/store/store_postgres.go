package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/trust"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// Postgres persists trust profiles in the trust_profiles table. Execute runs
// inside a transaction with SELECT ... FOR UPDATE so concurrent adjustments to
// one user serialize on the row lock.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const profileColumns = `user_id, score, valid_count, suspicious_count, fraudulent_count, last_penalty_at, updated_at`

func (s *Postgres) Get(ctx context.Context, userID id.UserID) (*trust.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM trust_profiles WHERE user_id = $1`,
		userID.String(),
	)
	return scanProfile(row)
}

func (s *Postgres) Execute(ctx context.Context, userID id.UserID, fn func(*trust.Profile) error) (*trust.Profile, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin trust update: %w", err)
	}
	defer tx.Rollback(ctx)

	// Seed the default row first so FOR UPDATE always has something to lock.
	_, err = tx.Exec(ctx, `
		INSERT INTO trust_profiles (user_id, score, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO NOTHING`,
		userID.String(), trust.DefaultScore,
	)
	if err != nil {
		return nil, fmt.Errorf("seed trust profile: %w", err)
	}

	row := tx.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM trust_profiles WHERE user_id = $1 FOR UPDATE`,
		userID.String(),
	)
	p, err := scanProfile(row)
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE trust_profiles
		SET score = $2, valid_count = $3, suspicious_count = $4,
		    fraudulent_count = $5, last_penalty_at = $6, updated_at = $7
		WHERE user_id = $1`,
		p.UserID.String(), p.Score, p.ValidCount, p.SuspiciousCount,
		p.FraudulentCount, p.LastPenaltyAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update trust profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit trust update: %w", err)
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*trust.Profile, error) {
	var p trust.Profile
	var rawUserID string
	err := row.Scan(&rawUserID, &p.Score, &p.ValidCount, &p.SuspiciousCount,
		&p.FraudulentCount, &p.LastPenaltyAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trust profile not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan trust profile: %w", err)
	}
	userID, err := id.ParseUserID(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("parse profile user id: %w", err)
	}
	p.UserID = userID
	return &p, nil
}
