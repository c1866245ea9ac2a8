package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/reward"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// Postgres keeps the ledger in verified_checkins and the derived state in
// reward_states. The (user_id, event_id) primary key makes RecordVerified
// idempotent.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) RecordVerified(ctx context.Context, userID id.UserID, eventID id.EventID, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO verified_checkins (user_id, event_id, verified_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_id) DO NOTHING`,
		userID.String(), eventID.String(), at,
	)
	if err != nil {
		return fmt.Errorf("record verified check-in: %w", err)
	}
	return nil
}

func (s *Postgres) CountSince(ctx context.Context, userID id.UserID, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM verified_checkins WHERE user_id = $1 AND verified_at >= $2`,
		userID.String(), since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count verified check-ins: %w", err)
	}
	return count, nil
}

func (s *Postgres) CountTotal(ctx context.Context, userID id.UserID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM verified_checkins WHERE user_id = $1`,
		userID.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count lifetime check-ins: %w", err)
	}
	return count, nil
}

func (s *Postgres) GetState(ctx context.Context, userID id.UserID) (*reward.State, error) {
	var (
		state     reward.State
		rawUserID string
		tier      string
		badge     string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, rolling_count, lifetime_count, tier, discount_percent,
		       gold_stacks, badge, updated_at
		FROM reward_states WHERE user_id = $1`,
		userID.String(),
	).Scan(&rawUserID, &state.RollingCount, &state.LifetimeCount, &tier,
		&state.DiscountPercent, &state.GoldStacks, &badge, &state.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reward state not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan reward state: %w", err)
	}

	if state.UserID, err = id.ParseUserID(rawUserID); err != nil {
		return nil, fmt.Errorf("parse reward user id: %w", err)
	}
	state.Tier = reward.Tier(tier)
	state.Badge = reward.Badge(badge)
	return &state, nil
}

func (s *Postgres) SaveState(ctx context.Context, state *reward.State) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO reward_states
			(user_id, rolling_count, lifetime_count, tier, discount_percent,
			 gold_stacks, badge, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			rolling_count = EXCLUDED.rolling_count,
			lifetime_count = EXCLUDED.lifetime_count,
			tier = EXCLUDED.tier,
			discount_percent = EXCLUDED.discount_percent,
			gold_stacks = EXCLUDED.gold_stacks,
			badge = EXCLUDED.badge,
			updated_at = EXCLUDED.updated_at`,
		state.UserID.String(), state.RollingCount, state.LifetimeCount,
		string(state.Tier), state.DiscountPercent, state.GoldStacks,
		string(state.Badge), state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save reward state: %w", err)
	}
	return nil
}
