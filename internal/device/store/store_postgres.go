package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	id "trustgate/pkg/domain"
)

// Postgres persists sighting edges in the device_sightings table, keyed by
// (device_hash, user_id).
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Upsert(ctx context.Context, deviceHash string, userID id.UserID, at time.Time) (bool, error) {
	var known bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM device_sightings WHERE device_hash = $1)`,
		deviceHash,
	).Scan(&known)
	if err != nil {
		return false, fmt.Errorf("check device sighting: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO device_sightings (device_hash, user_id, first_seen, last_seen)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (device_hash, user_id)
		DO UPDATE SET last_seen = EXCLUDED.last_seen`,
		deviceHash, userID.String(), at,
	)
	if err != nil {
		return false, fmt.Errorf("upsert device sighting: %w", err)
	}
	return !known, nil
}

func (s *Postgres) CountUsers(ctx context.Context, deviceHash string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT user_id) FROM device_sightings WHERE device_hash = $1`,
		deviceHash,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count device users: %w", err)
	}
	return count, nil
}

func (s *Postgres) CountActiveDevices(ctx context.Context, userID id.UserID, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT device_hash) FROM device_sightings WHERE user_id = $1 AND last_seen >= $2`,
		userID.String(), since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active devices: %w", err)
	}
	return count, nil
}
