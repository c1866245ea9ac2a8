package checkin

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// PostgresDirectory reads event metadata from the events table, which is
// synced from the event catalog service.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgresDirectory(pool *pgxpool.Pool) *PostgresDirectory {
	return &PostgresDirectory{pool: pool}
}

func (d *PostgresDirectory) Lookup(ctx context.Context, eventID id.EventID) (*EventInfo, error) {
	var (
		info    EventInfo
		rawID   string
		rawHost string
	)
	err := d.pool.QueryRow(ctx, `
		SELECT id, host_id, start_time, venue_latitude, venue_longitude, require_host_confirmation
		FROM events WHERE id = $1`, eventID.String(),
	).Scan(&rawID, &rawHost, &info.StartTime, &info.Venue.Latitude, &info.Venue.Longitude, &info.RequireHostConfirmation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", eventID, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("lookup event: %w", err)
	}

	if info.ID, err = id.ParseEventID(rawID); err != nil {
		return nil, fmt.Errorf("parse event id: %w", err)
	}
	if info.HostID, err = id.ParseUserID(rawHost); err != nil {
		return nil, fmt.Errorf("parse host id: %w", err)
	}
	return &info, nil
}
