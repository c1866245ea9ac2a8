package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/scanner"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// Postgres persists scanners in the scanners table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, sc *scanner.Scanner) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scanners (id, event_id, host_id, label, secret_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		sc.ID.String(), sc.EventID.String(), sc.HostID.String(),
		sc.Label, sc.SecretHash, sc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create scanner: %w", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, scannerID id.ScannerID) (*scanner.Scanner, error) {
	var (
		sc         scanner.Scanner
		rawID      string
		rawEventID string
		rawHostID  string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, event_id, host_id, label, secret_hash, created_at, last_used_at
		FROM scanners WHERE id = $1`,
		scannerID.String(),
	).Scan(&rawID, &rawEventID, &rawHostID, &sc.Label, &sc.SecretHash,
		&sc.CreatedAt, &sc.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("scanner not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan scanner row: %w", err)
	}

	if sc.ID, err = id.ParseScannerID(rawID); err != nil {
		return nil, fmt.Errorf("parse scanner id: %w", err)
	}
	if sc.EventID, err = id.ParseEventID(rawEventID); err != nil {
		return nil, fmt.Errorf("parse scanner event id: %w", err)
	}
	if sc.HostID, err = id.ParseUserID(rawHostID); err != nil {
		return nil, fmt.Errorf("parse scanner host id: %w", err)
	}
	return &sc, nil
}

func (s *Postgres) TouchUsed(ctx context.Context, scannerID id.ScannerID, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scanners SET last_used_at = $2 WHERE id = $1`,
		scannerID.String(), at,
	)
	if err != nil {
		return fmt.Errorf("touch scanner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("scanner not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
