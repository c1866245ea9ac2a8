package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/risk"
	"trustgate/internal/verification"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// Postgres persists verification records in the verification_records table.
// The resolution block lives in nullable columns; the write-once guarantee is
// a conditional UPDATE on resolution_outcome IS NULL.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const recordColumns = `id, user_id, event_id, mode, decision, score, signals,
	device_hash, latitude, longitude, distance_km, created_at,
	resolution_outcome, resolution_by, resolution_note, resolved_at`

func (s *Postgres) Append(ctx context.Context, rec *verification.Record) error {
	signals := make([]string, len(rec.Signals))
	for i, sig := range rec.Signals {
		signals[i] = string(sig)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO verification_records
			(id, user_id, event_id, mode, decision, score, signals,
			 device_hash, latitude, longitude, distance_km, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID.String(), rec.UserID.String(), rec.EventID.String(),
		string(rec.Mode), string(rec.Decision), rec.Score, signals,
		rec.DeviceHash, rec.Latitude, rec.Longitude, rec.DistanceKm, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append verification record: %w", err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, recID id.VerificationID) (*verification.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM verification_records WHERE id = $1`,
		recID.String(),
	)
	return scanRecord(row)
}

func (s *Postgres) AttachResolution(ctx context.Context, recID id.VerificationID, res verification.ResolutionRecord) (*verification.Record, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE verification_records
		SET resolution_outcome = $2, resolution_by = $3, resolution_note = $4, resolved_at = $5
		WHERE id = $1 AND resolution_outcome IS NULL
		RETURNING `+recordColumns,
		recID.String(), string(res.Outcome), res.ResolvedBy, res.Note, res.ResolvedAt,
	)
	rec, err := scanRecord(row)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// No row matched: distinguish unknown from already resolved.
	if _, getErr := s.Get(ctx, recID); getErr == nil {
		return nil, fmt.Errorf("verification already resolved: %w", sentinel.ErrConflict)
	}
	return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID, limit int) ([]*verification.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM verification_records
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list verifications by user: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Postgres) ListByEvent(ctx context.Context, eventID id.EventID, limit int) ([]*verification.Record, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM verification_records
		 WHERE event_id = $1 ORDER BY created_at DESC LIMIT $2`,
		eventID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list verifications by event: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *Postgres) LastLocatedByUser(ctx context.Context, userID id.UserID) (*verification.Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM verification_records
		 WHERE user_id = $1 AND latitude IS NOT NULL AND longitude IS NOT NULL
		 ORDER BY created_at DESC LIMIT 1`,
		userID.String(),
	)
	return scanRecord(row)
}

func scanRecords(rows pgx.Rows) ([]*verification.Record, error) {
	var out []*verification.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification records: %w", err)
	}
	return out, nil
}

func scanRecord(row pgx.Row) (*verification.Record, error) {
	var (
		rec               verification.Record
		rawID             string
		rawUserID         string
		rawEventID        string
		mode              string
		decision          string
		signals           []string
		resolutionOutcome *string
		resolutionBy      *string
		resolutionNote    *string
		resolvedAt        *time.Time
	)

	err := row.Scan(&rawID, &rawUserID, &rawEventID, &mode, &decision, &rec.Score,
		&signals, &rec.DeviceHash, &rec.Latitude, &rec.Longitude, &rec.DistanceKm,
		&rec.CreatedAt, &resolutionOutcome, &resolutionBy, &resolutionNote, &resolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("verification not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan verification record: %w", err)
	}

	if rec.ID, err = id.ParseVerificationID(rawID); err != nil {
		return nil, fmt.Errorf("parse verification id: %w", err)
	}
	if rec.UserID, err = id.ParseUserID(rawUserID); err != nil {
		return nil, fmt.Errorf("parse verification user id: %w", err)
	}
	if rec.EventID, err = id.ParseEventID(rawEventID); err != nil {
		return nil, fmt.Errorf("parse verification event id: %w", err)
	}
	rec.Mode = risk.Mode(mode)
	rec.Decision = risk.Decision(decision)
	rec.Signals = make([]risk.Signal, len(signals))
	for i, sig := range signals {
		rec.Signals[i] = risk.Signal(sig)
	}
	if resolutionOutcome != nil {
		rec.Resolution = &verification.ResolutionRecord{
			Outcome:    risk.Resolution(*resolutionOutcome),
			ResolvedAt: *resolvedAt,
		}
		if resolutionBy != nil {
			rec.Resolution.ResolvedBy = *resolutionBy
		}
		if resolutionNote != nil {
			rec.Resolution.Note = *resolutionNote
		}
	}
	return &rec, nil
}
