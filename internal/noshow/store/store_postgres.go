package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trustgate/internal/noshow"
	id "trustgate/pkg/domain"
	"trustgate/pkg/platform/sentinel"
)

// Postgres persists predictions in the noshow_predictions table. The feature
// snapshot is stored as JSONB keyed by the model version.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const predictionColumns = `id, user_id, event_id, probability, confidence,
	features, model_version, created_at, outcome, outcome_recorded_at`

func (s *Postgres) Append(ctx context.Context, p *noshow.Prediction) error {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return fmt.Errorf("encode feature snapshot: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO noshow_predictions
			(id, user_id, event_id, probability, confidence, features, model_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID.String(), p.UserID.String(), p.EventID.String(),
		p.Probability, p.Confidence, features, p.ModelVersion, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append prediction: %w", err)
	}
	return nil
}

func (s *Postgres) LatestByUserEvent(ctx context.Context, userID id.UserID, eventID id.EventID) (*noshow.Prediction, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+predictionColumns+` FROM noshow_predictions
		 WHERE user_id = $1 AND event_id = $2
		 ORDER BY created_at DESC LIMIT 1`,
		userID.String(), eventID.String(),
	)
	return scanPrediction(row)
}

func (s *Postgres) RecordOutcome(ctx context.Context, predictionID id.PredictionID, outcome noshow.Outcome, at time.Time, override bool) (*noshow.Prediction, error) {
	query := `
		UPDATE noshow_predictions
		SET outcome = $2, outcome_recorded_at = $3
		WHERE id = $1 AND outcome IS NULL
		RETURNING ` + predictionColumns
	if override {
		query = `
		UPDATE noshow_predictions
		SET outcome = $2, outcome_recorded_at = $3
		WHERE id = $1
		RETURNING ` + predictionColumns
	}

	row := s.pool.QueryRow(ctx, query, predictionID.String(), string(outcome), at)
	p, err := scanPrediction(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	// No row matched: distinguish unknown from already recorded.
	var exists bool
	if qErr := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM noshow_predictions WHERE id = $1)`,
		predictionID.String(),
	).Scan(&exists); qErr == nil && exists {
		return nil, fmt.Errorf("outcome already recorded: %w", sentinel.ErrConflict)
	}
	return nil, fmt.Errorf("prediction not found: %w", sentinel.ErrNotFound)
}

func scanPrediction(row pgx.Row) (*noshow.Prediction, error) {
	var (
		p          noshow.Prediction
		rawID      string
		rawUserID  string
		rawEventID string
		features   []byte
		outcome    *string
	)

	err := row.Scan(&rawID, &rawUserID, &rawEventID, &p.Probability, &p.Confidence,
		&features, &p.ModelVersion, &p.CreatedAt, &outcome, &p.OutcomeRecordedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("prediction not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan prediction: %w", err)
	}

	if p.ID, err = id.ParsePredictionID(rawID); err != nil {
		return nil, fmt.Errorf("parse prediction id: %w", err)
	}
	if p.UserID, err = id.ParseUserID(rawUserID); err != nil {
		return nil, fmt.Errorf("parse prediction user id: %w", err)
	}
	if p.EventID, err = id.ParseEventID(rawEventID); err != nil {
		return nil, fmt.Errorf("parse prediction event id: %w", err)
	}
	if err := json.Unmarshal(features, &p.Features); err != nil {
		return nil, fmt.Errorf("decode feature snapshot: %w", err)
	}
	if outcome != nil {
		o := noshow.Outcome(*outcome)
		p.Outcome = &o
	}
	return &p, nil
}
