package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fieldtrack-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ActivityCounts holds today's per-officer activity tallies.
type ActivityCounts struct {
	Meetings int
	Samples  int
	Sales    int
}

// Store persists work sessions. The Postgres implementation enforces the
// one-active-session-per-user-per-day invariant with a partial unique index,
// so Create is safe against concurrent start-day calls across processes.
type Store interface {
	Create(ctx context.Context, s *models.WorkSession) error
	Close(ctx context.Context, s *models.WorkSession) error
	ActiveByUserAndDate(ctx context.Context, userID, date string) (*models.WorkSession, error)
	LatestByUserAndDate(ctx context.Context, userID, date string) (*models.WorkSession, error)
	CountActivity(ctx context.Context, userID string, since int64) (ActivityCounts, error)
}

// PostgresStore implements Store over sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) Create(ctx context.Context, s *models.WorkSession) error {
	query := `INSERT INTO work_sessions
		(id, user_id, date, start_time, start_lat, start_lng, total_distance, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Date, s.StartTime, s.StartLat, s.StartLng,
		s.TotalDistance, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			// The partial unique index fired: a concurrent or earlier
			// start-day already holds today's active session.
			return ErrDayAlreadyStarted
		}
		return fmt.Errorf("inserting work session: %w", err)
	}
	return nil
}

// Close writes the end-of-day fields. The is_active guard in the WHERE clause
// makes the active-to-closed transition atomic: a concurrent close loses the
// race and reports ErrNoActiveDay instead of overwriting the distance.
func (r *PostgresStore) Close(ctx context.Context, s *models.WorkSession) error {
	query := `UPDATE work_sessions
		SET end_time = $1, end_lat = $2, end_lng = $3, total_distance = $4,
			is_active = FALSE, updated_at = $5
		WHERE id = $6 AND is_active`
	result, err := r.db.ExecContext(ctx, query,
		s.EndTime, s.EndLat, s.EndLng, s.TotalDistance, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("closing work session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("closing work session: %w", err)
	}
	if rows == 0 {
		return ErrNoActiveDay
	}
	return nil
}

func (r *PostgresStore) ActiveByUserAndDate(ctx context.Context, userID, date string) (*models.WorkSession, error) {
	var s models.WorkSession
	query := `SELECT * FROM work_sessions
		WHERE user_id = $1 AND date = $2 AND is_active
		LIMIT 1`
	if err := r.db.GetContext(ctx, &s, query, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting active work session: %w", err)
	}
	return &s, nil
}

// LatestByUserAndDate returns the most recently created session for the day.
// Ordering is by creation recency, not end time, so a future second same-day
// session would drive the summary instead of the first one.
func (r *PostgresStore) LatestByUserAndDate(ctx context.Context, userID, date string) (*models.WorkSession, error) {
	var s models.WorkSession
	query := `SELECT * FROM work_sessions
		WHERE user_id = $1 AND date = $2
		ORDER BY created_at DESC
		LIMIT 1`
	if err := r.db.GetContext(ctx, &s, query, userID, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting latest work session: %w", err)
	}
	return &s, nil
}

func (r *PostgresStore) CountActivity(ctx context.Context, userID string, since int64) (ActivityCounts, error) {
	var counts ActivityCounts
	queries := []struct {
		dest  *int
		query string
	}{
		{&counts.Meetings, `SELECT COUNT(*) FROM meetings WHERE user_id = $1 AND timestamp >= $2`},
		{&counts.Samples, `SELECT COUNT(*) FROM samples WHERE user_id = $1 AND recorded_at >= $2`},
		{&counts.Sales, `SELECT COUNT(*) FROM sales WHERE user_id = $1 AND recorded_at >= $2`},
	}
	for _, q := range queries {
		if err := r.db.GetContext(ctx, q.dest, q.query, userID, since); err != nil {
			return ActivityCounts{}, fmt.Errorf("counting activity: %w", err)
		}
	}
	return counts, nil
}
