package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// SessionRepository persists teaching sessions and their placements.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

const sessionColumns = `id, subject_id, duration, day, start_slot, room_id, created_at, updated_at`

// List returns every session ordered by id.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions ORDER BY id ASC`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListFloating returns the unplaced sessions ordered by id.
func (r *SessionRepository) ListFloating(ctx context.Context) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE day IS NULL ORDER BY id ASC`
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list floating sessions: %w", err)
	}
	return sessions, nil
}

// FindByID returns a session or sql.ErrNoRows.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`
	var sess models.Session
	if err := r.db.GetContext(ctx, &sess, query, id); err != nil {
		return nil, err
	}
	return &sess, nil
}

// InsertBatch creates sessions.
func (r *SessionRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO sessions (id, subject_id, duration, day, start_slot, room_id, created_at, updated_at)
VALUES (:id, :subject_id, :duration, :day, :start_slot, :room_id, :created_at, :updated_at)`

	for i := range sessions {
		sess := &sessions[i]
		if sess.CreatedAt.IsZero() {
			sess.CreatedAt = now
		}
		sess.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, sess); err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}
	}
	return nil
}

// UpdateBatch rewrites duration and placement of existing sessions.
func (r *SessionRepository) UpdateBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error {
	if len(sessions) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
UPDATE sessions
SET duration = :duration, day = :day, start_slot = :start_slot, room_id = :room_id, updated_at = :updated_at
WHERE id = :id`

	for i := range sessions {
		sess := &sessions[i]
		sess.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, sess); err != nil {
			return fmt.Errorf("update session %s: %w", sess.ID, err)
		}
	}
	return nil
}

// DeleteByIDs removes sessions.
func (r *SessionRepository) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `DELETE FROM sessions WHERE id = ANY($1)`
	if _, err := r.exec(exec).ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// UpdatePlacement writes day, start slot and room in one statement.
func (r *SessionRepository) UpdatePlacement(ctx context.Context, exec sqlx.ExtContext, id string, day models.Day, start int, roomID string) error {
	const query = `UPDATE sessions SET day = $2, start_slot = $3, room_id = $4, updated_at = $5 WHERE id = $1`
	res, err := r.exec(exec).ExecContext(ctx, query, id, day, start, roomID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update session placement: %w", err)
	}
	return requireRow(res)
}

// ClearPlacement returns a session to the unplaced pool.
func (r *SessionRepository) ClearPlacement(ctx context.Context, exec sqlx.ExtContext, id string) error {
	const query = `UPDATE sessions SET day = NULL, start_slot = NULL, room_id = NULL, updated_at = $2 WHERE id = $1`
	res, err := r.exec(exec).ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("clear session placement: %w", err)
	}
	return requireRow(res)
}

// ClearPlacements unplaces every session whose subject is not fixed and
// returns the number of sessions cleared.
func (r *SessionRepository) ClearPlacements(ctx context.Context, exec sqlx.ExtContext) (int64, error) {
	const query = `
UPDATE sessions SET day = NULL, start_slot = NULL, room_id = NULL, updated_at = $1
WHERE day IS NOT NULL
  AND subject_id NOT IN (SELECT id FROM subjects WHERE is_fixed = TRUE)`
	res, err := r.exec(exec).ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("clear session placements: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear session placements: %w", err)
	}
	return affected, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
