package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// SessionRepository manages persistence for timetable sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, teacher_id, class_id, subject_id, time_slot_id, kind, locked, created_at, updated_at`

// List returns every session in the timetable.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions ORDER BY id ASC`, sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// UpdatePlacement rewrites the teacher and slot of one session.
func (r *SessionRepository) UpdatePlacement(ctx context.Context, exec sqlx.ExtContext, id, teacherID, timeSlotID string) error {
	query := `UPDATE sessions SET teacher_id = $1, time_slot_id = $2, updated_at = $3 WHERE id = $4`
	result, err := exec.ExecContext(ctx, query, teacherID, timeSlotID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update session placement %s: %w", id, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update session placement %s: no rows affected", id)
	}
	return nil
}

// ReplaceClass swaps out a class week inside the caller's transaction:
// sessions of the class not in the preserved set are deleted and the
// generated set is inserted.
func (r *SessionRepository) ReplaceClass(ctx context.Context, tx *sqlx.Tx, classID string, preserved []string, sessions []models.Session) error {
	if len(preserved) > 0 {
		query, args, err := sqlx.In(`DELETE FROM sessions WHERE class_id = ? AND id NOT IN (?)`, classID, preserved)
		if err != nil {
			return fmt.Errorf("build class delete query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(query), args...); err != nil {
			return fmt.Errorf("delete sessions for class %s: %w", classID, err)
		}
	} else {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sessions WHERE class_id = ?`), classID); err != nil {
			return fmt.Errorf("delete sessions for class %s: %w", classID, err)
		}
	}
	return r.insertSessions(ctx, tx, sessions)
}

// ReplaceAll rewrites the entire session table from the provided snapshot.
func (r *SessionRepository) ReplaceAll(ctx context.Context, tx *sqlx.Tx, sessions []models.Session) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return r.insertSessions(ctx, tx, sessions)
}

func (r *SessionRepository) insertSessions(ctx context.Context, tx *sqlx.Tx, sessions []models.Session) error {
	query := fmt.Sprintf(`INSERT INTO sessions (%s)
		VALUES (:id, :teacher_id, :class_id, :subject_id, :time_slot_id, :kind, :locked, :created_at, :updated_at)`, sessionColumns)
	for i := range sessions {
		if _, err := tx.NamedExecContext(ctx, query, &sessions[i]); err != nil {
			return fmt.Errorf("insert session %s: %w", sessions[i].ID, err)
		}
	}
	return nil
}
