package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// CoverageRepository persists confirmed coverage assignments.
type CoverageRepository struct {
	db *sqlx.DB
}

// NewCoverageRepository constructs a CoverageRepository.
func NewCoverageRepository(db *sqlx.DB) *CoverageRepository {
	return &CoverageRepository{db: db}
}

// InsertBatch writes confirmed assignments under one batch id inside the
// caller's transaction.
func (r *CoverageRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, batchID string, assignments []models.Assignment) error {
	query := `INSERT INTO coverage_assignments (id, batch_id, period, class_label, subject, assignee_id, assignee_name, source, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	now := time.Now().UTC()
	for i := range assignments {
		a := assignments[i]
		if _, err := exec.ExecContext(ctx, query,
			uuid.NewString(), batchID, a.Period, a.ClassLabel, a.Subject,
			a.AssigneeID, a.AssigneeName, a.Source, a.Status, now,
		); err != nil {
			return fmt.Errorf("insert coverage assignment period %d: %w", a.Period, err)
		}
	}
	return nil
}

// ListByBatch returns the persisted assignments of one batch.
func (r *CoverageRepository) ListByBatch(ctx context.Context, batchID string) ([]models.Assignment, error) {
	query := `SELECT period, class_label, subject, assignee_id, assignee_name, source, status
		FROM coverage_assignments WHERE batch_id = $1 ORDER BY period ASC`
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, batchID); err != nil {
		return nil, fmt.Errorf("list coverage assignments for batch %s: %w", batchID, err)
	}
	return assignments, nil
}
