package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// OperationRepository persists the append-only transfer log.
type OperationRepository struct {
	db *sqlx.DB
}

// NewOperationRepository constructs an OperationRepository.
func NewOperationRepository(db *sqlx.DB) *OperationRepository {
	return &OperationRepository{db: db}
}

// Insert appends one operation record inside the caller's transaction.
func (r *OperationRepository) Insert(ctx context.Context, exec sqlx.ExtContext, record *models.OperationRecord) error {
	query := `INSERT INTO operation_records (id, seq, session_id, class_id, subject_id, from_description, to_description, overridden_conflicts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := exec.ExecContext(ctx, query,
		record.ID, record.Seq, record.SessionID, record.ClassID, record.SubjectID,
		record.FromDescription, record.ToDescription, record.OverriddenConflicts, record.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert operation record %s: %w", record.ID, err)
	}
	return nil
}

// List returns the most recent records first.
func (r *OperationRepository) List(ctx context.Context, limit int) ([]models.OperationRecord, error) {
	query := `SELECT id, seq, session_id, class_id, subject_id, from_description, to_description, overridden_conflicts, created_at
		FROM operation_records ORDER BY created_at DESC, seq DESC LIMIT $1`
	var records []models.OperationRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("list operation records: %w", err)
	}
	return records, nil
}

// Clear empties the log.
func (r *OperationRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM operation_records`); err != nil {
		return fmt.Errorf("clear operation records: %w", err)
	}
	return nil
}
