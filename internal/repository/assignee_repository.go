package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// AssigneeRepository manages persistence for coverage-eligible staff.
type AssigneeRepository struct {
	db *sqlx.DB
}

// NewAssigneeRepository constructs an AssigneeRepository.
func NewAssigneeRepository(db *sqlx.DB) *AssigneeRepository {
	return &AssigneeRepository{db: db}
}

// ListAvailable returns staff marked available for coverage duty, ordered by
// name so allocation passes are deterministic.
func (r *AssigneeRepository) ListAvailable(ctx context.Context) ([]models.Assignee, error) {
	query := `SELECT id, full_name, expertise, role, basic_quota, waiting_quota, current_load, available, created_at, updated_at
		FROM assignees
		WHERE available = TRUE
		ORDER BY full_name ASC, id ASC`
	var assignees []models.Assignee
	if err := r.db.SelectContext(ctx, &assignees, query); err != nil {
		return nil, fmt.Errorf("list available assignees: %w", err)
	}
	return assignees, nil
}

// ListNames returns a lookup of assignee id to display name.
func (r *AssigneeRepository) ListNames(ctx context.Context) (map[string]string, error) {
	query := `SELECT id, full_name FROM assignees`
	rows := []struct {
		ID       string `db:"id"`
		FullName string `db:"full_name"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list assignee names: %w", err)
	}
	names := make(map[string]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.FullName
	}
	return names, nil
}

// UpdateLoads writes the current load for each assignee. Runs inside the
// caller's transaction so load updates commit atomically with the batch.
func (r *AssigneeRepository) UpdateLoads(ctx context.Context, exec sqlx.ExtContext, assignees []models.Assignee) error {
	query := `UPDATE assignees SET current_load = $1, updated_at = $2 WHERE id = $3`
	now := time.Now().UTC()
	for i := range assignees {
		if _, err := exec.ExecContext(ctx, query, assignees[i].CurrentLoad, now, assignees[i].ID); err != nil {
			return fmt.Errorf("update load for assignee %s: %w", assignees[i].ID, err)
		}
	}
	return nil
}
