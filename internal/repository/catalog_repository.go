package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

// CatalogRepository reads the reference data the timetable is built from:
// classes, subjects and the weekly slot grid.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs a CatalogRepository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListClasses returns all classes ordered by grade then name.
func (r *CatalogRepository) ListClasses(ctx context.Context) ([]models.Class, error) {
	query := `SELECT id, name, grade FROM classes ORDER BY grade ASC, name ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListSubjects returns all subjects ordered by name.
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]models.Subject, error) {
	query := `SELECT id, name, weekly_hours FROM subjects ORDER BY name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListTimeSlots returns the weekly slot grid ordered by day then period.
func (r *CatalogRepository) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	query := `SELECT id, day_of_week, period FROM time_slots ORDER BY day_of_week ASC, period ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}
