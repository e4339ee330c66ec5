package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// InstructorRepository reads instructors and their availability grid.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// List returns every instructor ordered by id.
func (r *InstructorRepository) List(ctx context.Context) ([]models.Instructor, error) {
	const query = `SELECT id, prefix, first_name, last_name, field, created_at, updated_at FROM instructors ORDER BY id ASC`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query); err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	return instructors, nil
}

// ListBusySlots returns every (instructor, day, slot) flagged unavailable.
func (r *InstructorRepository) ListBusySlots(ctx context.Context) ([]models.InstructorBusySlot, error) {
	const query = `SELECT instructor_id, day, slot FROM instructor_availability WHERE is_busy = TRUE ORDER BY instructor_id ASC, day ASC, slot ASC`
	var slots []models.InstructorBusySlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list instructor busy slots: %w", err)
	}
	return slots, nil
}
