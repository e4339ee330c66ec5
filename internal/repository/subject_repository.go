package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// SubjectRepository reads subjects and their memberships.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, code, section, name, credit, workload, split_pattern, is_fixed, fixed_day, fixed_start, fixed_room, created_at, updated_at`

// List returns every subject ordered by id.
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects ORDER BY id ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// ListYearGroups returns all subject to year-group links.
func (r *SubjectRepository) ListYearGroups(ctx context.Context) ([]models.SubjectYearGroup, error) {
	const query = `SELECT subject_id, year_group_id FROM subject_year_groups ORDER BY subject_id ASC, year_group_id ASC`
	var links []models.SubjectYearGroup
	if err := r.db.SelectContext(ctx, &links, query); err != nil {
		return nil, fmt.Errorf("list subject year groups: %w", err)
	}
	return links, nil
}

// ListInstructors returns all subject to instructor assignments.
func (r *SubjectRepository) ListInstructors(ctx context.Context) ([]models.SubjectInstructor, error) {
	const query = `SELECT subject_id, instructor_id, ratio FROM subject_instructors ORDER BY subject_id ASC, instructor_id ASC`
	var links []models.SubjectInstructor
	if err := r.db.SelectContext(ctx, &links, query); err != nil {
		return nil, fmt.Errorf("list subject instructors: %w", err)
	}
	return links, nil
}
