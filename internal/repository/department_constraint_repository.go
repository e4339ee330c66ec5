package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// DepartmentConstraintRepository reads the department policy grid.
type DepartmentConstraintRepository struct {
	db *sqlx.DB
}

// NewDepartmentConstraintRepository constructs the repository.
func NewDepartmentConstraintRepository(db *sqlx.DB) *DepartmentConstraintRepository {
	return &DepartmentConstraintRepository{db: db}
}

// List returns every constrained cell.
func (r *DepartmentConstraintRepository) List(ctx context.Context) ([]models.DepartmentConstraint, error) {
	const query = `SELECT day, slot, constraint_type FROM department_constraints ORDER BY day ASC, slot ASC`
	var constraints []models.DepartmentConstraint
	if err := r.db.SelectContext(ctx, &constraints, query); err != nil {
		return nil, fmt.Errorf("list department constraints: %w", err)
	}
	return constraints, nil
}
