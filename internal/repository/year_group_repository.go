package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// YearGroupRepository reads student cohorts.
type YearGroupRepository struct {
	db *sqlx.DB
}

// NewYearGroupRepository constructs the repository.
func NewYearGroupRepository(db *sqlx.DB) *YearGroupRepository {
	return &YearGroupRepository{db: db}
}

// List returns every year-group ordered by id.
func (r *YearGroupRepository) List(ctx context.Context) ([]models.YearGroup, error) {
	const query = `SELECT id, name, headcount, created_at, updated_at FROM year_groups ORDER BY id ASC`
	var groups []models.YearGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list year groups: %w", err)
	}
	return groups, nil
}
