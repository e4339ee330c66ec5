package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Subject is a course section whose workload is split into teaching sessions.
type Subject struct {
	ID           string         `db:"id" json:"id"`
	Code         string         `db:"code" json:"code"`
	Section      string         `db:"section" json:"section"`
	Name         string         `db:"name" json:"name"`
	Credit       int            `db:"credit" json:"credit"`
	Workload     int            `db:"workload" json:"workload"`
	SplitPattern types.JSONText `db:"split_pattern" json:"split_pattern"`
	IsFixed      bool           `db:"is_fixed" json:"is_fixed"`
	FixedDay     *Day           `db:"fixed_day" json:"fixed_day,omitempty"`
	FixedStart   *int           `db:"fixed_start" json:"fixed_start,omitempty"`
	FixedRoom    *string        `db:"fixed_room" json:"fixed_room,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// SubjectYearGroup links a subject to an enrolled year-group.
type SubjectYearGroup struct {
	SubjectID   string `db:"subject_id" json:"subject_id"`
	YearGroupID string `db:"year_group_id" json:"year_group_id"`
}

// SubjectInstructor assigns an instructor to a subject with a workload ratio in percent.
type SubjectInstructor struct {
	SubjectID    string `db:"subject_id" json:"subject_id"`
	InstructorID string `db:"instructor_id" json:"instructor_id"`
	Ratio        int    `db:"ratio" json:"ratio"`
}
