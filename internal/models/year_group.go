package models

import "time"

// YearGroup is a student cohort that attends subjects together.
type YearGroup struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Headcount int       `db:"headcount" json:"headcount"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
