package models

import "time"

// Instructor teaches subjects; busy slots are loaded separately.
type Instructor struct {
	ID        string    `db:"id" json:"id"`
	Prefix    *string   `db:"prefix" json:"prefix,omitempty"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  *string   `db:"last_name" json:"last_name,omitempty"`
	Field     *string   `db:"field" json:"field,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// InstructorBusySlot marks an instructor unavailable at (day, slot).
type InstructorBusySlot struct {
	InstructorID string `db:"instructor_id" json:"instructor_id"`
	Day          Day    `db:"day" json:"day"`
	Slot         int    `db:"slot" json:"slot"`
}
