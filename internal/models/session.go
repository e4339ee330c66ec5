package models

import "time"

// Session is one teaching block of a subject. It is unplaced while Day is nil.
type Session struct {
	ID        string    `db:"id" json:"id"`
	SubjectID string    `db:"subject_id" json:"subject_id"`
	Duration  int       `db:"duration" json:"duration"`
	Day       *Day      `db:"day" json:"day"`
	StartSlot *int      `db:"start_slot" json:"start_slot"`
	RoomID    *string   `db:"room_id" json:"room_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Placed reports whether the session has been assigned a day.
func (s Session) Placed() bool {
	return s.Day != nil
}
