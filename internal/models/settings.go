package models

import "time"

// Settings holds department-wide scheduling switches.
type Settings struct {
	WorkStart            int       `db:"work_start" json:"work_start" validate:"min=0,max=14"`
	WorkEnd              int       `db:"work_end" json:"work_end" validate:"min=0,max=14,gtefield=WorkStart"`
	MaxContinuousHours   int       `db:"max_continuous_hours" json:"max_continuous_hours"`
	CheckRoomConstraints bool      `db:"check_room_constraints" json:"check_room_constraints"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultSettings mirrors the seeded settings row.
func DefaultSettings() Settings {
	return Settings{
		WorkStart:            0,
		WorkEnd:              13,
		MaxContinuousHours:   4,
		CheckRoomConstraints: true,
	}
}
