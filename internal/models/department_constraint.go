package models

// ConstraintKind is the department policy for a (day, slot) cell.
type ConstraintKind string

const (
	ConstraintHard ConstraintKind = "hard"
	ConstraintSoft ConstraintKind = "soft"
)

// DepartmentConstraint blocks (hard) or discourages (soft) a slot on a day.
type DepartmentConstraint struct {
	Day  Day            `db:"day" json:"day"`
	Slot int            `db:"slot" json:"slot"`
	Kind ConstraintKind `db:"constraint_type" json:"constraint_type"`
}
