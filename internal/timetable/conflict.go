package timetable

// Dimension names the resource two placements collide on.
type Dimension string

const (
	DimensionRoom       Dimension = "ROOM"
	DimensionYearGroup  Dimension = "YEAR_GROUP"
	DimensionInstructor Dimension = "INSTRUCTOR"
)

// Placement is an already-placed session with its relationships resolved.
type Placement struct {
	SessionID   string
	SubjectID   string
	Range       Range
	RoomID      string
	YearGroups  []string
	Instructors []string
}

// Candidate is a proposed placement. An empty RoomID skips the room dimension.
type Candidate struct {
	SessionID   string
	Range       Range
	RoomID      string
	YearGroups  []string
	Instructors []string
}

// Conflict describes the first collision found for a candidate.
type Conflict struct {
	With      Placement
	Dimension Dimension
}

// FirstConflict returns the first placed session that overlaps the candidate
// in time and shares its room, a year-group or an instructor. Placements of
// the candidate's own session are ignored so a placed session can be moved.
func FirstConflict(c Candidate, placed []Placement) (Conflict, bool) {
	for _, p := range placed {
		if c.SessionID != "" && p.SessionID == c.SessionID {
			continue
		}
		if !c.Range.Overlaps(p.Range) {
			continue
		}
		if c.RoomID != "" && p.RoomID == c.RoomID {
			return Conflict{With: p, Dimension: DimensionRoom}, true
		}
		if intersects(c.YearGroups, p.YearGroups) {
			return Conflict{With: p, Dimension: DimensionYearGroup}, true
		}
		if intersects(c.Instructors, p.Instructors) {
			return Conflict{With: p, Dimension: DimensionInstructor}, true
		}
	}
	return Conflict{}, false
}

// Conflicts reports whether the candidate collides with any placed session.
func Conflicts(c Candidate, placed []Placement) bool {
	_, found := FirstConflict(c, placed)
	return found
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
