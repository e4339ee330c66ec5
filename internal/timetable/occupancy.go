package timetable

import "github.com/noah-isme/dept-timetable-api/internal/models"

// Occupancy indexes placed sessions per day. A pass threads one Occupancy
// through the scan and adds each placement right after it is committed.
type Occupancy struct {
	byDay [len(models.Days)][]Placement
	size  int
}

// NewOccupancy seeds the index with existing placements.
func NewOccupancy(placed []Placement) *Occupancy {
	occ := &Occupancy{}
	for _, p := range placed {
		occ.Add(p)
	}
	return occ
}

// Add records a placement. Placements on unknown days are dropped.
func (o *Occupancy) Add(p Placement) {
	d := p.Range.Day.Index()
	if d < 0 {
		return
	}
	o.byDay[d] = append(o.byDay[d], p)
	o.size++
}

// Len returns the number of indexed placements.
func (o *Occupancy) Len() int {
	return o.size
}

// On returns the placements recorded for day.
func (o *Occupancy) On(day models.Day) []Placement {
	d := day.Index()
	if d < 0 {
		return nil
	}
	return o.byDay[d]
}

// All returns every placement in day order.
func (o *Occupancy) All() []Placement {
	all := make([]Placement, 0, o.size)
	for d := range o.byDay {
		all = append(all, o.byDay[d]...)
	}
	return all
}

// FirstConflict evaluates the candidate against the placements of its day.
func (o *Occupancy) FirstConflict(c Candidate) (Conflict, bool) {
	return FirstConflict(c, o.On(c.Range.Day))
}

// CohortFree reports whether no overlapping placement shares a year-group or
// instructor with the candidate. The room dimension is not considered.
func (o *Occupancy) CohortFree(c Candidate) bool {
	c.RoomID = ""
	_, found := o.FirstConflict(c)
	return !found
}

// RoomFree reports whether roomID is unused by other sessions during r.
func (o *Occupancy) RoomFree(sessionID, roomID string, r Range) bool {
	_, found := o.FirstConflict(Candidate{SessionID: sessionID, Range: r, RoomID: roomID})
	return !found
}
