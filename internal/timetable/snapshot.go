package timetable

import (
	"fmt"
	"sort"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// Entities is the raw bulk read of the entity store.
type Entities struct {
	Subjects           []models.Subject
	SubjectYearGroups  []models.SubjectYearGroup
	SubjectInstructors []models.SubjectInstructor
	YearGroups         []models.YearGroup
	Rooms              []models.Room
	Instructors        []models.Instructor
	BusySlots          []models.InstructorBusySlot
	Constraints        []models.DepartmentConstraint
	Settings           models.Settings
}

// SubjectInfo is a subject with its memberships resolved against the snapshot.
type SubjectInfo struct {
	ID          string
	Fixed       bool
	YearGroups  []string
	Instructors []string
	Headcount   int
}

// Snapshot is the read-only view the scheduler and manual placement consult.
type Snapshot struct {
	Subjects map[string]SubjectInfo
	// Rooms are ordered by capacity ascending, then id.
	Rooms    []models.Room
	Busy     map[string]*SlotMatrix
	Hard     SlotMatrix
	Soft     SlotMatrix
	Settings models.Settings

	roomIndex map[string]models.Room
}

// BuildSnapshot resolves entities into a Snapshot. Memberships pointing at
// unknown year-groups or instructors are dropped and reported.
func BuildSnapshot(e Entities) (*Snapshot, []Issue) {
	var issues []Issue

	snap := &Snapshot{
		Subjects:  make(map[string]SubjectInfo, len(e.Subjects)),
		Busy:      make(map[string]*SlotMatrix, len(e.Instructors)),
		Settings:  e.Settings,
		roomIndex: make(map[string]models.Room, len(e.Rooms)),
	}

	headcounts := make(map[string]int, len(e.YearGroups))
	for _, yg := range e.YearGroups {
		headcounts[yg.ID] = yg.Headcount
	}

	for _, inst := range e.Instructors {
		snap.Busy[inst.ID] = &SlotMatrix{}
	}
	for _, busy := range e.BusySlots {
		matrix, ok := snap.Busy[busy.InstructorID]
		if !ok {
			issues = append(issues, Issue{EntityID: busy.InstructorID, Kind: IssueNotFound,
				Err: fmt.Errorf("%w: busy slot for instructor %s", ErrMissingReference, busy.InstructorID)})
			continue
		}
		if !matrix.Set(busy.Day, busy.Slot) {
			issues = append(issues, Issue{EntityID: busy.InstructorID, Kind: IssueValidation,
				Err: fmt.Errorf("busy slot %s/%d of instructor %s is outside the grid", busy.Day, busy.Slot, busy.InstructorID)})
		}
	}

	snap.Rooms = make([]models.Room, len(e.Rooms))
	copy(snap.Rooms, e.Rooms)
	sort.Slice(snap.Rooms, func(i, j int) bool {
		if snap.Rooms[i].Capacity == snap.Rooms[j].Capacity {
			return snap.Rooms[i].ID < snap.Rooms[j].ID
		}
		return snap.Rooms[i].Capacity < snap.Rooms[j].Capacity
	})
	for _, room := range snap.Rooms {
		snap.roomIndex[room.ID] = room
	}

	for _, c := range e.Constraints {
		switch c.Kind {
		case models.ConstraintHard:
			snap.Hard.Set(c.Day, c.Slot)
		case models.ConstraintSoft:
			snap.Soft.Set(c.Day, c.Slot)
		}
	}

	for _, subject := range e.Subjects {
		snap.Subjects[subject.ID] = SubjectInfo{ID: subject.ID, Fixed: subject.IsFixed}
	}
	for _, link := range sortedYearLinks(e.SubjectYearGroups) {
		info, ok := snap.Subjects[link.SubjectID]
		if !ok {
			continue
		}
		headcount, ok := headcounts[link.YearGroupID]
		if !ok {
			issues = append(issues, Issue{SubjectID: link.SubjectID, EntityID: link.YearGroupID, Kind: IssueNotFound,
				Err: fmt.Errorf("%w: year-group %s of subject %s", ErrMissingReference, link.YearGroupID, link.SubjectID)})
			continue
		}
		info.YearGroups = append(info.YearGroups, link.YearGroupID)
		info.Headcount += headcount
		snap.Subjects[link.SubjectID] = info
	}
	for _, link := range sortedInstructorLinks(e.SubjectInstructors) {
		info, ok := snap.Subjects[link.SubjectID]
		if !ok {
			continue
		}
		if _, ok := snap.Busy[link.InstructorID]; !ok {
			issues = append(issues, Issue{SubjectID: link.SubjectID, EntityID: link.InstructorID, Kind: IssueNotFound,
				Err: fmt.Errorf("%w: instructor %s of subject %s", ErrMissingReference, link.InstructorID, link.SubjectID)})
			continue
		}
		info.Instructors = append(info.Instructors, link.InstructorID)
		snap.Subjects[link.SubjectID] = info
	}

	return snap, issues
}

// Room looks up a room by id.
func (s *Snapshot) Room(id string) (models.Room, bool) {
	room, ok := s.roomIndex[id]
	return room, ok
}

// InstructorsBusy reports whether any of the instructors is flagged busy during r.
func (s *Snapshot) InstructorsBusy(instructors []string, r Range) bool {
	for _, id := range instructors {
		if s.Busy[id].AnyIn(r) {
			return true
		}
	}
	return false
}

// BusyInstructors lists the instructors flagged busy during r.
func (s *Snapshot) BusyInstructors(instructors []string, r Range) []string {
	var busy []string
	for _, id := range instructors {
		if s.Busy[id].AnyIn(r) {
			busy = append(busy, id)
		}
	}
	return busy
}

// Congestion sums the busy-slot counts of the instructors.
func (s *Snapshot) Congestion(instructors []string) int {
	total := 0
	for _, id := range instructors {
		total += s.Busy[id].Count()
	}
	return total
}

// RoomFits reports whether the room passes the capacity rule for headcount.
func (s *Snapshot) RoomFits(room models.Room, headcount int) bool {
	return !s.Settings.CheckRoomConstraints || room.Capacity >= headcount
}

// Placement resolves a placed session. It returns false for unplaced sessions.
// Sessions whose subject is unknown still occupy their room.
func (s *Snapshot) Placement(sess models.Session) (Placement, bool) {
	if sess.Day == nil || sess.StartSlot == nil {
		return Placement{}, false
	}
	p := Placement{
		SessionID: sess.ID,
		SubjectID: sess.SubjectID,
		Range:     Range{Day: *sess.Day, Start: *sess.StartSlot, Duration: sess.Duration},
	}
	if sess.RoomID != nil {
		p.RoomID = *sess.RoomID
	}
	if info, ok := s.Subjects[sess.SubjectID]; ok {
		p.YearGroups = info.YearGroups
		p.Instructors = info.Instructors
	}
	return p, true
}

// Occupancy builds the index of every placed session.
func (s *Snapshot) Occupancy(sessions []models.Session) *Occupancy {
	occ := &Occupancy{}
	for _, sess := range sessions {
		if p, ok := s.Placement(sess); ok {
			occ.Add(p)
		}
	}
	return occ
}

func sortedYearLinks(links []models.SubjectYearGroup) []models.SubjectYearGroup {
	out := make([]models.SubjectYearGroup, len(links))
	copy(out, links)
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID == out[j].SubjectID {
			return out[i].YearGroupID < out[j].YearGroupID
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out
}

func sortedInstructorLinks(links []models.SubjectInstructor) []models.SubjectInstructor {
	out := make([]models.SubjectInstructor, len(links))
	copy(out, links)
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubjectID == out[j].SubjectID {
			return out[i].InstructorID < out[j].InstructorID
		}
		return out[i].SubjectID < out[j].SubjectID
	})
	return out
}
