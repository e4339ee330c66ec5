package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

func TestBuildSnapshotResolvesMemberships(t *testing.T) {
	e := newEntities(models.DefaultSettings(), subjectFixture{id: "A", pattern: `[1]`, years: []string{"Y2", "Y1"}, instructors: []string{"I1"}})
	e.Rooms = []models.Room{{ID: "B", Capacity: 30}, {ID: "A", Capacity: 30}, {ID: "C", Capacity: 10}}
	e.BusySlots = []models.InstructorBusySlot{{InstructorID: "I1", Day: models.DayTuesday, Slot: 4}}

	snap, issues := BuildSnapshot(e)

	require.Empty(t, issues)
	info := snap.Subjects["A"]
	assert.Equal(t, []string{"Y1", "Y2"}, info.YearGroups)
	assert.Equal(t, 80, info.Headcount)
	assert.Equal(t, []string{"I1"}, info.Instructors)
	assert.Equal(t, 1, snap.Congestion(info.Instructors))
	assert.True(t, snap.InstructorsBusy(info.Instructors, Range{Day: models.DayTuesday, Start: 3, Duration: 2}))
	assert.False(t, snap.InstructorsBusy(info.Instructors, Range{Day: models.DayTuesday, Start: 5, Duration: 2}))

	ids := []string{snap.Rooms[0].ID, snap.Rooms[1].ID, snap.Rooms[2].ID}
	assert.Equal(t, []string{"C", "A", "B"}, ids)
	room, ok := snap.Room("B")
	require.True(t, ok)
	assert.Equal(t, 30, room.Capacity)
}

func TestBuildSnapshotReportsDanglingReferences(t *testing.T) {
	e := newEntities(models.DefaultSettings(), subjectFixture{id: "A", pattern: `[1]`})
	e.SubjectYearGroups = []models.SubjectYearGroup{{SubjectID: "A", YearGroupID: "MISSING"}}
	e.SubjectInstructors = []models.SubjectInstructor{{SubjectID: "A", InstructorID: "NOBODY", Ratio: 100}}
	e.BusySlots = []models.InstructorBusySlot{{InstructorID: "NOBODY", Day: models.DayMonday, Slot: 0}}

	snap, issues := BuildSnapshot(e)

	require.Len(t, issues, 3)
	for _, issue := range issues {
		assert.Equal(t, IssueNotFound, issue.Kind)
		assert.ErrorIs(t, issue.Err, ErrMissingReference)
	}
	assert.Empty(t, snap.Subjects["A"].YearGroups)
	assert.Empty(t, snap.Subjects["A"].Instructors)
}

func TestSnapshotConstraintsAndPlacement(t *testing.T) {
	e := newEntities(models.DefaultSettings(), subjectFixture{id: "A", pattern: `[2]`, years: []string{"Y1"}})
	e.Constraints = []models.DepartmentConstraint{
		{Day: models.DayMonday, Slot: 1, Kind: models.ConstraintHard},
		{Day: models.DayFriday, Slot: 9, Kind: models.ConstraintSoft},
	}
	snap, _ := BuildSnapshot(e)

	assert.True(t, snap.Hard.Has(models.DayMonday, 1))
	assert.False(t, snap.Soft.Has(models.DayMonday, 1))
	assert.Equal(t, []int{9}, snap.Soft.FlaggedIn(Range{Day: models.DayFriday, Start: 8, Duration: 3}))

	_, ok := snap.Placement(floatingSession("A", 0, 2))
	assert.False(t, ok)

	p, ok := snap.Placement(placedSession("A", 0, 2, models.DayWednesday, 6, "R1"))
	require.True(t, ok)
	assert.Equal(t, Range{Day: models.DayWednesday, Start: 6, Duration: 2}, p.Range)
	assert.Equal(t, "R1", p.RoomID)
	assert.Equal(t, []string{"Y1"}, p.YearGroups)
}
