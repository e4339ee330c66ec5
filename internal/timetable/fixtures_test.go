package timetable

import (
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

type subjectFixture struct {
	id          string
	pattern     string
	fixed       bool
	fixedDay    models.Day
	fixedStart  int
	fixedRoom   string
	years       []string
	instructors []string
}

func (f subjectFixture) model() models.Subject {
	subject := models.Subject{ID: f.id, Code: f.id, Section: "1", Name: f.id, SplitPattern: types.JSONText(f.pattern), IsFixed: f.fixed}
	if f.fixed {
		day, start, room := f.fixedDay, f.fixedStart, f.fixedRoom
		subject.FixedDay = &day
		subject.FixedStart = &start
		subject.FixedRoom = &room
	}
	return subject
}

func newEntities(settings models.Settings, subjects ...subjectFixture) Entities {
	e := Entities{Settings: settings}
	seenYears := map[string]bool{}
	seenInstructors := map[string]bool{}
	for _, f := range subjects {
		e.Subjects = append(e.Subjects, f.model())
		for _, y := range f.years {
			e.SubjectYearGroups = append(e.SubjectYearGroups, models.SubjectYearGroup{SubjectID: f.id, YearGroupID: y})
			if !seenYears[y] {
				seenYears[y] = true
				e.YearGroups = append(e.YearGroups, models.YearGroup{ID: y, Name: y, Headcount: 40})
			}
		}
		for _, inst := range f.instructors {
			e.SubjectInstructors = append(e.SubjectInstructors, models.SubjectInstructor{SubjectID: f.id, InstructorID: inst, Ratio: 100 / len(f.instructors)})
			if !seenInstructors[inst] {
				seenInstructors[inst] = true
				e.Instructors = append(e.Instructors, models.Instructor{ID: inst, FirstName: inst})
			}
		}
	}
	return e
}

func floatingSession(subjectID string, index, duration int) models.Session {
	return models.Session{ID: SessionID(subjectID, index), SubjectID: subjectID, Duration: duration}
}

func placedSession(subjectID string, index, duration int, day models.Day, start int, room string) models.Session {
	sess := floatingSession(subjectID, index, duration)
	sess.Day = &day
	sess.StartSlot = &start
	sess.RoomID = &room
	return sess
}

func strPtr(v string) *string { return &v }
