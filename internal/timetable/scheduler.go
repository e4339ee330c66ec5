package timetable

import (
	"context"
	"fmt"
	"sort"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// CommitFunc persists one placement. A returned error leaves the session
// unplaced and does not stop the pass.
type CommitFunc func(ctx context.Context, sess models.Session, day models.Day, start int, roomID string) error

// PlacedSession is a session placed during a pass.
type PlacedSession struct {
	SessionID string
	SubjectID string
	Day       models.Day
	Start     int
	Duration  int
	RoomID    string
}

// Failure is a placement that was found but could not be committed.
type Failure struct {
	SessionID string
	Err       error
}

// Result is the outcome of one auto-assign pass. An incomplete result is not an error.
type Result struct {
	Placed   []PlacedSession
	Unplaced []string
	Failures []Failure
	Ignored  []Issue
}

// Scheduler places floating sessions greedily in priority order, first fit,
// never revisiting an earlier decision.
type Scheduler struct {
	snapshot *Snapshot
}

// NewScheduler returns a scheduler reading from snap.
func NewScheduler(snap *Snapshot) *Scheduler {
	return &Scheduler{snapshot: snap}
}

// Order returns the sessions in placement priority: longer first, then larger
// cohort, then more congested instructors, then id for a stable total order.
func (s *Scheduler) Order(sessions []models.Session) []models.Session {
	type keyed struct {
		sess       models.Session
		headcount  int
		congestion int
	}
	items := make([]keyed, len(sessions))
	for i, sess := range sessions {
		info := s.snapshot.Subjects[sess.SubjectID]
		items[i] = keyed{sess: sess, headcount: info.Headcount, congestion: s.snapshot.Congestion(info.Instructors)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.sess.Duration != b.sess.Duration {
			return a.sess.Duration > b.sess.Duration
		}
		if a.headcount != b.headcount {
			return a.headcount > b.headcount
		}
		if a.congestion != b.congestion {
			return a.congestion > b.congestion
		}
		return a.sess.ID < b.sess.ID
	})
	ordered := make([]models.Session, len(items))
	for i, item := range items {
		ordered[i] = item.sess
	}
	return ordered
}

// Run places the floating sessions against occ, which must already contain
// every placed session. occ is updated after each committed placement so later
// sessions observe it. ctx is checked between sessions only; on cancellation
// the partial result is returned with the context error.
func (s *Scheduler) Run(ctx context.Context, floating []models.Session, occ *Occupancy, commit CommitFunc) (Result, error) {
	var result Result

	candidates := make([]models.Session, 0, len(floating))
	for _, sess := range floating {
		if sess.Placed() {
			continue
		}
		info, ok := s.snapshot.Subjects[sess.SubjectID]
		if !ok {
			result.Ignored = append(result.Ignored, Issue{SubjectID: sess.SubjectID, EntityID: sess.ID, Kind: IssueNotFound,
				Err: fmt.Errorf("%w: subject %s of session %s", ErrMissingReference, sess.SubjectID, sess.ID)})
			result.Unplaced = append(result.Unplaced, sess.ID)
			continue
		}
		if info.Fixed {
			result.Ignored = append(result.Ignored, Issue{SubjectID: sess.SubjectID, EntityID: sess.ID, Kind: IssueValidation,
				Err: fmt.Errorf("%w: session %s belongs to fixed subject %s", ErrInvalidSubject, sess.ID, sess.SubjectID)})
			result.Unplaced = append(result.Unplaced, sess.ID)
			continue
		}
		candidates = append(candidates, sess)
	}

	ordered := s.Order(candidates)
	for i, sess := range ordered {
		if err := ctx.Err(); err != nil {
			for _, rest := range ordered[i:] {
				result.Unplaced = append(result.Unplaced, rest.ID)
			}
			return result, err
		}

		placement, ok := s.Find(sess, occ)
		if !ok {
			result.Unplaced = append(result.Unplaced, sess.ID)
			continue
		}
		if err := commit(ctx, sess, placement.Range.Day, placement.Range.Start, placement.RoomID); err != nil {
			result.Failures = append(result.Failures, Failure{SessionID: sess.ID, Err: err})
			result.Unplaced = append(result.Unplaced, sess.ID)
			continue
		}
		occ.Add(placement)
		result.Placed = append(result.Placed, PlacedSession{
			SessionID: sess.ID,
			SubjectID: sess.SubjectID,
			Day:       placement.Range.Day,
			Start:     placement.Range.Start,
			Duration:  placement.Range.Duration,
			RoomID:    placement.RoomID,
		})
	}
	return result, nil
}

// Find returns the first (day, start, room) satisfying every hard check, in
// day order MON..SUN, then ascending start slot, then ascending room capacity.
// Soft department constraints are not consulted.
func (s *Scheduler) Find(sess models.Session, occ *Occupancy) (Placement, bool) {
	info := s.snapshot.Subjects[sess.SubjectID]
	settings := s.snapshot.Settings

	rooms := make([]models.Room, 0, len(s.snapshot.Rooms))
	for _, room := range s.snapshot.Rooms {
		if s.snapshot.RoomFits(room, info.Headcount) {
			rooms = append(rooms, room)
		}
	}
	if len(rooms) == 0 || sess.Duration <= 0 {
		return Placement{}, false
	}

	for _, day := range models.Days {
		for start := settings.WorkStart; start <= settings.WorkEnd-sess.Duration; start++ {
			r := Range{Day: day, Start: start, Duration: sess.Duration}
			if !r.Within(settings.WorkStart, settings.WorkEnd) {
				continue
			}
			if s.snapshot.Hard.AnyIn(r) {
				continue
			}
			if s.snapshot.InstructorsBusy(info.Instructors, r) {
				continue
			}
			cand := Candidate{SessionID: sess.ID, Range: r, YearGroups: info.YearGroups, Instructors: info.Instructors}
			if !occ.CohortFree(cand) {
				continue
			}
			for _, room := range rooms {
				if occ.RoomFree(sess.ID, room.ID, r) {
					return Placement{
						SessionID:   sess.ID,
						SubjectID:   sess.SubjectID,
						Range:       r,
						RoomID:      room.ID,
						YearGroups:  info.YearGroups,
						Instructors: info.Instructors,
					}, true
				}
			}
		}
	}
	return Placement{}, false
}
