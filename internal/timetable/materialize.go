package timetable

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// SessionID derives the stable id of the index-th session of a subject.
func SessionID(subjectID string, index int) string {
	return subjectID + "_" + strconv.Itoa(index)
}

// splitIndex extracts the split index from a session id belonging to subjectID.
func splitIndex(subjectID, sessionID string) (int, bool) {
	suffix, ok := strings.CutPrefix(sessionID, subjectID+"_")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// ParseSplitPattern decodes a JSON array of positive block lengths.
func ParseSplitPattern(raw []byte) ([]int, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("%w: split pattern is empty", ErrInvalidSubject)
	}
	var pattern []int
	if err := json.Unmarshal(raw, &pattern); err != nil {
		return nil, fmt.Errorf("%w: split pattern %q: %v", ErrInvalidSubject, string(raw), err)
	}
	if len(pattern) == 0 {
		return nil, fmt.Errorf("%w: split pattern has no blocks", ErrInvalidSubject)
	}
	for i, block := range pattern {
		if block <= 0 {
			return nil, fmt.Errorf("%w: split pattern block %d must be positive, got %d", ErrInvalidSubject, i, block)
		}
	}
	return pattern, nil
}

// MaterializeInput is the state the materializer reconciles.
type MaterializeInput struct {
	Subjects []models.Subject
	Sessions []models.Session
	// RoomIDs, when non-nil, is used to verify fixed rooms exist.
	RoomIDs map[string]bool
}

// MaterializeCounts summarises a plan.
type MaterializeCounts struct {
	Created  int
	Updated  int
	Skipped  int
	Deleted  int
	Rejected int
}

// MaterializePlan is the full batch of writes produced by one materialization.
// It must be applied atomically.
type MaterializePlan struct {
	Create []models.Session
	Update []models.Session
	Delete []string
	Counts MaterializeCounts
	Issues []Issue
}

// Empty reports whether applying the plan writes nothing.
func (p MaterializePlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// PlanMaterialization expands every subject's split pattern into sessions.
// Fixed subjects are pinned to their configured day/start/room; for other
// subjects only the duration is reconciled and existing placements are kept
// unless the new duration runs them past the last slot.
// Sessions of deleted subjects, and sessions beyond a shrunken pattern, are
// deleted. A malformed subject is reported and left untouched.
func PlanMaterialization(in MaterializeInput) MaterializePlan {
	var plan MaterializePlan

	subjects := make([]models.Subject, len(in.Subjects))
	copy(subjects, in.Subjects)
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })

	existing := make(map[string]models.Session, len(in.Sessions))
	bySubject := make(map[string][]models.Session)
	for _, sess := range in.Sessions {
		existing[sess.ID] = sess
		bySubject[sess.SubjectID] = append(bySubject[sess.SubjectID], sess)
	}

	known := make(map[string]bool, len(subjects))
	for _, subject := range subjects {
		known[subject.ID] = true

		pattern, err := ParseSplitPattern(subject.SplitPattern)
		if err == nil && subject.IsFixed {
			err = validateFixed(subject, pattern, in.RoomIDs)
		}
		if err != nil {
			plan.Issues = append(plan.Issues, Issue{SubjectID: subject.ID, EntityID: subject.ID, Kind: issueKind(err), Err: err})
			plan.Counts.Rejected++
			continue
		}

		for idx, duration := range pattern {
			id := SessionID(subject.ID, idx)
			current, ok := existing[id]
			if !ok {
				plan.Create = append(plan.Create, newSession(subject, id, duration))
				plan.Counts.Created++
				continue
			}
			next, changed := reconcile(subject, current, duration)
			if !changed {
				plan.Counts.Skipped++
				continue
			}
			plan.Update = append(plan.Update, next)
			plan.Counts.Updated++
		}

		for _, sess := range bySubject[subject.ID] {
			if idx, ok := splitIndex(subject.ID, sess.ID); !ok || idx >= len(pattern) {
				plan.Delete = append(plan.Delete, sess.ID)
			}
		}
	}

	for _, sess := range in.Sessions {
		if !known[sess.SubjectID] {
			plan.Delete = append(plan.Delete, sess.ID)
		}
	}
	sort.Strings(plan.Delete)
	plan.Counts.Deleted = len(plan.Delete)

	return plan
}

func validateFixed(subject models.Subject, pattern []int, rooms map[string]bool) error {
	if subject.FixedDay == nil || !subject.FixedDay.Valid() {
		return fmt.Errorf("%w: fixed subject %s has no valid fixed day", ErrInvalidSubject, subject.ID)
	}
	if subject.FixedStart == nil {
		return fmt.Errorf("%w: fixed subject %s has no fixed start slot", ErrInvalidSubject, subject.ID)
	}
	if subject.FixedRoom == nil || *subject.FixedRoom == "" {
		return fmt.Errorf("%w: fixed subject %s has no fixed room", ErrInvalidSubject, subject.ID)
	}
	for _, duration := range pattern {
		r := Range{Day: *subject.FixedDay, Start: *subject.FixedStart, Duration: duration}
		if !r.Within(0, models.SlotsPerDay) {
			return fmt.Errorf("%w: fixed subject %s does not fit slots %d-%d", ErrInvalidSubject, subject.ID, r.Start, r.End()-1)
		}
	}
	if rooms != nil && !rooms[*subject.FixedRoom] {
		return fmt.Errorf("%w: fixed room %s of subject %s", ErrMissingReference, *subject.FixedRoom, subject.ID)
	}
	return nil
}

func newSession(subject models.Subject, id string, duration int) models.Session {
	sess := models.Session{ID: id, SubjectID: subject.ID, Duration: duration}
	if subject.IsFixed {
		pin(&sess, subject)
	}
	return sess
}

func reconcile(subject models.Subject, current models.Session, duration int) (models.Session, bool) {
	next := current
	next.Duration = duration
	if subject.IsFixed {
		pin(&next, subject)
	} else if next.Placed() && next.StartSlot != nil && !(Range{Day: *next.Day, Start: *next.StartSlot, Duration: duration}).Within(0, models.SlotsPerDay) {
		// A longer block that no longer fits where it sat goes back to the pool.
		next.Day, next.StartSlot, next.RoomID = nil, nil, nil
	}
	changed := next.Duration != current.Duration ||
		!sameDay(next.Day, current.Day) ||
		!sameInt(next.StartSlot, current.StartSlot) ||
		!sameString(next.RoomID, current.RoomID)
	return next, changed
}

func pin(sess *models.Session, subject models.Subject) {
	day := *subject.FixedDay
	start := *subject.FixedStart
	room := *subject.FixedRoom
	sess.Day = &day
	sess.StartSlot = &start
	sess.RoomID = &room
}

func sameDay(a, b *models.Day) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
