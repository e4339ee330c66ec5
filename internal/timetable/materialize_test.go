package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

// applyPlan mimics the store applying a plan so idempotence can be checked.
func applyPlan(sessions []models.Session, plan MaterializePlan) []models.Session {
	byID := make(map[string]models.Session, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
	}
	for _, s := range plan.Create {
		byID[s.ID] = s
	}
	for _, s := range plan.Update {
		byID[s.ID] = s
	}
	for _, id := range plan.Delete {
		delete(byID, id)
	}
	out := make([]models.Session, 0, len(byID))
	for _, s := range byID {
		out = append(out, s)
	}
	return out
}

func TestParseSplitPattern(t *testing.T) {
	pattern, err := ParseSplitPattern([]byte(`[2,1]`))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, pattern)

	oversized, err := ParseSplitPattern([]byte(`[15]`))
	require.NoError(t, err, "blocks longer than a day are created and left unplaced")
	assert.Equal(t, []int{15}, oversized)

	for _, raw := range []string{``, `[]`, `[0]`, `[2,-1]`, `"3"`, `[3`} {
		_, err := ParseSplitPattern([]byte(raw))
		assert.ErrorIs(t, err, ErrInvalidSubject, raw)
	}
}

func TestPlanMaterializationCreatesDeterministicSessions(t *testing.T) {
	subject := subjectFixture{id: "CVE101", pattern: `[2,1]`}.model()

	plan := PlanMaterialization(MaterializeInput{Subjects: []models.Subject{subject}})

	require.Len(t, plan.Create, 2)
	assert.Equal(t, "CVE101_0", plan.Create[0].ID)
	assert.Equal(t, 2, plan.Create[0].Duration)
	assert.Equal(t, "CVE101_1", plan.Create[1].ID)
	assert.Equal(t, 1, plan.Create[1].Duration)
	for _, sess := range plan.Create {
		assert.False(t, sess.Placed())
		assert.Nil(t, sess.StartSlot)
		assert.Nil(t, sess.RoomID)
	}
	assert.Equal(t, MaterializeCounts{Created: 2}, plan.Counts)
}

func TestPlanMaterializationIsIdempotent(t *testing.T) {
	subjects := []models.Subject{
		subjectFixture{id: "A", pattern: `[3]`}.model(),
		subjectFixture{id: "B", pattern: `[2,2]`, fixed: true, fixedDay: models.DayFriday, fixedStart: 5, fixedRoom: "R1"}.model(),
	}

	first := PlanMaterialization(MaterializeInput{Subjects: subjects})
	assert.Equal(t, 3, first.Counts.Created)

	second := PlanMaterialization(MaterializeInput{Subjects: subjects, Sessions: applyPlan(nil, first)})
	assert.True(t, second.Empty())
	assert.Zero(t, second.Counts.Created)
	assert.Zero(t, second.Counts.Updated)
	assert.Equal(t, 3, second.Counts.Skipped)
}

func TestPlanMaterializationPinsFixedSubjects(t *testing.T) {
	fixed := subjectFixture{id: "LAB", pattern: `[3]`, fixed: true, fixedDay: models.DayThursday, fixedStart: 1, fixedRoom: "LAB1"}.model()
	stale := placedSession("LAB", 0, 2, models.DayMonday, 7, "R9")

	plan := PlanMaterialization(MaterializeInput{Subjects: []models.Subject{fixed}, Sessions: []models.Session{stale}, RoomIDs: map[string]bool{"LAB1": true}})

	require.Len(t, plan.Update, 1)
	updated := plan.Update[0]
	assert.Equal(t, models.DayThursday, *updated.Day)
	assert.Equal(t, 1, *updated.StartSlot)
	assert.Equal(t, "LAB1", *updated.RoomID)
	assert.Equal(t, 3, updated.Duration)
	assert.Equal(t, 1, plan.Counts.Updated)
}

func TestPlanMaterializationKeepsFloatingPlacement(t *testing.T) {
	subject := subjectFixture{id: "A", pattern: `[3,1]`}.model()
	placed := placedSession("A", 0, 2, models.DayTuesday, 4, "R2")
	floating := floatingSession("A", 1, 1)

	plan := PlanMaterialization(MaterializeInput{Subjects: []models.Subject{subject}, Sessions: []models.Session{placed, floating}})

	require.Len(t, plan.Update, 1)
	updated := plan.Update[0]
	assert.Equal(t, 3, updated.Duration)
	assert.Equal(t, models.DayTuesday, *updated.Day, "a placement that still fits is kept")
	assert.Equal(t, 4, *updated.StartSlot)
	assert.Equal(t, "R2", *updated.RoomID)
	assert.Equal(t, MaterializeCounts{Updated: 1, Skipped: 1}, plan.Counts)
}

func TestPlanMaterializationResizesOversizedBlock(t *testing.T) {
	subject := subjectFixture{id: "A", pattern: `[15]`}.model()
	placed := placedSession("A", 0, 2, models.DayTuesday, 4, "R2")

	plan := PlanMaterialization(MaterializeInput{Subjects: []models.Subject{subject}, Sessions: []models.Session{placed}})

	require.Empty(t, plan.Issues)
	require.Len(t, plan.Update, 1)
	updated := plan.Update[0]
	assert.Equal(t, "A_0", updated.ID)
	assert.Equal(t, 15, updated.Duration)
	assert.False(t, updated.Placed(), "a block that no longer fits returns to the pool")
	assert.Nil(t, updated.StartSlot)
	assert.Nil(t, updated.RoomID)

	created := PlanMaterialization(MaterializeInput{Subjects: []models.Subject{subject}})
	require.Len(t, created.Create, 1)
	assert.Equal(t, 15, created.Create[0].Duration)
}

func TestPlanMaterializationDeletesOrphansAndSurplus(t *testing.T) {
	subject := subjectFixture{id: "A", pattern: `[2]`}.model()
	sessions := []models.Session{
		floatingSession("A", 0, 2),
		floatingSession("A", 1, 1),
		placedSession("GONE", 0, 1, models.DayMonday, 0, "R1"),
	}

	plan := PlanMaterialization(MaterializeInput{Subjects: []models.Subject{subject}, Sessions: sessions})

	assert.Equal(t, []string{"A_1", "GONE_0"}, plan.Delete)
	assert.Equal(t, 2, plan.Counts.Deleted)
	assert.Equal(t, 1, plan.Counts.Skipped)
}

func TestPlanMaterializationSkipsMalformedSubjectOnly(t *testing.T) {
	bad := subjectFixture{id: "BAD", pattern: `not-json`}.model()
	good := subjectFixture{id: "GOOD", pattern: `[1]`}.model()
	existing := floatingSession("BAD", 0, 2)

	plan := PlanMaterialization(MaterializeInput{Subjects: []models.Subject{bad, good}, Sessions: []models.Session{existing}})

	require.Len(t, plan.Issues, 1)
	assert.Equal(t, "BAD", plan.Issues[0].SubjectID)
	assert.Equal(t, IssueValidation, plan.Issues[0].Kind)
	assert.ErrorIs(t, plan.Issues[0].Err, ErrInvalidSubject)
	assert.Equal(t, 1, plan.Counts.Rejected)
	assert.Equal(t, 1, plan.Counts.Created)
	assert.Empty(t, plan.Delete, "sessions of a rejected subject are left alone")
}

func TestPlanMaterializationRejectsIncompleteFixedSubject(t *testing.T) {
	noRoom := subjectFixture{id: "F1", pattern: `[2]`, fixed: true, fixedDay: models.DayMonday, fixedStart: 0}.model()
	noRoom.FixedRoom = nil
	overflow := subjectFixture{id: "F2", pattern: `[3]`, fixed: true, fixedDay: models.DayMonday, fixedStart: 12, fixedRoom: "R1"}.model()
	unknownRoom := subjectFixture{id: "F3", pattern: `[1]`, fixed: true, fixedDay: models.DayMonday, fixedStart: 0, fixedRoom: "NOPE"}.model()

	plan := PlanMaterialization(MaterializeInput{
		Subjects: []models.Subject{noRoom, overflow, unknownRoom},
		RoomIDs:  map[string]bool{"R1": true},
	})

	require.Len(t, plan.Issues, 3)
	assert.Equal(t, IssueValidation, plan.Issues[0].Kind)
	assert.Equal(t, IssueValidation, plan.Issues[1].Kind)
	assert.Equal(t, IssueNotFound, plan.Issues[2].Kind)
	assert.True(t, plan.Empty())
}
