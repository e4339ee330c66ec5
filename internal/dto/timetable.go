package dto

import "time"

// SubjectIssue reports a subject skipped or partially resolved during a pass.
type SubjectIssue struct {
	SubjectID string `json:"subjectId,omitempty"`
	EntityID  string `json:"entityId,omitempty"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// MaterializeSummary is returned after sessions are reconciled with subjects.
type MaterializeSummary struct {
	Created  int            `json:"created"`
	Updated  int            `json:"updated"`
	Skipped  int            `json:"skipped"`
	Deleted  int            `json:"deleted"`
	Rejected int            `json:"rejected"`
	Issues   []SubjectIssue `json:"issues"`
}

// PlacedSession describes a session placed by the auto-assign pass.
type PlacedSession struct {
	SessionID string `json:"sessionId"`
	SubjectID string `json:"subjectId"`
	Day       string `json:"day"`
	StartSlot int    `json:"startSlot"`
	Duration  int    `json:"duration"`
	RoomID    string `json:"roomId"`
}

// SessionFailure is a placement that was found but could not be stored.
type SessionFailure struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// AutoAssignSummary reports the outcome of one auto-assign pass. Unplaced
// sessions are normal output, not an error.
type AutoAssignSummary struct {
	Placed        int              `json:"placed"`
	Unplaced      int              `json:"unplaced"`
	Sessions      []PlacedSession  `json:"sessions"`
	UnplacedIDs   []string         `json:"unplacedIds"`
	Failures      []SessionFailure `json:"failures,omitempty"`
	Issues        []SubjectIssue   `json:"issues,omitempty"`
	Cancelled     bool             `json:"cancelled,omitempty"`
	DurationMilli int64            `json:"durationMs"`
}

// Auto-assign job states.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// AutoAssignJob tracks an asynchronous auto-assign pass.
type AutoAssignJob struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	Summary    *AutoAssignSummary `json:"summary,omitempty"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	FinishedAt *time.Time         `json:"finishedAt,omitempty"`
}

// PlacementRequest proposes a manual (day, start, room) for a session.
type PlacementRequest struct {
	SessionID    string `json:"-"`
	Day          string `json:"day" validate:"required,oneof=MON TUE WED THU FRI SAT SUN"`
	StartSlot    *int   `json:"startSlot" validate:"required,min=0,max=13"`
	RoomID       string `json:"roomId"`
	OverrideSoft bool   `json:"overrideSoft"`
}

// RoomOption is a room that can host the proposed placement.
type RoomOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// ConflictDetail names the placed session a proposal collides with.
type ConflictDetail struct {
	Dimension string `json:"dimension"`
	SessionID string `json:"sessionId"`
	SubjectID string `json:"subjectId"`
	Day       string `json:"day"`
	StartSlot int    `json:"startSlot"`
	Duration  int    `json:"duration"`
	RoomID    string `json:"roomId,omitempty"`
}

// PlacementCheckResponse is the evaluator's verdict on a manual proposal.
type PlacementCheckResponse struct {
	SessionID        string           `json:"sessionId"`
	Allowed          bool             `json:"allowed"`
	Reasons          []string         `json:"reasons,omitempty"`
	SoftSlots        []int            `json:"softSlots,omitempty"`
	OverrideRequired bool             `json:"overrideRequired"`
	BusyInstructors  []string         `json:"busyInstructors,omitempty"`
	Conflicts        []ConflictDetail `json:"conflicts,omitempty"`
	Rooms            []RoomOption     `json:"rooms"`
}

// ResetSummary reports how many placements were cleared.
type ResetSummary struct {
	Cleared int `json:"cleared"`
}

// SystemMetrics is a JSON-friendly snapshot of the service counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	PassesTotal              uint64    `json:"passesTotal"`
	SessionsPlacedTotal      uint64    `json:"sessionsPlacedTotal"`
	SessionsUnplaced         int64     `json:"sessionsUnplaced"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
