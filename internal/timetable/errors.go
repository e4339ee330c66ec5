package timetable

import "errors"

var (
	// ErrInvalidSubject marks malformed subject data; the subject is skipped.
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrMissingReference marks a dangling room, instructor or year-group reference.
	ErrMissingReference = errors.New("missing reference")
)

// IssueKind classifies a per-subject problem found while building a plan or snapshot.
type IssueKind string

const (
	IssueValidation IssueKind = "VALIDATION"
	IssueNotFound   IssueKind = "NOT_FOUND"
)

// Issue is a non-fatal problem tied to one entity.
type Issue struct {
	SubjectID string
	EntityID  string
	Kind      IssueKind
	Err       error
}

func (i Issue) Error() string {
	if i.Err == nil {
		return string(i.Kind)
	}
	return i.Err.Error()
}

func issueKind(err error) IssueKind {
	if errors.Is(err, ErrMissingReference) {
		return IssueNotFound
	}
	return IssueValidation
}
