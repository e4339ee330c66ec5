package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

type subjectLister interface {
	List(ctx context.Context) ([]models.Subject, error)
	ListYearGroups(ctx context.Context) ([]models.SubjectYearGroup, error)
	ListInstructors(ctx context.Context) ([]models.SubjectInstructor, error)
}

type yearGroupLister interface {
	List(ctx context.Context) ([]models.YearGroup, error)
}

type roomLister interface {
	List(ctx context.Context) ([]models.Room, error)
}

type instructorLister interface {
	List(ctx context.Context) ([]models.Instructor, error)
	ListBusySlots(ctx context.Context) ([]models.InstructorBusySlot, error)
}

type constraintLister interface {
	List(ctx context.Context) ([]models.DepartmentConstraint, error)
}

type settingsReader interface {
	Get(ctx context.Context) (models.Settings, error)
}

// SnapshotLoader bulk-reads the entity store into a timetable snapshot.
type SnapshotLoader struct {
	subjects    subjectLister
	yearGroups  yearGroupLister
	rooms       roomLister
	instructors instructorLister
	constraints constraintLister
	settings    settingsReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSnapshotLoader wires the entity readers.
func NewSnapshotLoader(
	subjects subjectLister,
	yearGroups yearGroupLister,
	rooms roomLister,
	instructors instructorLister,
	constraints constraintLister,
	settings settingsReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *SnapshotLoader {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotLoader{
		subjects:    subjects,
		yearGroups:  yearGroups,
		rooms:       rooms,
		instructors: instructors,
		constraints: constraints,
		settings:    settings,
		validator:   validate,
		logger:      logger,
	}
}

// Load reads every entity and resolves it into a snapshot. Dangling
// references are dropped, logged and returned as issues.
func (l *SnapshotLoader) Load(ctx context.Context) (*timetable.Snapshot, []timetable.Issue, error) {
	var (
		e   timetable.Entities
		err error
	)
	if e.Subjects, err = l.subjects.List(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load subjects")
	}
	if e.SubjectYearGroups, err = l.subjects.ListYearGroups(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load subject year-groups")
	}
	if e.SubjectInstructors, err = l.subjects.ListInstructors(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load subject instructors")
	}
	if e.YearGroups, err = l.yearGroups.List(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load year-groups")
	}
	if e.Rooms, err = l.rooms.List(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load rooms")
	}
	if e.Instructors, err = l.instructors.List(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load instructors")
	}
	if e.BusySlots, err = l.instructors.ListBusySlots(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load instructor availability")
	}
	if e.Constraints, err = l.constraints.List(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load department constraints")
	}
	if e.Settings, err = l.settings.Get(ctx); err != nil {
		return nil, nil, appErrors.Store(err, "failed to load settings")
	}
	if err := l.validator.Struct(e.Settings); err != nil {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid department settings: "+err.Error())
	}

	snap, issues := timetable.BuildSnapshot(e)
	for _, issue := range issues {
		l.logger.Warn("dropping unresolved reference",
			zap.String("subject_id", issue.SubjectID),
			zap.String("entity_id", issue.EntityID),
			zap.String("kind", string(issue.Kind)),
			zap.Error(issue.Err),
		)
	}
	return snap, issues, nil
}

func toSubjectIssues(issues []timetable.Issue) []dto.SubjectIssue {
	if len(issues) == 0 {
		return nil
	}
	out := make([]dto.SubjectIssue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, dto.SubjectIssue{
			SubjectID: issue.SubjectID,
			EntityID:  issue.EntityID,
			Kind:      string(issue.Kind),
			Message:   issue.Error(),
		})
	}
	return out
}
