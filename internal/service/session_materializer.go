package service

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

type materializeSubjectReader interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type sessionBatchWriter interface {
	List(ctx context.Context) ([]models.Session, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error
	UpdateBatch(ctx context.Context, exec sqlx.ExtContext, sessions []models.Session) error
	DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// SessionMaterializer keeps the session table in step with subject split patterns.
type SessionMaterializer struct {
	subjects materializeSubjectReader
	rooms    roomLister
	sessions sessionBatchWriter
	tx       txProvider
	guard    *PassGuard
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewSessionMaterializer wires the materializer.
func NewSessionMaterializer(
	subjects materializeSubjectReader,
	rooms roomLister,
	sessions sessionBatchWriter,
	tx txProvider,
	guard *PassGuard,
	metrics *MetricsService,
	logger *zap.Logger,
) *SessionMaterializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMaterializer{
		subjects: subjects,
		rooms:    rooms,
		sessions: sessions,
		tx:       tx,
		guard:    guard,
		metrics:  metrics,
		logger:   logger,
	}
}

// Materialize expands every subject into sessions and applies the whole
// batch in one transaction. Running it twice in a row writes nothing the
// second time.
func (s *SessionMaterializer) Materialize(ctx context.Context) (*dto.MaterializeSummary, error) {
	release, err := s.guard.Acquire(ctx, OperationMaterialize)
	if err != nil {
		return nil, err
	}
	defer release()

	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load subjects")
	}
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load rooms")
	}
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}

	roomIDs := make(map[string]bool, len(rooms))
	for _, room := range rooms {
		roomIDs[room.ID] = true
	}

	plan := timetable.PlanMaterialization(timetable.MaterializeInput{Subjects: subjects, Sessions: sessions, RoomIDs: roomIDs})
	for _, issue := range plan.Issues {
		s.logger.Warn("skipping subject during materialization",
			zap.String("subject_id", issue.SubjectID),
			zap.String("kind", string(issue.Kind)),
			zap.Error(issue.Err),
		)
	}

	if !plan.Empty() {
		if err := s.apply(ctx, plan); err != nil {
			return nil, err
		}
	}

	summary := &dto.MaterializeSummary{
		Created:  plan.Counts.Created,
		Updated:  plan.Counts.Updated,
		Skipped:  plan.Counts.Skipped,
		Deleted:  plan.Counts.Deleted,
		Rejected: plan.Counts.Rejected,
		Issues:   toSubjectIssues(plan.Issues),
	}
	s.metrics.RecordMaterialize(summary)
	s.logger.Info("sessions materialized",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("deleted", summary.Deleted),
		zap.Int("rejected", summary.Rejected),
	)
	return summary, nil
}

func (s *SessionMaterializer) apply(ctx context.Context, plan timetable.MaterializePlan) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Store(err, "failed to start transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.sessions.DeleteByIDs(ctx, tx, plan.Delete); err != nil {
		return appErrors.Store(err, "failed to delete stale sessions")
	}
	if err = s.sessions.InsertBatch(ctx, tx, plan.Create); err != nil {
		return appErrors.Store(err, "failed to create sessions")
	}
	if err = s.sessions.UpdateBatch(ctx, tx, plan.Update); err != nil {
		return appErrors.Store(err, "failed to update sessions")
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Store(err, "failed to commit materialization")
	}
	return nil
}
