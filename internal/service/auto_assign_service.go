package service

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

type snapshotSource interface {
	Load(ctx context.Context) (*timetable.Snapshot, []timetable.Issue, error)
}

type sessionPlacementStore interface {
	List(ctx context.Context) ([]models.Session, error)
	ListFloating(ctx context.Context) ([]models.Session, error)
	UpdatePlacement(ctx context.Context, exec sqlx.ExtContext, id string, day models.Day, start int, roomID string) error
}

// AutoAssignService runs the greedy placement pass over floating sessions.
type AutoAssignService struct {
	snapshots snapshotSource
	sessions  sessionPlacementStore
	guard     *PassGuard
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewAutoAssignService wires the auto-assign pass.
func NewAutoAssignService(snapshots snapshotSource, sessions sessionPlacementStore, guard *PassGuard, metrics *MetricsService, logger *zap.Logger) *AutoAssignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoAssignService{snapshots: snapshots, sessions: sessions, guard: guard, metrics: metrics, logger: logger}
}

// Run places as many floating sessions as possible. Each placement is
// committed on its own; a failed write leaves that session unplaced and the
// pass continues.
func (s *AutoAssignService) Run(ctx context.Context) (*dto.AutoAssignSummary, error) {
	release, err := s.guard.Acquire(ctx, OperationAutoAssign)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()

	snap, issues, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	all, err := s.sessions.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}
	floating, err := s.sessions.ListFloating(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load floating sessions")
	}

	commit := func(ctx context.Context, sess models.Session, day models.Day, start int, roomID string) error {
		return s.sessions.UpdatePlacement(ctx, nil, sess.ID, day, start, roomID)
	}

	result, runErr := timetable.NewScheduler(snap).Run(ctx, floating, snap.Occupancy(all), commit)
	cancelled := runErr != nil && (errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded))
	if runErr != nil && !cancelled {
		return nil, appErrors.Wrap(runErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "auto-assign pass failed")
	}

	summary := &dto.AutoAssignSummary{
		Placed:        len(result.Placed),
		Unplaced:      len(result.Unplaced),
		Sessions:      make([]dto.PlacedSession, 0, len(result.Placed)),
		UnplacedIDs:   result.Unplaced,
		Issues:        toSubjectIssues(append(issues, result.Ignored...)),
		Cancelled:     cancelled,
		DurationMilli: time.Since(started).Milliseconds(),
	}
	if summary.UnplacedIDs == nil {
		summary.UnplacedIDs = []string{}
	}
	for _, p := range result.Placed {
		summary.Sessions = append(summary.Sessions, dto.PlacedSession{
			SessionID: p.SessionID,
			SubjectID: p.SubjectID,
			Day:       string(p.Day),
			StartSlot: p.Start,
			Duration:  p.Duration,
			RoomID:    p.RoomID,
		})
	}
	for _, f := range result.Failures {
		s.logger.Error("failed to store placement", zap.String("session_id", f.SessionID), zap.Error(f.Err))
		summary.Failures = append(summary.Failures, dto.SessionFailure{SessionID: f.SessionID, Message: f.Err.Error()})
	}

	s.metrics.RecordAutoAssign(summary.Placed, summary.Unplaced)
	if cancelled {
		s.logger.Warn("auto-assign pass cancelled", zap.Int("placed", summary.Placed), zap.Int("unplaced", summary.Unplaced), zap.Error(runErr))
	} else {
		s.logger.Info("auto-assign pass finished", zap.Int("placed", summary.Placed), zap.Int("unplaced", summary.Unplaced), zap.Int("failures", len(summary.Failures)))
	}
	return summary, nil
}
