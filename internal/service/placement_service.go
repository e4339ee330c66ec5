package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
	"github.com/noah-isme/dept-timetable-api/internal/models"
	"github.com/noah-isme/dept-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

type manualSessionStore interface {
	List(ctx context.Context) ([]models.Session, error)
	FindByID(ctx context.Context, id string) (*models.Session, error)
	UpdatePlacement(ctx context.Context, exec sqlx.ExtContext, id string, day models.Day, start int, roomID string) error
	ClearPlacement(ctx context.Context, exec sqlx.ExtContext, id string) error
	ClearPlacements(ctx context.Context, exec sqlx.ExtContext) (int64, error)
}

// PlacementService handles manual placement. It evaluates proposals with the
// same conflict rules the auto-assign pass uses, plus soft constraints.
type PlacementService struct {
	snapshots snapshotSource
	sessions  manualSessionStore
	guard     *PassGuard
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPlacementService wires the manual placement path.
func NewPlacementService(snapshots snapshotSource, sessions manualSessionStore, guard *PassGuard, validate *validator.Validate, logger *zap.Logger) *PlacementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlacementService{snapshots: snapshots, sessions: sessions, guard: guard, validator: validate, logger: logger}
}

// Check evaluates a proposed placement without writing anything.
func (s *PlacementService) Check(ctx context.Context, req dto.PlacementRequest) (*dto.PlacementCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	return s.evaluate(ctx, req)
}

// Place commits a manual placement once every hard rule passes. Touching a
// soft-constrained slot additionally requires OverrideSoft.
func (s *PlacementService) Place(ctx context.Context, req dto.PlacementRequest) (*dto.PlacementCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if strings.TrimSpace(req.RoomID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "roomId is required to place a session")
	}

	release, err := s.guard.Acquire(ctx, OperationPlace)
	if err != nil {
		return nil, err
	}
	defer release()

	verdict, err := s.evaluate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !verdict.Allowed {
		rejected := appErrors.Clone(appErrors.ErrPlacementRejected, "placement rejected: "+strings.Join(verdict.Reasons, "; "))
		return verdict, rejected
	}
	if verdict.OverrideRequired && !req.OverrideSoft {
		return verdict, appErrors.Clone(appErrors.ErrOverrideRequired, fmt.Sprintf("slots %v are soft-constrained; resubmit with overrideSoft", verdict.SoftSlots))
	}

	if err := s.sessions.UpdatePlacement(ctx, nil, req.SessionID, models.Day(req.Day), *req.StartSlot, req.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Store(err, "failed to store placement")
	}
	s.logger.Info("session placed manually",
		zap.String("session_id", req.SessionID),
		zap.String("day", req.Day),
		zap.Int("start_slot", *req.StartSlot),
		zap.String("room_id", req.RoomID),
		zap.Bool("override_soft", req.OverrideSoft),
	)
	return verdict, nil
}

// Unplace returns a non-fixed session to the unplaced pool.
func (s *PlacementService) Unplace(ctx context.Context, sessionID string) error {
	release, err := s.guard.Acquire(ctx, OperationPlace)
	if err != nil {
		return err
	}
	defer release()

	sess, err := s.findSession(ctx, sessionID)
	if err != nil {
		return err
	}
	snap, _, err := s.snapshots.Load(ctx)
	if err != nil {
		return err
	}
	if info, ok := snap.Subjects[sess.SubjectID]; ok && info.Fixed {
		return appErrors.Clone(appErrors.ErrPlacementRejected, "sessions of fixed subjects cannot be unplaced")
	}
	if !sess.Placed() {
		return nil
	}
	if err := s.sessions.ClearPlacement(ctx, nil, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Store(err, "failed to clear placement")
	}
	s.logger.Info("session unplaced", zap.String("session_id", sessionID))
	return nil
}

// ResetPlacements unplaces every session that does not belong to a fixed subject.
func (s *PlacementService) ResetPlacements(ctx context.Context) (*dto.ResetSummary, error) {
	release, err := s.guard.Acquire(ctx, OperationReset)
	if err != nil {
		return nil, err
	}
	defer release()

	cleared, err := s.sessions.ClearPlacements(ctx, nil)
	if err != nil {
		return nil, appErrors.Store(err, "failed to reset placements")
	}
	s.logger.Info("placements reset", zap.Int64("cleared", cleared))
	return &dto.ResetSummary{Cleared: int(cleared)}, nil
}

func (s *PlacementService) findSession(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.sessions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Store(err, "failed to load session")
	}
	return sess, nil
}

func (s *PlacementService) evaluate(ctx context.Context, req dto.PlacementRequest) (*dto.PlacementCheckResponse, error) {
	day, ok := models.ParseDay(req.Day)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be one of MON..SUN")
	}
	sess, err := s.findSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	snap, _, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	info, ok := snap.Subjects[sess.SubjectID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s of session %s not found", sess.SubjectID, sess.ID))
	}
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to load sessions")
	}

	r := timetable.Range{Day: day, Start: *req.StartSlot, Duration: sess.Duration}
	verdict := &dto.PlacementCheckResponse{SessionID: sess.ID, Rooms: []dto.RoomOption{}}
	reject := func(reason string) { verdict.Reasons = append(verdict.Reasons, reason) }

	if info.Fixed {
		reject("session belongs to a fixed subject")
	}
	settings := snap.Settings
	if !r.Within(settings.WorkStart, settings.WorkEnd) {
		reject(fmt.Sprintf("slots %d-%d fall outside working hours %d-%d", r.Start, r.End()-1, settings.WorkStart, settings.WorkEnd))
	}
	if hard := snap.Hard.FlaggedIn(r); len(hard) > 0 {
		reject(fmt.Sprintf("slots %v are blocked by department policy", hard))
	}
	verdict.SoftSlots = snap.Soft.FlaggedIn(r)
	verdict.OverrideRequired = len(verdict.SoftSlots) > 0
	if busy := snap.BusyInstructors(info.Instructors, r); len(busy) > 0 {
		verdict.BusyInstructors = busy
		reject(fmt.Sprintf("instructors %s are unavailable", strings.Join(busy, ", ")))
	}

	occ := snap.Occupancy(sessions)
	cohort := timetable.Candidate{SessionID: sess.ID, Range: r, YearGroups: info.YearGroups, Instructors: info.Instructors}
	for _, placed := range occ.On(day) {
		if conflict, found := timetable.FirstConflict(cohort, []timetable.Placement{placed}); found {
			verdict.Conflicts = append(verdict.Conflicts, toConflictDetail(conflict))
		}
	}
	if len(verdict.Conflicts) > 0 {
		reject("year-group or instructor already teaching in this range")
	}

	for _, room := range snap.Rooms {
		if snap.RoomFits(room, info.Headcount) && occ.RoomFree(sess.ID, room.ID, r) {
			verdict.Rooms = append(verdict.Rooms, dto.RoomOption{ID: room.ID, Name: room.Name, Capacity: room.Capacity})
		}
	}

	if req.RoomID != "" {
		room, ok := snap.Room(req.RoomID)
		switch {
		case !ok:
			reject(fmt.Sprintf("room %s not found", req.RoomID))
		case !snap.RoomFits(room, info.Headcount):
			reject(fmt.Sprintf("room %s seats %d, cohort is %d", room.ID, room.Capacity, info.Headcount))
		default:
			if conflict, found := occ.FirstConflict(timetable.Candidate{SessionID: sess.ID, Range: r, RoomID: room.ID}); found {
				verdict.Conflicts = append(verdict.Conflicts, toConflictDetail(conflict))
				reject(fmt.Sprintf("room %s is occupied by %s", room.ID, conflict.With.SessionID))
			}
		}
	} else if len(verdict.Rooms) == 0 {
		reject("no room is free for this range")
	}

	verdict.Allowed = len(verdict.Reasons) == 0
	return verdict, nil
}

func toConflictDetail(c timetable.Conflict) dto.ConflictDetail {
	return dto.ConflictDetail{
		Dimension: string(c.Dimension),
		SessionID: c.With.SessionID,
		SubjectID: c.With.SubjectID,
		Day:       string(c.With.Range.Day),
		StartSlot: c.With.Range.Start,
		Duration:  c.With.Range.Duration,
		RoomID:    c.With.RoomID,
	}
}
