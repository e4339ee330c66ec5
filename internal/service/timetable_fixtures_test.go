package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}

type entityStoreStub struct {
	subjects    []models.Subject
	yearLinks   []models.SubjectYearGroup
	instLinks   []models.SubjectInstructor
	yearGroups  []models.YearGroup
	rooms       []models.Room
	instructors []models.Instructor
	busy        []models.InstructorBusySlot
	constraints []models.DepartmentConstraint
	settings    models.Settings
	err         error
}

func (s *entityStoreStub) subjectsRepo() *subjectStub { return &subjectStub{s} }
func (s *entityStoreStub) yearGroupRepo() yearGroupLister {
	return listerFunc[models.YearGroup](func() ([]models.YearGroup, error) { return s.yearGroups, s.err })
}
func (s *entityStoreStub) roomRepo() roomLister {
	return listerFunc[models.Room](func() ([]models.Room, error) { return s.rooms, s.err })
}
func (s *entityStoreStub) instructorRepo() *instructorStub { return &instructorStub{s} }
func (s *entityStoreStub) constraintRepo() constraintLister {
	return listerFunc[models.DepartmentConstraint](func() ([]models.DepartmentConstraint, error) { return s.constraints, s.err })
}
func (s *entityStoreStub) settingsRepo() settingsReader { return settingsStub{s} }

func (s *entityStoreStub) loader() *SnapshotLoader {
	return NewSnapshotLoader(s.subjectsRepo(), s.yearGroupRepo(), s.roomRepo(), s.instructorRepo(), s.constraintRepo(), s.settingsRepo(), nil, nil)
}

type listerFunc[T any] func() ([]T, error)

func (f listerFunc[T]) List(context.Context) ([]T, error) { return f() }

type subjectStub struct{ s *entityStoreStub }

func (st *subjectStub) List(context.Context) ([]models.Subject, error) { return st.s.subjects, st.s.err }
func (st *subjectStub) ListYearGroups(context.Context) ([]models.SubjectYearGroup, error) {
	return st.s.yearLinks, st.s.err
}
func (st *subjectStub) ListInstructors(context.Context) ([]models.SubjectInstructor, error) {
	return st.s.instLinks, st.s.err
}

type instructorStub struct{ s *entityStoreStub }

func (st *instructorStub) List(context.Context) ([]models.Instructor, error) {
	return st.s.instructors, st.s.err
}
func (st *instructorStub) ListBusySlots(context.Context) ([]models.InstructorBusySlot, error) {
	return st.s.busy, st.s.err
}

type settingsStub struct{ s *entityStoreStub }

func (st settingsStub) Get(context.Context) (models.Settings, error) { return st.s.settings, st.s.err }

// department builds a small entity store: two year-groups, two rooms and
// subjects linked to them.
func department() *entityStoreStub {
	return &entityStoreStub{
		yearGroups: []models.YearGroup{{ID: "Y1", Headcount: 30}, {ID: "Y2", Headcount: 50}},
		rooms:      []models.Room{{ID: "R-SMALL", Name: "Small", Capacity: 35}, {ID: "R-BIG", Name: "Big", Capacity: 80}},
		instructors: []models.Instructor{
			{ID: "I1", FirstName: "Ada"},
			{ID: "I2", FirstName: "Alan"},
		},
		settings: models.DefaultSettings(),
	}
}

func (s *entityStoreStub) addSubject(id, pattern string, years []string, instructors []string) *entityStoreStub {
	s.subjects = append(s.subjects, models.Subject{ID: id, Code: id, Section: "1", Name: id, SplitPattern: types.JSONText(pattern)})
	for _, y := range years {
		s.yearLinks = append(s.yearLinks, models.SubjectYearGroup{SubjectID: id, YearGroupID: y})
	}
	for _, i := range instructors {
		s.instLinks = append(s.instLinks, models.SubjectInstructor{SubjectID: id, InstructorID: i, Ratio: 100})
	}
	return s
}

func (s *entityStoreStub) addFixedSubject(id, pattern string, day models.Day, start int, room string) *entityStoreStub {
	s.subjects = append(s.subjects, models.Subject{
		ID: id, Code: id, Section: "1", Name: id, SplitPattern: types.JSONText(pattern),
		IsFixed: true, FixedDay: &day, FixedStart: &start, FixedRoom: &room,
	})
	return s
}

// sessionStoreStub is an in-memory session table.
type sessionStoreStub struct {
	mu        sync.Mutex
	rows      map[string]models.Session
	fixed     map[string]bool
	failOn    map[string]error
	listErr   error
	writeErr  error
	placeHook func()

	inserted []string
	updated  []string
	deleted  []string
	placed   []string
}

func newSessionStore(sessions ...models.Session) *sessionStoreStub {
	st := &sessionStoreStub{rows: map[string]models.Session{}, fixed: map[string]bool{}, failOn: map[string]error{}}
	for _, sess := range sessions {
		st.rows[sess.ID] = sess
	}
	return st
}

func (st *sessionStoreStub) sorted(filter func(models.Session) bool) []models.Session {
	out := make([]models.Session, 0, len(st.rows))
	for _, sess := range st.rows {
		if filter == nil || filter(sess) {
			out = append(out, sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (st *sessionStoreStub) List(context.Context) ([]models.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.listErr != nil {
		return nil, st.listErr
	}
	return st.sorted(nil), nil
}

func (st *sessionStoreStub) ListFloating(context.Context) ([]models.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.listErr != nil {
		return nil, st.listErr
	}
	return st.sorted(func(s models.Session) bool { return !s.Placed() }), nil
}

func (st *sessionStoreStub) FindByID(_ context.Context, id string) (*models.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &sess, nil
}

func (st *sessionStoreStub) InsertBatch(_ context.Context, _ sqlx.ExtContext, sessions []models.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.writeErr != nil {
		return st.writeErr
	}
	for _, sess := range sessions {
		st.rows[sess.ID] = sess
		st.inserted = append(st.inserted, sess.ID)
	}
	return nil
}

func (st *sessionStoreStub) UpdateBatch(_ context.Context, _ sqlx.ExtContext, sessions []models.Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.writeErr != nil {
		return st.writeErr
	}
	for _, sess := range sessions {
		st.rows[sess.ID] = sess
		st.updated = append(st.updated, sess.ID)
	}
	return nil
}

func (st *sessionStoreStub) DeleteByIDs(_ context.Context, _ sqlx.ExtContext, ids []string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.writeErr != nil {
		return st.writeErr
	}
	for _, id := range ids {
		delete(st.rows, id)
		st.deleted = append(st.deleted, id)
	}
	return nil
}

func (st *sessionStoreStub) UpdatePlacement(_ context.Context, _ sqlx.ExtContext, id string, day models.Day, start int, roomID string) error {
	if st.placeHook != nil {
		st.placeHook()
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err, ok := st.failOn[id]; ok {
		return err
	}
	sess, ok := st.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	sess.Day, sess.StartSlot, sess.RoomID = &day, &start, &roomID
	st.rows[id] = sess
	st.placed = append(st.placed, id)
	return nil
}

func (st *sessionStoreStub) ClearPlacement(_ context.Context, _ sqlx.ExtContext, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.rows[id]
	if !ok {
		return sql.ErrNoRows
	}
	sess.Day, sess.StartSlot, sess.RoomID = nil, nil, nil
	st.rows[id] = sess
	return nil
}

func (st *sessionStoreStub) ClearPlacements(_ context.Context, _ sqlx.ExtContext) (int64, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.writeErr != nil {
		return 0, st.writeErr
	}
	var cleared int64
	for id, sess := range st.rows {
		if !sess.Placed() || st.fixed[sess.SubjectID] {
			continue
		}
		sess.Day, sess.StartSlot, sess.RoomID = nil, nil, nil
		st.rows[id] = sess
		cleared++
	}
	return cleared, nil
}

func floating(id, subjectID string, duration int) models.Session {
	return models.Session{ID: id, SubjectID: subjectID, Duration: duration}
}

func placedAt(id, subjectID string, duration int, day models.Day, start int, room string) models.Session {
	sess := floating(id, subjectID, duration)
	sess.Day, sess.StartSlot, sess.RoomID = &day, &start, &room
	return sess
}

func intPtr(v int) *int { return &v }

var errStoreDown = errors.New("connection reset by peer")
