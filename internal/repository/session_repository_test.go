package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

func newSessionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var sessionRowColumns = []string{"id", "subject_id", "duration", "day", "start_slot", "room_id", "created_at", "updated_at"}

func TestSessionRepositoryList(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow("CVE101_0", "CVE101", 2, "MON", 3, "R1", time.Now(), time.Now()).
		AddRow("CVE101_1", "CVE101", 1, nil, nil, nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, subject_id, duration, day, start_slot, room_id, created_at, updated_at FROM sessions ORDER BY id ASC")).
		WillReturnRows(rows)

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.True(t, sessions[0].Placed())
	assert.Equal(t, models.DayMonday, *sessions[0].Day)
	assert.Equal(t, 3, *sessions[0].StartSlot)
	assert.False(t, sessions[1].Placed())
	assert.Nil(t, sessions[1].RoomID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListFloating(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE day IS NULL ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).AddRow("A_0", "A", 2, nil, nil, nil, time.Now(), time.Now()))

	sessions, err := repo.ListFloating(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryBatchWritesUseTransaction(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO sessions").
		WithArgs("A_0", "A", 2, nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE sessions").
		WithArgs(3, "TUE", 4, "R2", sqlmock.AnyArg(), "B_0").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	day, start, room := models.DayTuesday, 4, "R2"
	require.NoError(t, repo.InsertBatch(context.Background(), tx, []models.Session{{ID: "A_0", SubjectID: "A", Duration: 2}}))
	require.NoError(t, repo.UpdateBatch(context.Background(), tx, []models.Session{{ID: "B_0", SubjectID: "B", Duration: 3, Day: &day, StartSlot: &start, RoomID: &room}}))
	require.NoError(t, repo.DeleteByIDs(context.Background(), tx, []string{"C_0", "C_1"}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdatePlacement(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET day = $2, start_slot = $3, room_id = $4, updated_at = $5 WHERE id = $1")).
		WithArgs("A_0", "WED", 5, "R1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET day = $2")).
		WithArgs("MISSING", "WED", 5, "R1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdatePlacement(context.Background(), nil, "A_0", models.DayWednesday, 5, "R1"))
	err := repo.UpdatePlacement(context.Background(), nil, "MISSING", models.DayWednesday, 5, "R1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryClearPlacements(t *testing.T) {
	db, mock, cleanup := newSessionRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET day = NULL, start_slot = NULL, room_id = NULL, updated_at = $2 WHERE id = $1")).
		WithArgs("A_0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("subject_id NOT IN (SELECT id FROM subjects WHERE is_fixed = TRUE)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	require.NoError(t, repo.ClearPlacement(context.Background(), nil, "A_0"))
	cleared, err := repo.ClearPlacements(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cleared)
	assert.NoError(t, mock.ExpectationsWereMet())
}
