package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestSessionRepositoryList(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "class_id", "subject_id", "time_slot_id", "kind", "locked", "created_at", "updated_at"}).
		AddRow("s1", "t1", "c1", "math", "slot-1", "BASIC", false, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, class_id, subject_id, time_slot_id, kind, locked, created_at, updated_at FROM sessions ORDER BY id ASC")).
		WillReturnRows(rows)

	sessions, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionKindBasic, sessions[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdatePlacement(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec("UPDATE sessions SET teacher_id").
		WithArgs("t2", "slot-9", sqlmock.AnyArg(), "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePlacement(context.Background(), db, "s1", "t2", "slot-9"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdatePlacementMissingRow(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	mock.ExpectExec("UPDATE sessions SET teacher_id").
		WithArgs("t2", "slot-9", sqlmock.AnyArg(), "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdatePlacement(context.Background(), db, "ghost", "t2", "slot-9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows affected")
}

func TestSessionRepositoryReplaceClass(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM sessions WHERE class_id").
		WithArgs("c1", "keep-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.ReplaceClass(context.Background(), tx, "c1", []string{"keep-1"}, []models.Session{
		{ID: "new-1", TeacherID: "t1", ClassID: "c1", SubjectID: "math", TimeSlotID: "slot-1", Kind: models.SessionKindBasic},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryReplaceAll(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM sessions").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	require.NoError(t, err)

	err = repo.ReplaceAll(context.Background(), tx, []models.Session{
		{ID: "s1", TeacherID: "t1", ClassID: "c1", SubjectID: "math", TimeSlotID: "slot-1", Kind: models.SessionKindBasic},
		{ID: "s2", TeacherID: "t2", ClassID: "c1", SubjectID: "science", TimeSlotID: "slot-2", Kind: models.SessionKindBasic},
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
