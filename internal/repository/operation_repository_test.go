package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faisalalharbi2050/motabea-scheduling-api/internal/models"
)

func TestOperationRepositoryInsertAndList(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewOperationRepository(db)

	mock.ExpectExec("INSERT INTO operation_records").
		WithArgs("op-1", 1, "s1", "c1", "math", "Teacher A / day 1 period 1 (07:30-08:15)", "Teacher B / day 2 period 3 (09:10-09:55)", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), db, &models.OperationRecord{
		ID:              "op-1",
		Seq:             1,
		SessionID:       "s1",
		ClassID:         "c1",
		SubjectID:       "math",
		FromDescription: "Teacher A / day 1 period 1 (07:30-08:15)",
		ToDescription:   "Teacher B / day 2 period 3 (09:10-09:55)",
		CreatedAt:       time.Now().UTC(),
	})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "seq", "session_id", "class_id", "subject_id", "from_description", "to_description", "overridden_conflicts", "created_at"}).
		AddRow("op-1", 1, "s1", "c1", "math", "from", "to", 0, time.Now())
	mock.ExpectQuery("SELECT (.+) FROM operation_records").
		WithArgs(10).
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "op-1", records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOperationRepositoryClear(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewOperationRepository(db)

	mock.ExpectExec("DELETE FROM operation_records").
		WillReturnResult(sqlmock.NewResult(0, 5))

	require.NoError(t, repo.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
