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

func TestAssigneeRepositoryListAvailable(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAssigneeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "expertise", "role", "basic_quota", "waiting_quota", "current_load", "available", "created_at", "updated_at"}).
		AddRow("a1", "Teacher A", nil, "TEACHER", 18, 4, 2, true, time.Now(), time.Now()).
		AddRow("a2", "Aux B", nil, "AUXILIARY", 0, 0, 5, true, time.Now(), time.Now())
	mock.ExpectQuery("SELECT (.+) FROM assignees").WillReturnRows(rows)

	assignees, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, assignees, 2)
	assert.Equal(t, models.AssigneeRoleAuxiliary, assignees[1].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssigneeRepositoryListNames(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAssigneeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name"}).
		AddRow("a1", "Teacher A").
		AddRow("a2", "Aux B")
	mock.ExpectQuery("SELECT id, full_name FROM assignees").WillReturnRows(rows)

	names, err := repo.ListNames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Teacher A", names["a1"])
	assert.Equal(t, "Aux B", names["a2"])
}

func TestAssigneeRepositoryUpdateLoads(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewAssigneeRepository(db)

	mock.ExpectExec("UPDATE assignees SET current_load").
		WithArgs(4, sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE assignees SET current_load").
		WithArgs(6, sqlmock.AnyArg(), "a2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateLoads(context.Background(), db, []models.Assignee{
		{ID: "a1", CurrentLoad: 4},
		{ID: "a2", CurrentLoad: 6},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
