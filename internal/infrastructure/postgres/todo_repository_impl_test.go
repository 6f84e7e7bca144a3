package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/internal/domain/repository"
)

func TestTodoRepository_DeleteTaskRemovesStepsFirst(t *testing.T) {
	mock := newMock(t)
	repo := NewTodoRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM tasks WHERE id = $1 AND owner_id = $2 FOR UPDATE")).
		WithArgs("t1", "u1").WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("t1"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM steps WHERE owner_id = $2 AND task_id = $1")).
		WithArgs("t1", "u1").WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE owner_id = $2 AND id = $1")).
		WithArgs("t1", "u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteTask(context.Background(), "u1", "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_DeleteListRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewTodoRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM lists WHERE id = $1 AND owner_id = $2 FOR UPDATE")).
		WithArgs("l1", "u1").WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("l1"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM steps WHERE owner_id = $2")).
		WithArgs("l1", "u1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE owner_id = $2 AND list_id = $1")).
		WithArgs("l1", "u1").WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	err := repo.DeleteList(context.Background(), "u1", "l1")

	assert.ErrorContains(t, err, "deadlock detected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_DeleteForeignTree(t *testing.T) {
	mock := newMock(t)
	repo := NewTodoRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM groups WHERE id = $1 AND owner_id = $2 FOR UPDATE")).
		WithArgs("g1", "u2").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.DeleteGroup(context.Background(), "u2", "g1")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_DeleteStepMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewTodoRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM steps WHERE id = $1 AND owner_id = $2")).
		WithArgs("s1", "u1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.DeleteStep(context.Background(), "u1", "s1"), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTodoRepository_UpdateGroupMalformedID(t *testing.T) {
	mock := newMock(t)
	repo := NewTodoRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE groups SET title = $1")).
		WithArgs("Home", pgxmock.AnyArg(), "not-a-uuid", "u1").
		WillReturnError(&pgconn.PgError{Code: codeInvalidTextRep})

	err := repo.UpdateGroup(context.Background(), &entity.Group{ID: "not-a-uuid", OwnerID: "u1", Title: "Home"})

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
