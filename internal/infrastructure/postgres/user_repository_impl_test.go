package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/todo-organizer/internal/domain/repository"
)

const lockUserSQL = "SELECT id FROM users WHERE id = $1 FOR UPDATE"

func TestUserRepository_DeleteCascadeOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserSQL)).WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("u1"))
	for _, table := range []string{"steps", "tasks", "lists", "groups"} {
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM " + table + " WHERE owner_id = $1")).WithArgs("u1").
			WillReturnResult(pgxmock.NewResult("DELETE", 2))
	}
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteCascade(context.Background(), "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteCascadeRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserSQL)).WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("u1"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM steps WHERE owner_id = $1")).WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE owner_id = $1")).WithArgs("u1").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), "u1")

	assert.ErrorContains(t, err, "delete tasks")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteCascadeUnknownUser(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(lockUserSQL)).WithArgs("u1").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := repo.DeleteCascade(context.Background(), "u1")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ConfirmByTokenUnknown(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET confirm_token = NULL")).WithArgs("tok").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.ConfirmByToken(context.Background(), "tok")

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_TakeRecoveryAttemptExhausted(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SET recovery_attempts = recovery_attempts + 1")).WithArgs("a@b.com", 5).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.TakeRecoveryAttempt(context.Background(), "a@b.com", 5)

	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_RecoveryWritesAreConditional(t *testing.T) {
	ctx := context.Background()

	t.Run("set code", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("recovery_attempts = 0")).WithArgs("u1", "123456", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewUserRepository(mock).SetRecoveryCode(ctx, "u1", "123456", time.Now()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reset with current code", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND recovery_code = $2")).WithArgs("u1", "123456", "hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewUserRepository(mock).ResetPassword(ctx, "u1", "123456", "hash"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reset with replaced code", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND recovery_code = $2")).WithArgs("u1", "123456", "hash").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewUserRepository(mock).ResetPassword(ctx, "u1", "123456", "hash")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clear replaced code", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND recovery_code = $2")).WithArgs("u1", "123456").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewUserRepository(mock).ClearRecoveryCode(ctx, "u1", "123456")
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
