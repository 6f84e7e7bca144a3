package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	"github.com/oksasatya/todo-organizer/internal/domain/repository"
)

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, password_hash, timezone, confirm_token,
	recovery_code, recovery_expires_at, recovery_attempts, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var confirmToken *string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Timezone, &confirmToken,
		&u.RecoveryCode, &u.RecoveryExpiresAt, &u.RecoveryAttempts, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	if confirmToken != nil {
		u.Confirmation = entity.PendingConfirmation(*confirmToken)
	}
	return u, nil
}

func confirmTokenArg(u *entity.User) *string {
	if !u.Confirmation.IsPending() {
		return nil
	}
	t := u.Confirmation.Token()
	return &t
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, timezone, confirm_token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Username, u.PasswordHash, u.Timezone, confirmTokenArg(u))

	return mapError(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *UserRepository) ConfirmByToken(ctx context.Context, token string) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET confirm_token = NULL, updated_at = now()
		WHERE confirm_token = $1
		RETURNING `+userColumns, token))
}

func (r *UserRepository) SetRecoveryCode(ctx context.Context, id, code string, exp time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET recovery_code = $2, recovery_expires_at = $3, recovery_attempts = 0, updated_at = now()
		WHERE id = $1
	`, id, code, exp)
	return affected(res.RowsAffected(), err)
}

func (r *UserRepository) TakeRecoveryAttempt(ctx context.Context, email string, maxAttempts int) (*entity.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET recovery_attempts = recovery_attempts + 1
		WHERE lower(email) = lower($1) AND recovery_code IS NOT NULL AND recovery_attempts < $2
		RETURNING `+userColumns, email, maxAttempts))
}

func (r *UserRepository) ResetPassword(ctx context.Context, id, code, hash string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $3, recovery_code = NULL, recovery_expires_at = NULL,
		    recovery_attempts = 0, updated_at = now()
		WHERE id = $1 AND recovery_code = $2
	`, id, code, hash)
	return affected(res.RowsAffected(), err)
}

func (r *UserRepository) ClearRecoveryCode(ctx context.Context, id, code string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET recovery_code = NULL, recovery_expires_at = NULL, recovery_attempts = 0, updated_at = now()
		WHERE id = $1 AND recovery_code = $2
	`, id, code)
	return affected(res.RowsAffected(), err)
}

// DeleteCascade locks the user row, removes owned rows leaves first, then
// the user, all in one transaction. The row lock makes concurrent deletes
// wait, and inserts of owned rows (which take a key-share lock through the
// foreign key) wait and then fail once the user is gone.
func (r *UserRepository) DeleteCascade(ctx context.Context, id string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked string
		if err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			return mapError(err)
		}
		for _, table := range []string{"steps", "tasks", "lists", "groups"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE owner_id = $1`, id); err != nil {
				return fmt.Errorf("delete %s: %w", table, err)
			}
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete user: %w", mapError(err))
		}
		return nil
	})
}

var _ repository.UserRepository = (*UserRepository)(nil)
