package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrOwnerMissing is returned when a row references a user or parent that no longer exists.
	ErrOwnerMissing = errors.New("owner or parent missing")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail expects an already normalized address.
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ConfirmByToken clears a pending confirmation token and returns the
	// confirmed user. ErrNotFound when no account waits for token.
	ConfirmByToken(ctx context.Context, token string) (*entity.User, error)
	// SetRecoveryCode replaces the recovery code and resets its attempt count.
	SetRecoveryCode(ctx context.Context, id, code string, exp time.Time) error
	// TakeRecoveryAttempt counts one check against the recovery code of the
	// account and returns the user as of that check. ErrNotFound when there is
	// no code or maxAttempts checks were already made.
	TakeRecoveryAttempt(ctx context.Context, email string, maxAttempts int) (*entity.User, error)
	// ResetPassword stores hash and clears the recovery code, provided code is
	// still the current one. ErrNotFound otherwise.
	ResetPassword(ctx context.Context, id, code, hash string) error
	// ClearRecoveryCode drops code if it is still the current one.
	ClearRecoveryCode(ctx context.Context, id, code string) error
	// DeleteCascade removes the user and every row it owns atomically.
	DeleteCascade(ctx context.Context, id string) error
}

// AuditRepository persists account audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, e entity.AuditEntry) error
}
