package entity

import (
	"strings"
	"time"
)

// ConfirmationState tracks whether the user proved ownership of the email.
// A pending state carries the token that was mailed; the zero value is
// confirmed.
type ConfirmationState struct {
	token string
}

// PendingConfirmation returns a state waiting for the given token.
func PendingConfirmation(token string) ConfirmationState {
	return ConfirmationState{token: token}
}

// Confirmed returns the confirmed state.
func Confirmed() ConfirmationState { return ConfirmationState{} }

func (s ConfirmationState) IsPending() bool { return s.token != "" }

// Token returns the pending token, or "" once confirmed.
func (s ConfirmationState) Token() string { return s.token }

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
type User struct {
	ID                string
	Email             string
	Username          string
	PasswordHash      string
	Timezone          string
	Confirmation      ConfirmationState
	RecoveryCode      *string
	RecoveryExpiresAt *time.Time
	// RecoveryAttempts counts checks made against the current recovery code.
	RecoveryAttempts int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) IsConfirmed() bool { return !u.Confirmation.IsPending() }

func (u *User) ConfirmationToken() string { return u.Confirmation.Token() }

// Confirm clears the pending confirmation token.
func (u *User) Confirm() { u.Confirmation = Confirmed() }

// SetRecoveryCode stores a recovery code valid until exp.
func (u *User) SetRecoveryCode(code string, exp time.Time) {
	u.RecoveryCode = &code
	u.RecoveryExpiresAt = &exp
	u.RecoveryAttempts = 0
}

func (u *User) ClearRecoveryCode() {
	u.RecoveryCode = nil
	u.RecoveryExpiresAt = nil
	u.RecoveryAttempts = 0
}

// NormalizeEmail lower-cases and trims an address so that equal mailboxes
// compare equal.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
