package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
	repo "github.com/oksasatya/todo-organizer/internal/domain/repository"
	"github.com/oksasatya/todo-organizer/pkg/helpers"
)

const (
	confirmTokenBytes = 16
	// maxRecoveryAttempts bounds the checks made against one recovery code.
	maxRecoveryAttempts = 5
)

// TaskIndex is the optional full-text index of tasks.
type TaskIndex interface {
	Index(ctx context.Context, t entity.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
	Search(ctx context.Context, ownerID, q string, size int) ([]string, error)
}

type AuthService struct {
	Users       repo.UserRepository
	Audit       repo.AuditRepository
	Hasher      *helpers.PasswordHasher
	JWT         *helpers.JWTManager
	Versions    *helpers.TokenVersions
	Notifier    *Notifier
	Index       TaskIndex
	Logger      *logrus.Logger
	RecoveryTTL time.Duration

	now func() time.Time
}

func NewAuthService(users repo.UserRepository, audit repo.AuditRepository, hasher *helpers.PasswordHasher,
	jwt *helpers.JWTManager, versions *helpers.TokenVersions, notifier *Notifier, logger *logrus.Logger,
	recoveryTTL time.Duration) *AuthService {
	return &AuthService{
		Users:       users,
		Audit:       audit,
		Hasher:      hasher,
		JWT:         jwt,
		Versions:    versions,
		Notifier:    notifier,
		Logger:      logger,
		RecoveryTTL: recoveryTTL,
		now:         time.Now,
	}
}

// Session is an issued bearer token together with the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// RequestMeta describes the caller for the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
	Timezone string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, meta RequestMeta) (*Session, error) {
	email := entity.NormalizeEmail(in.Email)
	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	token, err := helpers.GenToken(confirmTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate confirmation token: %w", err)
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		Email:        email,
		Username:     in.Username,
		PasswordHash: hash,
		Timezone:     in.Timezone,
		Confirmation: entity.PendingConfirmation(token),
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.Notifier.SendConfirmation(u)
	registrationsTotal.Add(1)
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID})
	s.record(ctx, u, "register", meta, nil)

	return s.issue(ctx, u)
}

// LoginWithPassword never tells an unknown email from a wrong password.
// A pending account gets its confirmation email again and no token.
func (s *AuthService) LoginWithPassword(ctx context.Context, email, password string, meta RequestMeta) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !s.Hasher.Compare(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsConfirmed() {
		s.Notifier.SendConfirmation(u)
		s.record(ctx, u, "login_pending", meta, map[string]any{"via": "form"})
		return nil, ErrEmailNotConfirmed
	}

	loginsTotal.Add(1)
	s.record(ctx, u, "login_form", meta, nil)
	return s.issue(ctx, u)
}

// LoginWithToken renews the token of an already authenticated user.
func (s *AuthService) LoginWithToken(ctx context.Context, userID string, meta RequestMeta) (*Session, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsConfirmed() {
		s.Notifier.SendConfirmation(u)
		s.record(ctx, u, "login_pending", meta, map[string]any{"via": "jwt"})
		return nil, ErrEmailNotConfirmed
	}

	loginsTotal.Add(1)
	s.record(ctx, u, "login_jwt", meta, nil)
	return s.issue(ctx, u)
}

func (s *AuthService) ConfirmEmail(ctx context.Context, token string, meta RequestMeta) error {
	if token == "" {
		return ErrInvalidConfirmation
	}
	u, err := s.Users.ConfirmByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidConfirmation
		}
		return fmt.Errorf("confirm email: %w", err)
	}
	s.record(ctx, u, "confirm_email", meta, nil)
	return nil
}

// ResendConfirmation reports whether an email was sent; false means the
// address is already confirmed.
func (s *AuthService) ResendConfirmation(ctx context.Context, userID string) (bool, error) {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.IsConfirmed() {
		return false, nil
	}
	s.Notifier.SendConfirmation(u)
	return true, nil
}

// DeleteAccount removes the user and everything it owns after checking the
// password. Tokens issued before are revoked when a version store is set.
func (s *AuthService) DeleteAccount(ctx context.Context, userID, password string, meta RequestMeta) error {
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.Hasher.Compare(u.PasswordHash, password) {
		return ErrWrongPassword
	}
	if err := s.Users.DeleteCascade(ctx, u.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.bumpVersion(ctx, u.ID)
	if s.Index != nil {
		if err := s.Index.DeleteByOwner(ctx, u.ID); err != nil {
			helpers.LogError(s.Logger, "remove tasks from search index failed", err, logrus.Fields{"user_id": u.ID})
		}
	}
	accountsDeletedTotal.Add(1)
	s.record(ctx, u, "delete_account", meta, nil)
	return nil
}

// SendRecoveryCode issues a code for an existing account. Unknown addresses
// succeed silently.
func (s *AuthService) SendRecoveryCode(ctx context.Context, email string, meta RequestMeta) error {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	code, err := helpers.GenRecoveryCode()
	if err != nil {
		return fmt.Errorf("generate recovery code: %w", err)
	}
	exp := s.now().Add(s.RecoveryTTL)
	if err := s.Users.SetRecoveryCode(ctx, u.ID, code, exp); err != nil {
		return fmt.Errorf("store recovery code: %w", err)
	}

	s.Notifier.SendRecoveryCode(u, code, exp)
	s.record(ctx, u, "recovery_issue", meta, nil)
	return nil
}

// ResetPassword replaces the password when code matches the live recovery
// code of the account, then invalidates the code. Every check uses up one of
// maxRecoveryAttempts; once they are gone the code is dropped.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, password string, meta RequestMeta) error {
	if code == "" {
		return ErrInvalidRecoveryCode
	}
	u, err := s.Users.TakeRecoveryAttempt(ctx, entity.NormalizeEmail(email), maxRecoveryAttempts)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidRecoveryCode
		}
		return fmt.Errorf("lookup recovery code: %w", err)
	}
	if u.RecoveryCode == nil || u.RecoveryExpiresAt == nil {
		return ErrInvalidRecoveryCode
	}
	current := *u.RecoveryCode
	if subtle.ConstantTimeCompare([]byte(current), []byte(code)) != 1 {
		if u.RecoveryAttempts >= maxRecoveryAttempts {
			s.dropRecoveryCode(ctx, u, current)
			s.record(ctx, u, "recovery_locked", meta, nil)
		}
		return ErrInvalidRecoveryCode
	}
	if !s.now().Before(*u.RecoveryExpiresAt) {
		s.dropRecoveryCode(ctx, u, current)
		return ErrInvalidRecoveryCode
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Users.ResetPassword(ctx, u.ID, current, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidRecoveryCode
		}
		return fmt.Errorf("update password: %w", err)
	}

	s.bumpVersion(ctx, u.ID)
	s.record(ctx, u, "recovery_confirm", meta, nil)
	return nil
}

func (s *AuthService) dropRecoveryCode(ctx context.Context, u *entity.User, code string) {
	err := s.Users.ClearRecoveryCode(ctx, u.ID, code)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		helpers.LogError(s.Logger, "clear recovery code failed", err, logrus.Fields{"user_id": u.ID})
	}
}

// CurrentUser loads the user behind a token.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.getUser(ctx, userID)
}

func (s *AuthService) getUser(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u *entity.User) (*Session, error) {
	ver, err := s.Versions.Current(ctx, u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("read token version failed")
	}
	token, exp, err := s.JWT.Generate(u.ID, ver)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *AuthService) bumpVersion(ctx context.Context, userID string) {
	if err := s.Versions.Bump(ctx, userID); err != nil {
		helpers.LogError(s.Logger, "bump token version failed", err, logrus.Fields{"user_id": userID})
	}
}

func (s *AuthService) record(ctx context.Context, u *entity.User, action string, meta RequestMeta, extra map[string]any) {
	if s.Audit == nil {
		return
	}
	entry := entity.AuditEntry{
		UserID:    u.ID,
		Email:     u.Email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  extra,
		CreatedAt: s.now(),
	}
	if err := s.Audit.Insert(ctx, entry); err != nil {
		s.Logger.WithError(err).WithField("action", action).Warn("audit insert failed")
	}
}
