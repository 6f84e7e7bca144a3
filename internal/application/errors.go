package application

import "errors"

var (
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrWrongPassword       = errors.New("wrong password")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidConfirmation = errors.New("invalid confirmation token")
	ErrInvalidRecoveryCode = errors.New("invalid or expired recovery code")
	ErrNotFound            = errors.New("not found")
	ErrParentNotFound      = errors.New("parent not found")
)
