package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailNotRegistered = errors.New("no user with that email")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("access forbidden")
	ErrUnknownRole        = errors.New("unknown role")
	ErrRoleNotAllowed     = errors.New("role not allowed for self-registration")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)
