package service

import "errors"

// Credential failures are uniform: the message never reveals whether the
// account exists.
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrRefreshExpired     = errors.New("refresh token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNoDefaultRole      = errors.New("default customer role not found")
)
