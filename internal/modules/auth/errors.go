package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
)
