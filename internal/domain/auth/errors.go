package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrLastAdmin          = errors.New("cannot delete the last admin")
	ErrAdminRequired      = errors.New("admin privileges required")
	ErrUnknownPermission  = errors.New("unknown permission")
)
