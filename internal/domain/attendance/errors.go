package attendance

import "errors"

var (
	ErrBranchNotFound   = errors.New("branch not found")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrForbidden        = errors.New("branch not assigned to user")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidTime      = errors.New("invalid time, expected HH:MM")
)
