package services

import (
	"errors"
)

// Error kinds surfaced to handlers. Services wrap these with context via
// fmt.Errorf("%w: ...") so handlers can map them with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("already exists")
	ErrForbidden        = errors.New("forbidden")
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTaskNotCompleted = errors.New("task has not been completed")
)
