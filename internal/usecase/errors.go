package usecase

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrConflict              = errors.New("conflicting state")
	ErrInsufficientFunds     = errors.New("insufficient budget")
	ErrDriverLocked          = errors.New("driver is locked")
	ErrLimitExceeded         = errors.New("limit exceeded")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// LockedError carries the lock expiry so callers can surface it unchanged.
type LockedError struct {
	LockedUntil time.Time
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("driver is locked until %s", e.LockedUntil.Format(time.RFC3339))
}

func (e *LockedError) Is(target error) bool {
	return target == ErrDriverLocked
}

// LockedUntilFromError extracts the lock expiry when err wraps a LockedError.
func LockedUntilFromError(err error) (time.Time, bool) {
	var locked *LockedError
	if errors.As(err, &locked) {
		return locked.LockedUntil, true
	}
	return time.Time{}, false
}
