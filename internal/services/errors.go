package services

import (
	"errors"
	"fmt"

	"github.com/taskquest/backend/internal/progression"
	"github.com/taskquest/backend/internal/repository"
)

// The service layer surfaces one error kind per rejection category so the
// handler layer can map each to a distinct response without string matching.
var (
	// ErrNotFound is returned when the task, reward, or account does not exist.
	ErrNotFound = repository.ErrNotFound

	// ErrForbidden is returned when the caller does not own the task.
	ErrForbidden = errors.New("forbidden")

	// ErrAlreadyCompleted is returned for a completion attempt on a completed
	// task. Completion is not idempotent: a silent no-op would hide the race
	// that double-awards points.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrRewardUnavailable is returned when the reward's available flag is off.
	ErrRewardUnavailable = errors.New("reward unavailable")

	// ErrInsufficientPoints is the sentinel wrapped by InsufficientPointsError.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrInvalidAward is returned when a task carries a non-positive reward value.
	ErrInvalidAward = progression.ErrInvalidAward

	// ErrVersionConflict is surfaced after the retry limit for optimistic
	// writes is exhausted.
	ErrVersionConflict = repository.ErrVersionConflict
)

// InsufficientPointsError carries how many points the caller was short, for
// the presentation layer to display. errors.Is(err, ErrInsufficientPoints)
// matches it.
type InsufficientPointsError struct {
	Shortfall int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: short %d", e.Shortfall)
}

func (e *InsufficientPointsError) Unwrap() error { return ErrInsufficientPoints }
