package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services. Repositories translate storage-level
// "no rows" into ErrNotFound so services never see sql.ErrNoRows directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")

	// ErrUserNotEventCreator is returned when the acting user is neither the
	// event owner nor an administrator.
	ErrUserNotEventCreator = errors.New("user is not the event creator")

	// ErrDateInPast is returned when an event is created or moved to a date
	// that has already passed.
	ErrDateInPast = errors.New("event date is in the past")

	// ErrAlreadyRegistered is returned on a duplicate registration attempt for
	// the same (user, event) pair.
	ErrAlreadyRegistered = errors.New("user is already registered for the event")

	// ErrRegistrationNotFound is returned when cancelling a registration that
	// does not exist.
	ErrRegistrationNotFound = errors.New("registration not found")

	// ErrAlreadyCancelled is returned when cancelling an event that is already
	// in the cancelled status.
	ErrAlreadyCancelled = errors.New("event is already cancelled")

	// ErrCannotDeleteStartedEvent is returned by the delete path for any event
	// that has left the wait-start status.
	ErrCannotDeleteStartedEvent = errors.New("cannot delete an event that has started")

	// ErrCapacityLowerThanBefore is returned when a location update attempts to
	// reduce its capacity.
	ErrCapacityLowerThanBefore = errors.New("location capacity cannot be lowered")

	// ErrOccupiedExceedsMaxPlaces is returned when an event update would set
	// max places below the current number of occupied places.
	ErrOccupiedExceedsMaxPlaces = errors.New("occupied places exceed max places")

	// ErrDuplicateEmail is returned when signing up with an email that is
	// already in use.
	ErrDuplicateEmail = errors.New("email already in use")
)

// EntityNotFoundError identifies which entity was missing. It matches
// ErrNotFound under errors.Is so callers that only care about "absent" keep
// working.
type EntityNotFoundError struct {
	Kind string
	ID   string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *EntityNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientSeatsError is returned when a registration or event mutation
// requires more seats than are available. Available carries the number of
// seats left at the moment of the check.
type InsufficientSeatsError struct {
	Available int
}

func (e *InsufficientSeatsError) Error() string {
	return fmt.Sprintf("insufficient seats: %d available", e.Available)
}

// StatusNotAllowedError is returned when an operation is not permitted for the
// event's current lifecycle status.
type StatusNotAllowedError struct {
	EventID   string
	Status    EventStatus
	Operation string
}

func (e *StatusNotAllowedError) Error() string {
	return fmt.Sprintf("operation %q is not allowed for event %s in status %s", e.Operation, e.EventID, e.Status)
}

// IsConflict reports whether err represents a business-rule conflict, i.e. the
// request was well-formed but the current state rejects it.
func IsConflict(err error) bool {
	var seats *InsufficientSeatsError
	var status *StatusNotAllowedError
	switch {
	case errors.As(err, &seats), errors.As(err, &status):
		return true
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrAlreadyCancelled),
		errors.Is(err, ErrCannotDeleteStartedEvent),
		errors.Is(err, ErrCapacityLowerThanBefore),
		errors.Is(err, ErrOccupiedExceedsMaxPlaces),
		errors.Is(err, ErrDuplicateEmail):
		return true
	}
	return false
}
