package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event. The automatic lifecycle is
// WAIT_START -> STARTED -> FINISHED; CANCELLED is reachable from WAIT_START or
// STARTED by an owner/admin action. Status never moves backward.
type EventStatus string

const (
	StatusWaitStart EventStatus = "WAIT_START"
	StatusStarted   EventStatus = "STARTED"
	StatusFinished  EventStatus = "FINISHED"
	StatusCancelled EventStatus = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case StatusWaitStart, StatusStarted, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is legal from s.
func (s EventStatus) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// MinEventDuration is the shortest allowed event duration.
const MinEventDuration = 30 * time.Minute

// Event represents a scheduled event held at a capacity-limited location.
// OccupiedPlaces is maintained exclusively by the registration service and
// must always equal the number of active registrations for the event.
// swagger:model Event
type Event struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	OwnerID         string      `json:"owner_id"`
	MaxPlaces       int         `json:"max_places"`
	OccupiedPlaces  int         `json:"occupied_places"`
	Date            time.Time   `json:"date"`
	Cost            int         `json:"cost"`
	DurationMinutes int         `json:"duration_minutes"`
	LocationID      string      `json:"location_id"`
	Status          EventStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// NewEvent returns a new Event in the wait-start status with no occupied
// places. ID is set by the repository on create.
func NewEvent(name, ownerID, locationID string, maxPlaces, cost, durationMinutes int, date, createdAt time.Time) *Event {
	return &Event{
		Name:            name,
		OwnerID:         ownerID,
		LocationID:      locationID,
		MaxPlaces:       maxPlaces,
		OccupiedPlaces:  0,
		Cost:            cost,
		DurationMinutes: durationMinutes,
		Date:            date,
		Status:          StatusWaitStart,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

// Duration returns the event duration as a time.Duration.
func (e *Event) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// EndsAt returns the instant the event finishes.
func (e *Event) EndsAt() time.Time {
	return e.Date.Add(e.Duration())
}

// Tick returns the status the event should have at the given instant. It is a
// pure function of (status, date, duration, now): a wait-start event whose
// date has passed becomes started, a started event whose end has passed
// becomes finished. Cancelled and finished are terminal and never re-evaluated.
func (e *Event) Tick(now time.Time) EventStatus {
	switch e.Status {
	case StatusWaitStart:
		if !now.Before(e.Date) {
			return StatusStarted
		}
	case StatusStarted:
		if !now.Before(e.EndsAt()) {
			return StatusFinished
		}
	}
	return e.Status
}

// CanRegister reports whether new registrations are accepted in status s.
func (s EventStatus) CanRegister() bool {
	return s == StatusWaitStart || s == StatusStarted
}

// CanCancelRegistration reports whether an existing registration may be
// cancelled in status s. Registrations on a cancelled event may still be
// withdrawn; once the event has started or finished they are locked in.
func (s EventStatus) CanCancelRegistration() bool {
	return s == StatusWaitStart || s == StatusCancelled
}

// CanDelete reports whether the event may be deleted (marked cancelled via the
// delete path). Only events that have not yet started qualify.
func (s EventStatus) CanDelete() bool {
	return s == StatusWaitStart
}

// RequestCancellation transitions the event to cancelled. It fails with
// ErrAlreadyCancelled for an already-cancelled event and with a
// StatusNotAllowedError for a finished one. Cancellation is a status flag
// only: occupied places and existing registrations are left untouched.
func (e *Event) RequestCancellation() error {
	switch e.Status {
	case StatusCancelled:
		return ErrAlreadyCancelled
	case StatusFinished:
		return &StatusNotAllowedError{EventID: e.ID, Status: e.Status, Operation: "cancel"}
	}
	e.Status = StatusCancelled
	return nil
}

// EventPatch holds the mutable event fields for an update. Nil means "leave
// unchanged".
type EventPatch struct {
	Name            *string
	MaxPlaces       *int
	Date            *time.Time
	Cost            *int
	DurationMinutes *int
	LocationID      *string
}

// EventSearchFilter narrows an event search. Zero values mean "no constraint".
type EventSearchFilter struct {
	Name       string
	LocationID string
	OwnerID    string
	Status     EventStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// EventRepository defines storage operations for events. Mutating methods are
// transaction-aware: when the context carries an open transaction they run
// inside it.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForUpdate loads the event row under an exclusive row lock. Must
	// be called inside a transaction; the lock serializes all seat and status
	// writes for the event.
	GetByIDForUpdate(ctx context.Context, id string) (*Event, error)
	// ListActiveByLocationID returns all non-cancelled events at a location.
	ListActiveByLocationID(ctx context.Context, locationID string) ([]*Event, error)
	// ListUnfinished returns all events not in a terminal status.
	ListUnfinished(ctx context.Context) ([]*Event, error)
	Search(ctx context.Context, filter EventSearchFilter, params PaginationParams) ([]*Event, int, error)
	Update(ctx context.Context, event *Event) error
	UpdateStatus(ctx context.Context, id string, status EventStatus) error
	// AddOccupiedPlaces adjusts the occupied-places counter by delta (which
	// may be negative). Callers must hold the event row lock.
	AddOccupiedPlaces(ctx context.Context, id string, delta int) error
}

// EventService defines the event mutation operations exposed to the delivery
// layer.
type EventService interface {
	CreateEvent(ctx context.Context, actorID string, event *Event) (*Event, error)
	UpdateEvent(ctx context.Context, actorID, eventID string, patch EventPatch) (*Event, error)
	// DeleteEvent cancels a wait-start event. The row is kept; the status
	// becomes cancelled.
	DeleteEvent(ctx context.Context, actorID, eventID string) error
	// CancelEvent cancels an event that has not finished yet, including one
	// already started.
	CancelEvent(ctx context.Context, actorID, eventID string) (*Event, error)
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	SearchEvents(ctx context.Context, filter EventSearchFilter, params PaginationParams) ([]*Event, int, error)
}
