package domain

import (
	"context"
	"time"
)

// EventRegistration represents one user's active attendance claim on one
// event. At most one registration exists per (user, event) pair at any time;
// cancellation deletes the row, so re-registering afterwards is allowed.
// swagger:model EventRegistration
type EventRegistration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEventRegistration creates a new EventRegistration. ID is set by the
// repository on create.
func NewEventRegistration(eventID, userID string, createdAt time.Time) *EventRegistration {
	return &EventRegistration{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// Transactor runs fn inside a storage transaction. Repository calls made with
// the context passed to fn join that transaction; fn returning an error rolls
// everything back.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventRegistrationRepository defines storage operations for registrations.
// Mutating methods are transaction-aware via the context.
type EventRegistrationRepository interface {
	Create(ctx context.Context, reg *EventRegistration) error
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*EventRegistration, error)
	ListByUserID(ctx context.Context, userID string) ([]*EventRegistration, error)
	// Delete removes the registration row entirely (no soft delete).
	Delete(ctx context.Context, id string) error
	CountByEventID(ctx context.Context, eventID string) (int, error)
}

// RegistrationService is the registration ledger: it keeps an event's
// occupied-places counter exactly equal to its number of active registrations
// under concurrent register/cancel traffic.
type RegistrationService interface {
	// Register claims one seat at the event for the user. The seat check and
	// the counter increment are serialized per event.
	Register(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	// Cancel releases the user's seat and deletes the registration row in the
	// same atomic unit.
	Cancel(ctx context.Context, eventID, userID string) error
	IsRegistered(ctx context.Context, eventID, userID string) (bool, error)
	Find(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	ListEventRegistrations(ctx context.Context, eventID string) ([]*EventRegistration, error)
}
