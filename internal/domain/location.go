package domain

import (
	"context"
	"time"
)

// Location represents a venue with a fixed seating capacity. The sum of
// MaxPlaces over all non-cancelled events at a location never exceeds
// Capacity.
// swagger:model Location
type Location struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewLocation returns a new Location. ID is set by the repository on create.
func NewLocation(name, address, description string, capacity int, createdAt time.Time) *Location {
	return &Location{
		Name:        name,
		Address:     address,
		Capacity:    capacity,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// LocationPatch holds the mutable location fields for an update. Nil means
// "leave unchanged".
type LocationPatch struct {
	Name        *string
	Address     *string
	Capacity    *int
	Description *string
}

// LocationRepository defines storage operations for locations.
type LocationRepository interface {
	Create(ctx context.Context, location *Location) error
	GetByID(ctx context.Context, id string) (*Location, error)
	// GetByIDForUpdate loads the location row under an exclusive row lock.
	// Must be called inside a transaction; the lock serializes capacity checks
	// spanning the location's events.
	GetByIDForUpdate(ctx context.Context, id string) (*Location, error)
	List(ctx context.Context, params PaginationParams) ([]*Location, int, error)
	Update(ctx context.Context, location *Location) error
	Delete(ctx context.Context, id string) error
}

// LocationService defines location operations exposed to the delivery layer.
// Capacity may only grow: updates that lower it fail with
// ErrCapacityLowerThanBefore.
type LocationService interface {
	CreateLocation(ctx context.Context, location *Location) (*Location, error)
	UpdateLocation(ctx context.Context, id string, patch LocationPatch) (*Location, error)
	GetLocationByID(ctx context.Context, id string) (*Location, error)
	ListLocations(ctx context.Context, params PaginationParams) ([]*Location, int, error)
	DeleteLocation(ctx context.Context, id string) error
}
