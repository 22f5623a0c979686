package domain

import (
	"context"
	"time"
)

// EventSnapshot captures every mutable event field at one point in time. Used
// in change records to carry old and new values.
type EventSnapshot struct {
	Name            string      `json:"name"`
	OwnerID         string      `json:"owner_id"`
	MaxPlaces       int         `json:"max_places"`
	OccupiedPlaces  int         `json:"occupied_places"`
	Date            time.Time   `json:"date"`
	Cost            int         `json:"cost"`
	DurationMinutes int         `json:"duration_minutes"`
	LocationID      string      `json:"location_id"`
	Status          EventStatus `json:"status"`
}

// Snapshot returns the event's current field values as an EventSnapshot.
func (e *Event) Snapshot() *EventSnapshot {
	return &EventSnapshot{
		Name:            e.Name,
		OwnerID:         e.OwnerID,
		MaxPlaces:       e.MaxPlaces,
		OccupiedPlaces:  e.OccupiedPlaces,
		Date:            e.Date,
		Cost:            e.Cost,
		DurationMinutes: e.DurationMinutes,
		LocationID:      e.LocationID,
		Status:          e.Status,
	}
}

// EventChange is the record emitted after a committed event mutation. Old is
// nil for a freshly created event. ActorID is empty for automatic transitions
// made by the scheduler.
type EventChange struct {
	EventID       string         `json:"event_id"`
	ActorID       string         `json:"actor_id,omitempty"`
	Old           *EventSnapshot `json:"old,omitempty"`
	New           *EventSnapshot `json:"new"`
	RegistrantIDs []string       `json:"registrant_ids"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

// ChangePublisher delivers event change records. Delivery is fire-and-forget:
// a publish failure never rolls back the mutation that produced the record.
type ChangePublisher interface {
	Publish(ctx context.Context, change *EventChange)
}
