package domain

// Capacity arithmetic over caller-supplied snapshots. These functions never
// touch storage; callers are responsible for loading a consistent view first.

// AvailableLocationSeats returns the number of seats still unreserved at the
// location: its capacity minus the max places of every non-cancelled event
// held there. The event identified by excludingEventID is skipped so that an
// event being updated does not count its own prior reservation twice; pass ""
// to exclude nothing.
func AvailableLocationSeats(location *Location, events []*Event, excludingEventID string) int {
	reserved := 0
	for _, e := range events {
		if e.ID == excludingEventID || e.Status == StatusCancelled {
			continue
		}
		reserved += e.MaxPlaces
	}
	return location.Capacity - reserved
}

// AvailableEventSeats returns the number of free seats at the event. A
// non-positive result means no room; a negative result indicates a
// consistency bug elsewhere, never a user error.
func AvailableEventSeats(event *Event) int {
	return event.MaxPlaces - event.OccupiedPlaces
}
