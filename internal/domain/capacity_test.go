package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableLocationSeats(t *testing.T) {
	loc := &Location{ID: "loc-1", Capacity: 100}
	events := []*Event{
		{ID: "ev-1", LocationID: "loc-1", MaxPlaces: 40, Status: StatusWaitStart},
		{ID: "ev-2", LocationID: "loc-1", MaxPlaces: 30, Status: StatusStarted},
		{ID: "ev-3", LocationID: "loc-1", MaxPlaces: 25, Status: StatusCancelled},
	}

	t.Run("cancelled events release their seats", func(t *testing.T) {
		assert.Equal(t, 30, AvailableLocationSeats(loc, events, ""))
	})

	t.Run("excluded event does not count its own reservation", func(t *testing.T) {
		assert.Equal(t, 70, AvailableLocationSeats(loc, events, "ev-1"))
	})

	t.Run("no events", func(t *testing.T) {
		assert.Equal(t, 100, AvailableLocationSeats(loc, nil, ""))
	})

	t.Run("overcommitted location goes negative", func(t *testing.T) {
		small := &Location{ID: "loc-2", Capacity: 50}
		assert.Equal(t, -20, AvailableLocationSeats(small, events, ""))
	})
}

func TestAvailableEventSeats(t *testing.T) {
	assert.Equal(t, 10, AvailableEventSeats(&Event{MaxPlaces: 10, OccupiedPlaces: 0}))
	assert.Equal(t, 1, AvailableEventSeats(&Event{MaxPlaces: 10, OccupiedPlaces: 9}))
	assert.Equal(t, 0, AvailableEventSeats(&Event{MaxPlaces: 10, OccupiedPlaces: 10}))
}
