package services

import (
	"context"
	"testing"
	"time"

	"eventmanager/internal/clock"
	"eventmanager/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocationService(t *testing.T) (domain.LocationService, *fakeLocationRepo) {
	t.Helper()
	repo := newFakeLocationRepo()
	svc := NewLocationService(repo, clock.NewManual(testNow), testLogger(), 5*time.Second)
	return svc, repo
}

func TestLocationService_CreateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		svc, _ := newLocationService(t)
		loc, err := svc.CreateLocation(ctx, &domain.Location{Name: "  City Hall  ", Address: "Main St 1", Capacity: 200})
		require.NoError(t, err)
		require.NotEmpty(t, loc.ID)
		assert.Equal(t, "City Hall", loc.Name)
		assert.Equal(t, testNow, loc.CreatedAt)
	})

	t.Run("blank name", func(t *testing.T) {
		svc, _ := newLocationService(t)
		_, err := svc.CreateLocation(ctx, &domain.Location{Name: "   ", Capacity: 200})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("non-positive capacity", func(t *testing.T) {
		svc, _ := newLocationService(t)
		_, err := svc.CreateLocation(ctx, &domain.Location{Name: "Hall", Capacity: 0})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestLocationService_UpdateLocation(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (domain.LocationService, *fakeLocationRepo) {
		svc, repo := newLocationService(t)
		require.NoError(t, repo.Create(ctx, &domain.Location{ID: "loc-1", Name: "Hall", Capacity: 100}))
		return svc, repo
	}

	t.Run("raise capacity", func(t *testing.T) {
		svc, repo := seed(t)
		capacity := 150
		loc, err := svc.UpdateLocation(ctx, "loc-1", domain.LocationPatch{Capacity: &capacity})
		require.NoError(t, err)
		assert.Equal(t, 150, loc.Capacity)

		stored, err := repo.GetByID(ctx, "loc-1")
		require.NoError(t, err)
		assert.Equal(t, 150, stored.Capacity)
	})

	t.Run("same capacity is a no-op", func(t *testing.T) {
		svc, _ := seed(t)
		capacity := 100
		_, err := svc.UpdateLocation(ctx, "loc-1", domain.LocationPatch{Capacity: &capacity})
		require.NoError(t, err)
	})

	t.Run("lower capacity rejected", func(t *testing.T) {
		svc, repo := seed(t)
		capacity := 99
		_, err := svc.UpdateLocation(ctx, "loc-1", domain.LocationPatch{Capacity: &capacity})
		require.ErrorIs(t, err, domain.ErrCapacityLowerThanBefore)
		assert.True(t, domain.IsConflict(err))

		stored, err := repo.GetByID(ctx, "loc-1")
		require.NoError(t, err)
		assert.Equal(t, 100, stored.Capacity)
	})

	t.Run("rename", func(t *testing.T) {
		svc, _ := seed(t)
		name := "Grand Hall"
		loc, err := svc.UpdateLocation(ctx, "loc-1", domain.LocationPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Grand Hall", loc.Name)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		svc, _ := seed(t)
		name := "  "
		_, err := svc.UpdateLocation(ctx, "loc-1", domain.LocationPatch{Name: &name})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("not found", func(t *testing.T) {
		svc, _ := newLocationService(t)
		capacity := 150
		_, err := svc.UpdateLocation(ctx, "loc-missing", domain.LocationPatch{Capacity: &capacity})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestLocationService_GetAndList(t *testing.T) {
	ctx := context.Background()
	svc, repo := newLocationService(t)
	require.NoError(t, repo.Create(ctx, &domain.Location{ID: "loc-1", Name: "Hall", Capacity: 100}))

	loc, err := svc.GetLocationByID(ctx, "loc-1")
	require.NoError(t, err)
	assert.Equal(t, "Hall", loc.Name)

	_, err = svc.GetLocationByID(ctx, "loc-missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	locations, total, err := svc.ListLocations(ctx, domain.PaginationParams{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, locations, 1)
}

func TestLocationService_DeleteLocation(t *testing.T) {
	ctx := context.Background()
	svc, repo := newLocationService(t)
	require.NoError(t, repo.Create(ctx, &domain.Location{ID: "loc-1", Name: "Hall", Capacity: 100}))

	require.NoError(t, svc.DeleteLocation(ctx, "loc-1"))
	_, err := svc.GetLocationByID(ctx, "loc-1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.DeleteLocation(ctx, "loc-1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
