package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventmanager/internal/clock"
	"eventmanager/internal/domain"
)

type locationService struct {
	locationRepo   domain.LocationRepository
	clk            clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewLocationService creates the location service.
func NewLocationService(locationRepo domain.LocationRepository, clk clock.Clock, logger *slog.Logger, timeout time.Duration) domain.LocationService {
	return &locationService{
		locationRepo:   locationRepo,
		clk:            clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *locationService) CreateLocation(ctx context.Context, location *domain.Location) (*domain.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" || location.Capacity <= 0 {
		return nil, domain.ErrInvalidInput
	}
	now := s.clk.Now()
	location.CreatedAt = now
	location.UpdatedAt = now
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return location, nil
}

func (s *locationService) UpdateLocation(ctx context.Context, id string, patch domain.LocationPatch) (*domain.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.EntityNotFoundError{Kind: "location", ID: id}
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		location.Name = name
	}
	if patch.Address != nil {
		location.Address = *patch.Address
	}
	if patch.Description != nil {
		location.Description = *patch.Description
	}
	if patch.Capacity != nil {
		// Capacity only ever grows. Events already committed against the
		// location rely on the seats they were sold.
		if *patch.Capacity < location.Capacity {
			return nil, domain.ErrCapacityLowerThanBefore
		}
		location.Capacity = *patch.Capacity
	}
	if err := s.locationRepo.Update(ctx, location); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.EntityNotFoundError{Kind: "location", ID: id}
		}
		return nil, fmt.Errorf("update location: %w", err)
	}
	return location, nil
}

func (s *locationService) GetLocationByID(ctx context.Context, id string) (*domain.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	location, err := s.locationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.EntityNotFoundError{Kind: "location", ID: id}
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return location, nil
}

func (s *locationService) ListLocations(ctx context.Context, params domain.PaginationParams) ([]*domain.Location, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	locations, total, err := s.locationRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	if locations == nil {
		locations = []*domain.Location{}
	}
	return locations, total, nil
}

func (s *locationService) DeleteLocation(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.locationRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.EntityNotFoundError{Kind: "location", ID: id}
		}
		return fmt.Errorf("delete location: %w", err)
	}
	return nil
}
