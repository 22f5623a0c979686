package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventmanager/internal/clock"
	"eventmanager/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	locationRepo   domain.LocationRepository
	regRepo        domain.EventRegistrationRepository
	userRepo       domain.UserRepository
	tx             domain.Transactor
	publisher      domain.ChangePublisher
	clk            clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates the event mutation service. All capacity checks run
// inside a transaction holding the relevant row locks.
func NewEventService(
	eventRepo domain.EventRepository,
	locationRepo domain.LocationRepository,
	regRepo domain.EventRegistrationRepository,
	userRepo domain.UserRepository,
	tx domain.Transactor,
	publisher domain.ChangePublisher,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		locationRepo:   locationRepo,
		regRepo:        regRepo,
		userRepo:       userRepo,
		tx:             tx,
		publisher:      publisher,
		clk:            clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, actorID string, event *domain.Event) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if actorID == "" {
		return nil, domain.ErrInvalidInput
	}
	event.OwnerID = actorID
	event.Status = domain.StatusWaitStart
	event.OccupiedPlaces = 0

	now := s.clk.Now()
	if event.Date.Before(now) {
		return nil, domain.ErrDateInPast
	}
	if err := validateEventFields(event.MaxPlaces, event.DurationMinutes, event.Cost); err != nil {
		return nil, err
	}
	event.CreatedAt = now
	event.UpdatedAt = now

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		// Lock the location row so concurrent creates at the same location
		// serialize their capacity checks.
		location, err := s.locationRepo.GetByIDForUpdate(txCtx, event.LocationID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.EntityNotFoundError{Kind: "location", ID: event.LocationID}
			}
			return fmt.Errorf("get location: %w", err)
		}
		siblings, err := s.eventRepo.ListActiveByLocationID(txCtx, event.LocationID)
		if err != nil {
			return fmt.Errorf("list location events: %w", err)
		}
		available := domain.AvailableLocationSeats(location, siblings, "")
		if available < event.MaxPlaces {
			return &domain.InsufficientSeatsError{Available: max(available, 0)}
		}
		if err := s.eventRepo.Create(txCtx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, &domain.EventChange{
		EventID:       event.ID,
		ActorID:       actorID,
		New:           event.Snapshot(),
		RegistrantIDs: []string{},
		OccurredAt:    now,
	})
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actorID, eventID string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Event
	var change *domain.EventChange
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.EntityNotFoundError{Kind: "event", ID: eventID}
			}
			return fmt.Errorf("get event: %w", err)
		}
		if !actor.CanModerate(event) {
			return domain.ErrUserNotEventCreator
		}
		old := event.Snapshot()

		if patch.Name != nil {
			event.Name = *patch.Name
		}
		if patch.Date != nil {
			if patch.Date.Before(s.clk.Now()) {
				return domain.ErrDateInPast
			}
			event.Date = *patch.Date
		}
		if patch.Cost != nil {
			event.Cost = *patch.Cost
		}
		if patch.DurationMinutes != nil {
			event.DurationMinutes = *patch.DurationMinutes
		}
		newMax := event.MaxPlaces
		if patch.MaxPlaces != nil {
			newMax = *patch.MaxPlaces
		}
		if err := validateEventFields(newMax, event.DurationMinutes, event.Cost); err != nil {
			return err
		}
		if newMax < event.OccupiedPlaces {
			return domain.ErrOccupiedExceedsMaxPlaces
		}

		newLocationID := event.LocationID
		if patch.LocationID != nil {
			newLocationID = *patch.LocationID
		}
		// Re-check the location budget whenever the event moves or grows. The
		// event's own prior reservation is excluded from the sum.
		if newLocationID != event.LocationID || newMax > event.MaxPlaces {
			location, err := s.locationRepo.GetByIDForUpdate(txCtx, newLocationID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return &domain.EntityNotFoundError{Kind: "location", ID: newLocationID}
				}
				return fmt.Errorf("get location: %w", err)
			}
			siblings, err := s.eventRepo.ListActiveByLocationID(txCtx, newLocationID)
			if err != nil {
				return fmt.Errorf("list location events: %w", err)
			}
			available := domain.AvailableLocationSeats(location, siblings, event.ID)
			if available < newMax {
				return &domain.InsufficientSeatsError{Available: max(available, 0)}
			}
		}
		event.MaxPlaces = newMax
		event.LocationID = newLocationID

		if err := s.eventRepo.Update(txCtx, event); err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		updated = event
		change = &domain.EventChange{
			EventID:    event.ID,
			ActorID:    actorID,
			Old:        old,
			New:        event.Snapshot(),
			OccurredAt: s.clk.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	change.RegistrantIDs = s.registrantIDs(ctx, eventID)
	s.publish(ctx, change)
	return updated, nil
}

// DeleteEvent is the delete path: it only applies to events that have not yet
// started, and it marks the row cancelled rather than removing it.
func (s *eventService) DeleteEvent(ctx context.Context, actorID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return err
	}

	var change *domain.EventChange
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.EntityNotFoundError{Kind: "event", ID: eventID}
			}
			return fmt.Errorf("get event: %w", err)
		}
		if !actor.CanModerate(event) {
			return domain.ErrUserNotEventCreator
		}
		if event.Status == domain.StatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		if !event.Status.CanDelete() {
			return domain.ErrCannotDeleteStartedEvent
		}
		old := event.Snapshot()
		event.Status = domain.StatusCancelled
		if err := s.eventRepo.UpdateStatus(txCtx, eventID, domain.StatusCancelled); err != nil {
			return fmt.Errorf("update event status: %w", err)
		}
		change = &domain.EventChange{
			EventID:    event.ID,
			ActorID:    actorID,
			Old:        old,
			New:        event.Snapshot(),
			OccurredAt: s.clk.Now(),
		}
		return nil
	})
	if err != nil {
		return err
	}

	change.RegistrantIDs = s.registrantIDs(ctx, eventID)
	s.publish(ctx, change)
	return nil
}

// CancelEvent cancels an event from the wait-start or started status.
// Occupied places and registrations are left untouched; the status flag alone
// changes.
func (s *eventService) CancelEvent(ctx context.Context, actorID, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	var cancelled *domain.Event
	var change *domain.EventChange
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.EntityNotFoundError{Kind: "event", ID: eventID}
			}
			return fmt.Errorf("get event: %w", err)
		}
		if !actor.CanModerate(event) {
			return domain.ErrUserNotEventCreator
		}
		old := event.Snapshot()
		if err := event.RequestCancellation(); err != nil {
			return err
		}
		if err := s.eventRepo.UpdateStatus(txCtx, eventID, event.Status); err != nil {
			return fmt.Errorf("update event status: %w", err)
		}
		cancelled = event
		change = &domain.EventChange{
			EventID:    event.ID,
			ActorID:    actorID,
			Old:        old,
			New:        event.Snapshot(),
			OccurredAt: s.clk.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	change.RegistrantIDs = s.registrantIDs(ctx, eventID)
	s.publish(ctx, change)
	return cancelled, nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.EntityNotFoundError{Kind: "event", ID: eventID}
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) SearchEvents(ctx context.Context, filter domain.EventSearchFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.ErrInvalidInput
	}
	events, total, err := s.eventRepo.Search(ctx, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("search events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, total, nil
}

func (s *eventService) actor(ctx context.Context, actorID string) (*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.EntityNotFoundError{Kind: "user", ID: actorID}
		}
		return nil, fmt.Errorf("get acting user: %w", err)
	}
	return actor, nil
}

func (s *eventService) registrantIDs(ctx context.Context, eventID string) []string {
	regs, err := s.regRepo.ListByEventID(ctx, eventID)
	if err != nil {
		s.logger.Warn("list registrants for change record", "event_id", eventID, "err", err)
		return []string{}
	}
	ids := make([]string, 0, len(regs))
	for _, reg := range regs {
		ids = append(ids, reg.UserID)
	}
	return ids
}

func (s *eventService) publish(ctx context.Context, change *domain.EventChange) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, change)
}

func validateEventFields(maxPlaces, durationMinutes, cost int) error {
	if maxPlaces < 0 || cost < 0 {
		return domain.ErrInvalidInput
	}
	if time.Duration(durationMinutes)*time.Minute < domain.MinEventDuration {
		return domain.ErrInvalidInput
	}
	return nil
}
