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

type registrationService struct {
	eventRepo      domain.EventRepository
	regRepo        domain.EventRegistrationRepository
	tx             domain.Transactor
	clk            clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewRegistrationService creates the registration ledger. Every register and
// cancel runs inside one transaction holding the event row lock, so the
// occupied-places counter always equals the number of active registrations.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	regRepo domain.EventRegistrationRepository,
	tx domain.Transactor,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:      eventRepo,
		regRepo:        regRepo,
		tx:             tx,
		clk:            clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var created *domain.EventRegistration
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		// The row lock serializes the seat check against every other
		// register/cancel on this event: two callers can never both observe
		// room for the last seat.
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.EntityNotFoundError{Kind: "event", ID: eventID}
			}
			return fmt.Errorf("get event: %w", err)
		}
		if !event.Status.CanRegister() {
			return &domain.StatusNotAllowedError{EventID: eventID, Status: event.Status, Operation: "register"}
		}
		if _, err := s.regRepo.GetByEventAndUser(txCtx, eventID, userID); err == nil {
			return domain.ErrAlreadyRegistered
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get registration: %w", err)
		}
		if available := domain.AvailableEventSeats(event); available <= 0 {
			return &domain.InsufficientSeatsError{Available: max(available, 0)}
		}

		reg := domain.NewEventRegistration(eventID, userID, s.clk.Now())
		if err := s.regRepo.Create(txCtx, reg); err != nil {
			if errors.Is(err, domain.ErrAlreadyRegistered) {
				return domain.ErrAlreadyRegistered
			}
			return fmt.Errorf("create registration: %w", err)
		}
		if err := s.eventRepo.AddOccupiedPlaces(txCtx, eventID, 1); err != nil {
			return fmt.Errorf("increment occupied places: %w", err)
		}
		created = reg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *registrationService) Cancel(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return &domain.EntityNotFoundError{Kind: "event", ID: eventID}
			}
			return fmt.Errorf("get event: %w", err)
		}
		reg, err := s.regRepo.GetByEventAndUser(txCtx, eventID, userID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrRegistrationNotFound
			}
			return fmt.Errorf("get registration: %w", err)
		}
		if !event.Status.CanCancelRegistration() {
			return &domain.StatusNotAllowedError{EventID: eventID, Status: event.Status, Operation: "cancel_registration"}
		}
		// Delete and decrement commit or roll back together; a registration
		// row can never outlive its place in the counter.
		if err := s.regRepo.Delete(txCtx, reg.ID); err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}
		if err := s.eventRepo.AddOccupiedPlaces(txCtx, eventID, -1); err != nil {
			return fmt.Errorf("decrement occupied places: %w", err)
		}
		return nil
	})
}

func (s *registrationService) IsRegistered(ctx context.Context, eventID, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.regRepo.GetByEventAndUser(ctx, eventID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get registration: %w", err)
	}
	return true, nil
}

func (s *registrationService) Find(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.regRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID string) ([]*domain.EventRegistration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.EntityNotFoundError{Kind: "event", ID: eventID}
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	regs, err := s.regRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.EventRegistration{}
	}
	return regs, nil
}
