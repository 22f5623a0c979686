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

// StatusScheduler advances event statuses on a fixed period: wait-start events
// whose date has passed become started, started events past their end become
// finished. Each evaluation is idempotent, so an event whose persistence
// failed is simply retried on the next tick.
type StatusScheduler struct {
	eventRepo domain.EventRepository
	regRepo   domain.EventRegistrationRepository
	tx        domain.Transactor
	publisher domain.ChangePublisher
	clk       clock.Clock
	logger    *slog.Logger
	interval  time.Duration
}

// DefaultSchedulerInterval is the tick period used when none is configured.
const DefaultSchedulerInterval = time.Minute

// NewStatusScheduler creates the status scheduler. interval <= 0 falls back
// to DefaultSchedulerInterval.
func NewStatusScheduler(
	eventRepo domain.EventRepository,
	regRepo domain.EventRegistrationRepository,
	tx domain.Transactor,
	publisher domain.ChangePublisher,
	clk clock.Clock,
	logger *slog.Logger,
	interval time.Duration,
) *StatusScheduler {
	if interval <= 0 {
		interval = DefaultSchedulerInterval
	}
	return &StatusScheduler{
		eventRepo: eventRepo,
		regRepo:   regRepo,
		tx:        tx,
		publisher: publisher,
		clk:       clk,
		logger:    logger,
		interval:  interval,
	}
}

// Run ticks until the context is cancelled. Intended to be launched as a
// goroutine alongside the HTTP server.
func (s *StatusScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.logger.Info("status scheduler started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("status scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.AdvanceAll(ctx); err != nil {
				s.logger.Error("scheduler tick failed", "err", err)
			}
		}
	}
}

// AdvanceAll evaluates every non-terminal event against the current wall
// clock and persists any due transition. Events are processed independently:
// one failure is logged and does not abort the rest. Returns the number of
// events whose status changed.
func (s *StatusScheduler) AdvanceAll(ctx context.Context) (int, error) {
	events, err := s.eventRepo.ListUnfinished(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unfinished events: %w", err)
	}

	now := s.clk.Now()
	advanced := 0
	for _, event := range events {
		if event.Tick(now) == event.Status {
			continue
		}
		change, err := s.advanceOne(ctx, event.ID, now)
		if err != nil {
			s.logger.Error("advance event status", "event_id", event.ID, "err", err)
			continue
		}
		if change == nil {
			continue
		}
		advanced++
		change.RegistrantIDs = s.registrantIDs(ctx, event.ID)
		if s.publisher != nil {
			s.publisher.Publish(ctx, change)
		}
	}
	return advanced, nil
}

// advanceOne re-evaluates a single event under its row lock and persists the
// due transition. The re-read matters: a user cancellation may have landed
// between the scan and the lock, and Tick does nothing to a terminal status.
func (s *StatusScheduler) advanceOne(ctx context.Context, eventID string, now time.Time) (*domain.EventChange, error) {
	var change *domain.EventChange
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		event, err := s.eventRepo.GetByIDForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		next := event.Tick(now)
		if next == event.Status {
			return nil
		}
		old := event.Snapshot()
		if err := s.eventRepo.UpdateStatus(txCtx, eventID, next); err != nil {
			return err
		}
		event.Status = next
		change = &domain.EventChange{
			EventID:    eventID,
			Old:        old,
			New:        event.Snapshot(),
			OccurredAt: now,
		}
		return nil
	})
	if err != nil {
		// An event deleted mid-scan is not an error worth retrying.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return change, nil
}

func (s *StatusScheduler) registrantIDs(ctx context.Context, eventID string) []string {
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
