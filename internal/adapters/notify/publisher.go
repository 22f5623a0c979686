// Package notify delivers event change records to interested sinks. Delivery
// is best-effort: failures are logged, never propagated back to the mutation
// that produced the record.
package notify

import (
	"context"
	"log/slog"

	"eventmanager/internal/domain"
)

type logPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a ChangePublisher that writes each change record to
// the structured log.
func NewLogPublisher(logger *slog.Logger) domain.ChangePublisher {
	return &logPublisher{logger: logger}
}

func (p *logPublisher) Publish(ctx context.Context, change *domain.EventChange) {
	attrs := []any{
		"event_id", change.EventID,
		"actor_id", change.ActorID,
		"registrants", len(change.RegistrantIDs),
		"occurred_at", change.OccurredAt,
	}
	if change.Old != nil {
		attrs = append(attrs, "old_status", change.Old.Status)
	}
	attrs = append(attrs, "new_status", change.New.Status)
	p.logger.InfoContext(ctx, "event changed", attrs...)
}

type fanoutPublisher struct {
	sinks []domain.ChangePublisher
}

// NewFanoutPublisher returns a ChangePublisher that forwards each record to
// all given sinks in order.
func NewFanoutPublisher(sinks ...domain.ChangePublisher) domain.ChangePublisher {
	return &fanoutPublisher{sinks: sinks}
}

func (p *fanoutPublisher) Publish(ctx context.Context, change *domain.EventChange) {
	for _, sink := range p.sinks {
		sink.Publish(ctx, change)
	}
}
