package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"eventmanager/internal/domain"
)

type emailPublisher struct {
	mailer   Mailer
	userRepo domain.UserRepository
	logger   *slog.Logger
}

// NewEmailPublisher returns a ChangePublisher that emails the event owner a
// summary of each change. Failures are logged and swallowed.
func NewEmailPublisher(mailer Mailer, userRepo domain.UserRepository, logger *slog.Logger) domain.ChangePublisher {
	return &emailPublisher{
		mailer:   mailer,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (p *emailPublisher) Publish(ctx context.Context, change *domain.EventChange) {
	owner, err := p.userRepo.GetByID(ctx, change.New.OwnerID)
	if err != nil {
		p.logger.Warn("resolve event owner for notification", "event_id", change.EventID, "err", err)
		return
	}
	subject, body := renderChange(change)
	if err := p.mailer.Send(ctx, owner.Email, subject, body); err != nil {
		p.logger.Warn("send change notification", "event_id", change.EventID, "err", err)
	}
}

func renderChange(change *domain.EventChange) (subject, body string) {
	var b strings.Builder
	switch {
	case change.Old == nil:
		subject = fmt.Sprintf("Event %q created", change.New.Name)
		fmt.Fprintf(&b, "Your event %q was created with %d places, starting %s.\n",
			change.New.Name, change.New.MaxPlaces, change.New.Date.Format("2006-01-02 15:04"))
	case change.Old.Status != change.New.Status:
		subject = fmt.Sprintf("Event %q is now %s", change.New.Name, change.New.Status)
		fmt.Fprintf(&b, "Your event %q moved from %s to %s.\n",
			change.New.Name, change.Old.Status, change.New.Status)
	default:
		subject = fmt.Sprintf("Event %q updated", change.New.Name)
		fmt.Fprintf(&b, "Your event %q was updated.\n", change.New.Name)
		if change.Old.MaxPlaces != change.New.MaxPlaces {
			fmt.Fprintf(&b, "Places: %d -> %d\n", change.Old.MaxPlaces, change.New.MaxPlaces)
		}
		if !change.Old.Date.Equal(change.New.Date) {
			fmt.Fprintf(&b, "Date: %s -> %s\n",
				change.Old.Date.Format("2006-01-02 15:04"), change.New.Date.Format("2006-01-02 15:04"))
		}
		if change.Old.LocationID != change.New.LocationID {
			fmt.Fprintf(&b, "Location changed.\n")
		}
	}
	fmt.Fprintf(&b, "Registered attendees: %d\n", len(change.RegistrantIDs))
	return subject, b.String()
}
