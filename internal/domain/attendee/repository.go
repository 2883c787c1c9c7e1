package attendee

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines operations on attendees, their settings and push
// subscriptions.
type Repository interface {
	Add(ctx context.Context, a *Attendee) error
	Remove(ctx context.Context, eventID uuid.UUID, user string) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*Attendee, error)

	// ListPending returns the attendees of each event that were not yet
	// notified for the event's current next_start_at.
	ListPending(ctx context.Context, eventIDs []uuid.UUID) ([]*Attendee, error)
	// MarkNotified records startAt as the notified occurrence of the users.
	MarkNotified(ctx context.Context, eventID uuid.UUID, users []string, startAt time.Time) error

	ListSettings(ctx context.Context, users []string) ([]*Settings, error)
	ListSubscriptions(ctx context.Context, users []string) ([]*Subscription, error)
	DeleteSubscriptions(ctx context.Context, ids []int64) error
}
