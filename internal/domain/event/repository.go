package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence operations used by the scheduler and
// the event services.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	// UpdateSchedule overwrites the recurrence and denormalized window columns.
	// There is no version check: the last writer wins.
	UpdateSchedule(ctx context.Context, e *Event) error

	// ListDueForRecompute returns recurring events whose current window
	// finished at or before now, or was never computed.
	ListDueForRecompute(ctx context.Context, now time.Time) ([]*Event, error)
	// ListUpcoming returns approved events whose next start lies in (from, to].
	ListUpcoming(ctx context.Context, from, to time.Time) ([]*Event, error)
}
