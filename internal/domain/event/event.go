package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a virtual-world event as stored in the 'events' table. Only the
// attributes needed for scheduling and reminders are mapped.
type Event struct {
	ID       uuid.UUID
	Name     string
	Image    string
	URL      string // explicit jump-in URL, optional
	X        int
	Y        int
	Server   string
	Approved bool
	Rejected bool

	StartAt  time.Time
	Duration time.Duration
	FinishAt time.Time

	Recurrence     Recurrence
	RecurrentDates []time.Time // sorted, never empty once computed

	NextStartAt  time.Time
	NextFinishAt time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window is the [Start, Finish] interval of a single occurrence.
type Window struct {
	Start  time.Time
	Finish time.Time
}

// Elapsed reports whether the occurrence window closed at or before now.
func (w Window) Elapsed(now time.Time) bool {
	return !w.Finish.After(now)
}

// Windows returns the occurrence windows of the materialized dates.
func (e *Event) Windows() []Window {
	out := make([]Window, 0, len(e.RecurrentDates))
	for _, d := range e.RecurrentDates {
		out = append(out, Window{Start: d, Finish: d.Add(e.Duration)})
	}
	return out
}

// Upcoming returns at most n windows that have not elapsed at now.
func (e *Event) Upcoming(now time.Time, n int) []Window {
	out := make([]Window, 0, n)
	for _, w := range e.Windows() {
		if len(out) >= n {
			break
		}
		if !w.Elapsed(now) {
			out = append(out, w)
		}
	}
	return out
}
