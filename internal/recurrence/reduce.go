package recurrence

import (
	"sort"
	"time"

	"events_notifier/internal/domain/event"
)

const (
	DefaultMaxRecurrent = 1000
	DefaultHistoryLimit = 1000
)

// Options bound the work and storage of a recompute.
type Options struct {
	// MaxRecurrent caps the future occurrences generated per call.
	MaxRecurrent int
	// HistoryLimit caps how many elapsed occurrences are carried forward;
	// the most recent ones are kept.
	HistoryLimit int
}

func (o Options) withDefaults() Options {
	if o.MaxRecurrent <= 0 {
		o.MaxRecurrent = DefaultMaxRecurrent
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	return o
}

// State is the part of an event the reducer reads.
type State struct {
	StartAt        time.Time
	Duration       time.Duration
	Recurrence     event.Recurrence
	RecurrentDates []time.Time
}

// StateOf extracts the reducer input from an event.
func StateOf(e *event.Event) State {
	return State{
		StartAt:        e.StartAt,
		Duration:       e.Duration,
		Recurrence:     e.Recurrence,
		RecurrentDates: e.RecurrentDates,
	}
}

// Reset drops the materialized dates so the next recompute starts from
// StartAt. Used when recurrence parameters change.
func Reset(s State) State {
	s.RecurrentDates = nil
	return s
}

// Result is the recomputed schedule of an event.
type Result struct {
	StartAt        time.Time
	FinishAt       time.Time
	Duration       time.Duration
	Recurrence     event.Recurrence
	RecurrentDates []time.Time
	NextStartAt    time.Time
	NextFinishAt   time.Time
}

// Apply copies the result onto the event.
func (r Result) Apply(e *event.Event) {
	e.StartAt = r.StartAt
	e.FinishAt = r.FinishAt
	e.Duration = r.Duration
	e.Recurrence = r.Recurrence
	e.RecurrentDates = r.RecurrentDates
	e.NextStartAt = r.NextStartAt
	e.NextFinishAt = r.NextFinishAt
}

// Recompute derives the materialized dates and the current window of an event
// at now. Elapsed dates already in the list are kept as history; new dates are
// generated from the rule only for windows still open at now. The result is a
// pure function of its inputs, so repeating a call with the same now is a
// no-op.
func Recompute(s State, now time.Time, opts Options) Result {
	opts = opts.withDefaults()

	startAt := s.StartAt.UTC()
	duration := s.Duration
	if duration < 0 {
		duration = 0
	}
	res := Result{
		StartAt:  startAt,
		FinishAt: startAt.Add(duration),
		Duration: duration,
	}

	previous := elapsed(s.RecurrentDates, duration, now, opts.HistoryLimit)

	spec := ToSpec(startAt, s.Recurrence)
	if spec == nil {
		res.Recurrence = event.None()
		res.RecurrentDates = previous
		if len(res.RecurrentDates) == 0 {
			res.RecurrentDates = []time.Time{startAt}
		}
		res.NextStartAt, res.NextFinishAt = nextWindow(res.RecurrentDates, duration, now)
		return res
	}

	res.Recurrence = normalize(s.Recurrence, spec)

	future := 0
	generated := Generate(spec, func(date time.Time, _ int) bool {
		if !date.Add(duration).After(now) {
			return true
		}
		if future >= opts.MaxRecurrent {
			return false
		}
		future++
		return true
	})

	dates := previous
	for _, d := range generated {
		if d.Add(duration).After(now) {
			dates = append(dates, d)
		}
	}

	if len(dates) > 0 {
		res.FinishAt = alignClock(dates[len(dates)-1], startAt).Add(duration)
	} else {
		dates = []time.Time{startAt}
	}
	res.RecurrentDates = dates
	res.NextStartAt, res.NextFinishAt = nextWindow(dates, duration, now)
	return res
}

// elapsed returns the sorted dates whose window closed at or before now,
// keeping at most limit of the most recent ones.
func elapsed(dates []time.Time, duration time.Duration, now time.Time, limit int) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if !d.Add(duration).After(now) {
			out = append(out, d.UTC())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// nextWindow picks the first occurrence still open at now, or the final one
// when every window has closed. dates must not be empty.
func nextWindow(dates []time.Time, duration time.Duration, now time.Time) (time.Time, time.Time) {
	for _, d := range dates {
		if d.Add(duration).After(now) {
			return d, d.Add(duration)
		}
	}
	last := dates[len(dates)-1]
	return last, last.Add(duration)
}

func normalize(rec event.Recurrence, spec *Spec) event.Recurrence {
	out := event.Recurrence{
		Recurrent: true,
		Frequency: spec.Frequency,
		Interval:  spec.Interval,
		Weekdays:  event.NewWeekdaySet(spec.Weekdays...),
		Months:    event.NewMonthSet(spec.Months...),
		Monthday:  spec.Monthday,
		Setpos:    spec.Setpos,
		Count:     spec.Count,
	}
	if rec.Until != nil {
		until := startOfDay(*rec.Until)
		out.Until = &until
	}
	return out
}
