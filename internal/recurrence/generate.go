package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"
)

// Cutoff is consulted for every candidate in generation order with its
// zero-based index. Generation stops at the first false; that candidate is
// not included.
type Cutoff func(date time.Time, index int) bool

// Limit returns a Cutoff that keeps the first n candidates.
func Limit(n int) Cutoff {
	return func(_ time.Time, i int) bool { return i < n }
}

// Generate expands spec into occurrence dates. The rule decides the calendar
// days; the clock time of every date is the clock time of spec.Start in UTC.
// A nil or unusable spec yields an empty slice.
func Generate(spec *Spec, cutoff Cutoff) []time.Time {
	out := make([]time.Time, 0)
	if spec == nil {
		return out
	}
	rule, err := rrule.NewRRule(spec.Option())
	if err != nil {
		return out
	}

	next := rule.Iterator()
	for i := 0; ; i++ {
		date, ok := next()
		if !ok {
			break
		}
		date = alignClock(date, spec.Start)
		if cutoff != nil && !cutoff(date, i) {
			break
		}
		out = append(out, date)
	}
	return out
}

// alignClock keeps the calendar day of date and takes the time of day of clock.
func alignClock(date, clock time.Time) time.Time {
	date, clock = date.UTC(), clock.UTC()
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), clock.Nanosecond(), time.UTC)
}
