// internal/domain/event/recurrence.go
package event

import (
	"sort"
	"time"
)

// Frequency is the repetition period of a recurring event.
type Frequency string

const (
	FrequencyNone    Frequency = ""
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// Valid reports whether f is one of the four supported periods.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// WeekdaySet is a set of weekdays. The zero value is empty, which recurrence
// rules treat as "every weekday".
type WeekdaySet map[time.Weekday]struct{}

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	s := make(WeekdaySet, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// WeekdaySetFromMask decodes the storage bitmask (bit 0 = Sunday).
func WeekdaySetFromMask(mask int) WeekdaySet {
	s := WeekdaySet{}
	for d := time.Sunday; d <= time.Saturday; d++ {
		if mask&(1<<uint(d)) != 0 {
			s[d] = struct{}{}
		}
	}
	return s
}

// Mask encodes the set back into the storage bitmask.
func (s WeekdaySet) Mask() int {
	mask := 0
	for d := range s {
		if d >= time.Sunday && d <= time.Saturday {
			mask |= 1 << uint(d)
		}
	}
	return mask
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the weekdays in Sunday..Saturday order.
func (s WeekdaySet) Sorted() []time.Weekday {
	out := make([]time.Weekday, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MonthSet is a set of calendar months. Empty means "every month".
type MonthSet map[time.Month]struct{}

func NewMonthSet(months ...time.Month) MonthSet {
	s := make(MonthSet, len(months))
	for _, m := range months {
		s[m] = struct{}{}
	}
	return s
}

// MonthSetFromMask decodes the storage bitmask (bit 0 = January).
func MonthSetFromMask(mask int) MonthSet {
	s := MonthSet{}
	for m := time.January; m <= time.December; m++ {
		if mask&(1<<uint(m-1)) != 0 {
			s[m] = struct{}{}
		}
	}
	return s
}

func (s MonthSet) Mask() int {
	mask := 0
	for m := range s {
		if m >= time.January && m <= time.December {
			mask |= 1 << uint(m-1)
		}
	}
	return mask
}

func (s MonthSet) Has(m time.Month) bool {
	_, ok := s[m]
	return ok
}

func (s MonthSet) Sorted() []time.Month {
	out := make([]time.Month, 0, len(s))
	for m := range s {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Recurrence holds the user-editable recurrence parameters of an event.
type Recurrence struct {
	Recurrent bool
	Frequency Frequency
	Interval  int
	Weekdays  WeekdaySet
	Months    MonthSet
	Monthday  *int
	Setpos    *int
	Count     *int
	Until     *time.Time
}

// None is the neutral recurrence stored for single-occurrence events.
func None() Recurrence {
	return Recurrence{Interval: 1, Weekdays: WeekdaySet{}, Months: MonthSet{}}
}
