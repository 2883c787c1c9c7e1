// Package recurrence expands the compact recurrence columns of an event into
// concrete occurrence dates and keeps the event's materialized date list and
// current window up to date.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"events_notifier/internal/domain/event"
)

const day = 24 * time.Hour

// Spec is the rule-engine-ready form of an event's recurrence parameters.
type Spec struct {
	Start     time.Time
	Frequency event.Frequency
	Interval  int
	// Until is an exclusive bound: the start of the day after the
	// configured last calendar day.
	Until    *time.Time
	Count    *int
	Weekdays []time.Weekday // empty: every weekday
	Months   []time.Month   // empty: every month
	Setpos   *int
	Monthday *int
}

// ToSpec translates recurrence parameters into a Spec. It returns nil when the
// event does not recur: not flagged recurrent, no frequency, or no
// termination bound at all.
func ToSpec(start time.Time, rec event.Recurrence) *Spec {
	if !rec.Recurrent || !rec.Frequency.Valid() {
		return nil
	}
	count := positive(rec.Count)
	if count == nil && rec.Until == nil {
		return nil
	}

	s := &Spec{
		Start:     start.UTC(),
		Frequency: rec.Frequency,
		Interval:  rec.Interval,
		Count:     count,
		Weekdays:  rec.Weekdays.Sorted(),
		Months:    rec.Months.Sorted(),
		Setpos:    nonZero(rec.Setpos),
		Monthday:  nonZero(rec.Monthday),
	}
	if s.Interval <= 0 {
		s.Interval = 1
	}
	if rec.Until != nil {
		until := startOfDay(*rec.Until).Add(day)
		s.Until = &until
	}
	return s
}

// Option builds the rrule-go option set of s.
func (s *Spec) Option() rrule.ROption {
	opt := rrule.ROption{
		Freq:     toRRuleFrequency(s.Frequency),
		Dtstart:  s.Start,
		Interval: s.Interval,
	}
	if s.Count != nil {
		opt.Count = *s.Count
	}
	if s.Until != nil {
		// rrule-go treats UNTIL as inclusive at second precision.
		opt.Until = s.Until.Add(-time.Second)
	}
	for _, d := range s.Weekdays {
		opt.Byweekday = append(opt.Byweekday, toRRuleWeekday(d))
	}
	for _, m := range s.Months {
		opt.Bymonth = append(opt.Bymonth, int(m))
	}
	if s.Setpos != nil {
		opt.Bysetpos = []int{*s.Setpos}
	}
	if s.Monthday != nil {
		opt.Bymonthday = []int{*s.Monthday}
	}
	return opt
}

// String renders s as iCalendar recurrence text.
func (s *Spec) String() string {
	opt := s.Option()
	return opt.String()
}

// FromRRule parses an iCalendar RRULE ("FREQ=WEEKLY;BYDAY=WE;COUNT=3", with or
// without the "RRULE:" prefix) back into the compact representation.
func FromRRule(text string) (event.Recurrence, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "RRULE:")
	opt, err := rrule.StrToROption(text)
	if err != nil {
		return event.Recurrence{}, fmt.Errorf("invalid recurrence rule %q: %w", text, err)
	}

	rec := event.None()
	rec.Recurrent = true
	switch opt.Freq {
	case rrule.DAILY:
		rec.Frequency = event.FrequencyDaily
	case rrule.WEEKLY:
		rec.Frequency = event.FrequencyWeekly
	case rrule.MONTHLY:
		rec.Frequency = event.FrequencyMonthly
	case rrule.YEARLY:
		rec.Frequency = event.FrequencyYearly
	default:
		return event.Recurrence{}, fmt.Errorf("unsupported recurrence frequency in %q", text)
	}
	if opt.Interval > 0 {
		rec.Interval = opt.Interval
	}
	if opt.Count > 0 {
		count := opt.Count
		rec.Count = &count
	}
	if !opt.Until.IsZero() {
		until := startOfDay(opt.Until)
		rec.Until = &until
	}
	for _, wd := range opt.Byweekday {
		rec.Weekdays[fromRRuleWeekday(wd)] = struct{}{}
	}
	for _, m := range opt.Bymonth {
		if m >= 1 && m <= 12 {
			rec.Months[time.Month(m)] = struct{}{}
		}
	}
	if len(opt.Bysetpos) > 0 {
		setpos := opt.Bysetpos[0]
		rec.Setpos = &setpos
	}
	if len(opt.Bymonthday) > 0 {
		monthday := opt.Bymonthday[0]
		rec.Monthday = &monthday
	}
	return rec, nil
}

func toRRuleFrequency(f event.Frequency) rrule.Frequency {
	switch f {
	case event.FrequencyDaily:
		return rrule.DAILY
	case event.FrequencyWeekly:
		return rrule.WEEKLY
	case event.FrequencyMonthly:
		return rrule.MONTHLY
	default:
		return rrule.YEARLY
	}
}

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

func toRRuleWeekday(d time.Weekday) rrule.Weekday {
	return rruleWeekdays[d]
}

// rrule-go numbers weekdays from Monday = 0.
func fromRRuleWeekday(wd rrule.Weekday) time.Weekday {
	return time.Weekday((wd.Day() + 1) % 7)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func positive(p *int) *int {
	if p == nil || *p <= 0 {
		return nil
	}
	v := *p
	return &v
}

func nonZero(p *int) *int {
	if p == nil || *p == 0 {
		return nil
	}
	v := *p
	return &v
}
