package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"events_notifier/internal/domain/event"
)

func TestGenerate_WeeklyOnWednesday(t *testing.T) {
	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC) // Monday
	spec := ToSpec(start, event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyWeekly,
		Interval:  1,
		Weekdays:  event.WeekdaySetFromMask(1 << uint(time.Wednesday)),
		Count:     intPtr(3),
	})
	require.NotNil(t, spec)

	dates := Generate(spec, nil)

	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 3, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 17, 18, 0, 0, 0, time.UTC),
	}, dates)
}

func TestGenerate_UntilIsInclusiveOfTheCalendarDay(t *testing.T) {
	for _, clock := range []time.Duration{0, 10 * time.Hour, 23*time.Hour + 59*time.Minute} {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(clock)
		spec := ToSpec(start, event.Recurrence{
			Recurrent: true,
			Frequency: event.FrequencyDaily,
			Interval:  1,
			Until:     datePtr(2024, 1, 31),
		})
		require.NotNil(t, spec)

		dates := Generate(spec, nil)

		require.Len(t, dates, 31, "clock %s", clock)
		assert.Equal(t, start, dates[0])
		assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC).Add(clock), dates[30])
		for _, d := range dates {
			assert.True(t, d.Before(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)))
		}
	}
}

func TestGenerate_PreservesTimeOfDay(t *testing.T) {
	start := time.Date(2024, 3, 5, 21, 45, 30, 250*int(time.Millisecond), time.UTC)
	spec := ToSpec(start, event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyDaily,
		Interval:  3,
		Count:     intPtr(20),
	})

	dates := Generate(spec, nil)
	require.Len(t, dates, 20)

	for _, d := range dates {
		assert.Equal(t, start.Hour(), d.Hour())
		assert.Equal(t, start.Minute(), d.Minute())
		assert.Equal(t, start.Second(), d.Second())
		assert.Equal(t, start.Nanosecond(), d.Nanosecond())
	}
	assert.Equal(t, time.Date(2024, 3, 8, 21, 45, 30, 250*int(time.Millisecond), time.UTC), dates[1])
}

func TestGenerate_MonthlySetpos(t *testing.T) {
	start := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	spec := ToSpec(start, event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyMonthly,
		Weekdays:  event.NewWeekdaySet(time.Tuesday),
		Setpos:    intPtr(3),
		Count:     intPtr(3),
	})

	dates := Generate(spec, nil)

	assert.Equal(t, []time.Time{
		time.Date(2024, 1, 16, 20, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 20, 20, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 19, 20, 0, 0, 0, time.UTC),
	}, dates)
}

func TestGenerate_MonthFilter(t *testing.T) {
	start := time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC)
	spec := ToSpec(start, event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyDaily,
		Months:    event.NewMonthSet(time.June),
		Count:     intPtr(3),
	})

	dates := Generate(spec, nil)

	assert.Equal(t, []time.Time{
		time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
	}, dates)
}

func TestGenerate_CutoffStopsAtFirstFalse(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	spec := ToSpec(start, event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyDaily,
		Until:     datePtr(2030, 1, 1),
	})

	var seen []int
	dates := Generate(spec, func(_ time.Time, i int) bool {
		seen = append(seen, i)
		return i < 4
	})

	assert.Len(t, dates, 4)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	assert.Len(t, Generate(spec, Limit(2)), 2)
}

func TestGenerate_IsRestartable(t *testing.T) {
	spec := ToSpec(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyYearly,
		Count:     intPtr(5),
	})

	assert.Equal(t, Generate(spec, nil), Generate(spec, nil))
}

func TestGenerate_NilSpec(t *testing.T) {
	dates := Generate(nil, nil)
	assert.NotNil(t, dates)
	assert.Empty(t, dates)
}
