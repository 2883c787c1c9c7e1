package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"events_notifier/internal/domain/event"
)

func intPtr(v int) *int { return &v }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestToSpec_ReturnsNilWithoutRecurrence(t *testing.T) {
	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  event.Recurrence
	}{
		{
			name: "not recurrent",
			rec:  event.Recurrence{Frequency: event.FrequencyDaily, Count: intPtr(3)},
		},
		{
			name: "missing frequency",
			rec:  event.Recurrence{Recurrent: true, Count: intPtr(3)},
		},
		{
			name: "unknown frequency",
			rec:  event.Recurrence{Recurrent: true, Frequency: "HOURLY", Count: intPtr(3)},
		},
		{
			name: "no count and no until",
			rec:  event.Recurrence{Recurrent: true, Frequency: event.FrequencyWeekly},
		},
		{
			name: "zero count and no until",
			rec:  event.Recurrence{Recurrent: true, Frequency: event.FrequencyWeekly, Count: intPtr(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, ToSpec(start, tt.rec))
		})
	}
}

func TestToSpec_NormalizesFields(t *testing.T) {
	start := time.Date(2024, 1, 1, 18, 0, 0, 0, time.FixedZone("UTC-3", -3*3600))
	rec := event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyMonthly,
		Interval:  0,
		Weekdays:  event.WeekdaySetFromMask(1<<2 | 1<<0),
		Months:    event.MonthSetFromMask(1<<11 | 1<<0),
		Setpos:    intPtr(3),
		Monthday:  intPtr(0),
		Until:     datePtr(2024, 1, 31),
	}

	spec := ToSpec(start, rec)
	require.NotNil(t, spec)

	assert.Equal(t, time.UTC, spec.Start.Location())
	assert.True(t, spec.Start.Equal(start))
	assert.Equal(t, 1, spec.Interval)
	assert.Nil(t, spec.Count)
	assert.Equal(t, []time.Weekday{time.Sunday, time.Tuesday}, spec.Weekdays)
	assert.Equal(t, []time.Month{time.January, time.December}, spec.Months)
	require.NotNil(t, spec.Setpos)
	assert.Equal(t, 3, *spec.Setpos)
	assert.Nil(t, spec.Monthday)
	require.NotNil(t, spec.Until)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *spec.Until)
}

func TestWeekdayAndMonthMasks(t *testing.T) {
	wd := event.WeekdaySetFromMask(0b1000001)
	assert.True(t, wd.Has(time.Sunday))
	assert.True(t, wd.Has(time.Saturday))
	assert.False(t, wd.Has(time.Monday))
	assert.Equal(t, 0b1000001, wd.Mask())

	// bits beyond Saturday are ignored
	assert.Equal(t, 0, event.WeekdaySetFromMask(1<<7).Mask())

	months := event.MonthSetFromMask(1<<0 | 1<<5)
	assert.Equal(t, []time.Month{time.January, time.June}, months.Sorted())
	assert.Equal(t, 1<<0|1<<5, months.Mask())
	assert.Empty(t, event.MonthSetFromMask(0))
}

func TestSpecString(t *testing.T) {
	spec := ToSpec(time.Date(2024, 1, 1, 18, 0, 0, 0, time.UTC), event.Recurrence{
		Recurrent: true,
		Frequency: event.FrequencyWeekly,
		Interval:  2,
		Weekdays:  event.NewWeekdaySet(time.Wednesday),
		Count:     intPtr(3),
	})
	require.NotNil(t, spec)

	text := spec.String()
	assert.Contains(t, text, "FREQ=WEEKLY")
	assert.Contains(t, text, "INTERVAL=2")
	assert.Contains(t, text, "COUNT=3")
	assert.Contains(t, text, "BYDAY=WE")
}

func TestFromRRule(t *testing.T) {
	rec, err := FromRRule("RRULE:FREQ=MONTHLY;INTERVAL=2;BYDAY=TU;BYSETPOS=3;BYMONTH=1,6;COUNT=4")
	require.NoError(t, err)

	assert.True(t, rec.Recurrent)
	assert.Equal(t, event.FrequencyMonthly, rec.Frequency)
	assert.Equal(t, 2, rec.Interval)
	assert.Equal(t, 1<<uint(time.Tuesday), rec.Weekdays.Mask())
	assert.Equal(t, []time.Month{time.January, time.June}, rec.Months.Sorted())
	require.NotNil(t, rec.Setpos)
	assert.Equal(t, 3, *rec.Setpos)
	require.NotNil(t, rec.Count)
	assert.Equal(t, 4, *rec.Count)
	assert.Nil(t, rec.Until)
}

func TestFromRRule_RejectsUnsupportedFrequency(t *testing.T) {
	_, err := FromRRule("FREQ=HOURLY;COUNT=2")
	assert.Error(t, err)

	_, err = FromRRule("not a rule")
	assert.Error(t, err)
}
