package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"events_notifier/internal/app"
	"events_notifier/internal/domain/attendee"
	"events_notifier/internal/domain/event"
	"events_notifier/internal/recurrence"

	"github.com/google/uuid"
)

const timeLayout = "2006-01-02 15:04 MST"

// parseEventArgs splits command arguments into the leading event id and the
// rest, which must hold between minRest and maxRest values.
func parseEventArgs(args []string, minRest, maxRest int) (uuid.UUID, []string, error) {
	if len(args) == 0 {
		return uuid.Nil, nil, fmt.Errorf("event id is required")
	}
	id, err := uuid.Parse(strings.TrimSpace(args[0]))
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("invalid event id %q", args[0])
	}
	rest := args[1:]
	if len(rest) < minRest || len(rest) > maxRest {
		return uuid.Nil, nil, fmt.Errorf("expected %d to %d arguments after the event id, got %d", minRest, maxRest, len(rest))
	}
	return id, rest, nil
}

// parseCount reads an optional positive count, falling back to def.
func parseCount(rest []string, def int) (int, error) {
	if len(rest) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(rest[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid count %q", rest[0])
	}
	return n, nil
}

func formatWindows(windows []event.Window) string {
	if len(windows) == 0 {
		return "No upcoming occurrences."
	}
	var b strings.Builder
	b.WriteString("Upcoming:")
	for _, w := range windows {
		fmt.Fprintf(&b, "\n- %s (%s)", w.Start.UTC().Format(timeLayout), w.Finish.Sub(w.Start).Round(time.Minute))
	}
	return b.String()
}

func formatSummary(s *app.EventSummary) string {
	e := s.Event
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", e.Name, e.ID)

	status := "pending"
	switch {
	case e.Rejected:
		status = "rejected"
	case e.Approved:
		status = "approved"
	}
	fmt.Fprintf(&b, "Status: %s\n", status)

	if spec := recurrence.ToSpec(e.StartAt, e.Recurrence); spec != nil {
		fmt.Fprintf(&b, "Rule: %s\n", spec.String())
	} else {
		b.WriteString("Rule: single occurrence\n")
	}
	fmt.Fprintf(&b, "Next: %s - %s\n", e.NextStartAt.UTC().Format(timeLayout), e.NextFinishAt.UTC().Format(timeLayout))
	fmt.Fprintf(&b, "Stored dates: %d\n", len(e.RecurrentDates))

	b.WriteString(formatWindows(s.Upcoming))
	return b.String()
}

func formatAttendees(list []*attendee.Attendee) string {
	if len(list) == 0 {
		return "Nobody is attending this event yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Attendees: %d", len(list))
	for _, a := range list {
		name := a.User
		if a.UserName != "" {
			name = fmt.Sprintf("%s (%s)", a.UserName, a.User)
		}
		notified := "not notified"
		if a.NotifiedStartAt != nil {
			notified = "notified for " + a.NotifiedStartAt.UTC().Format(timeLayout)
		}
		fmt.Fprintf(&b, "\n- %s, %s", name, notified)
	}
	return b.String()
}
