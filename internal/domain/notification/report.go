package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventFailure records an event whose reminders could not be processed.
type EventFailure struct {
	EventID uuid.UUID
	Err     error
}

// Report aggregates the outcome of one reminder pass.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Events   int // upcoming events considered
	Notified int // attendees marked as notified

	Counts map[Channel]map[Status]int
	// ExpiredSubscriptions were deleted during finalization.
	ExpiredSubscriptions []int64
	// Errors lists transient delivery failures, one per failed result.
	Errors []Result
	Failed []EventFailure
}

func NewReport(startedAt time.Time) *Report {
	return &Report{
		StartedAt: startedAt,
		Counts:    make(map[Channel]map[Status]int),
	}
}

// Add folds a delivery result into the report.
func (r *Report) Add(res Result) {
	byStatus, ok := r.Counts[res.Channel]
	if !ok {
		byStatus = make(map[Status]int)
		r.Counts[res.Channel] = byStatus
	}
	byStatus[res.Status]++

	switch res.Status {
	case StatusExpired:
		r.ExpiredSubscriptions = append(r.ExpiredSubscriptions, res.SubscriptionID)
	case StatusFailed:
		r.Errors = append(r.Errors, res)
	}
}

func (r *Report) Count(ch Channel, st Status) int {
	return r.Counts[ch][st]
}

// HasFailures reports whether any delivery or event failed.
func (r *Report) HasFailures() bool {
	return len(r.Errors) > 0 || len(r.Failed) > 0
}

// Summary renders the report as a short plain-text message for operators.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reminder pass %s (%s)\n", r.StartedAt.Format(time.RFC3339), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&b, "Events: %d, notified: %d\n", r.Events, r.Notified)
	for _, ch := range []Channel{ChannelEmail, ChannelPush} {
		fmt.Fprintf(&b, "%s: %d delivered, %d expired, %d failed\n", ch,
			r.Count(ch, StatusDelivered), r.Count(ch, StatusExpired), r.Count(ch, StatusFailed))
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&b, "event %s: %v\n", f.EventID, f.Err)
	}
	return strings.TrimRight(b.String(), "\n")
}
