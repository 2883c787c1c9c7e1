package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"events_notifier/internal/domain/event"
	"events_notifier/internal/infra/metrics"
	"events_notifier/internal/recurrence"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RecurrenceService keeps the materialized occurrences of recurring events
// current.
type RecurrenceService struct {
	events event.Repository
	opts   recurrence.Options
	logger *logrus.Entry
	now    Clock
}

func NewRecurrenceService(events event.Repository, opts recurrence.Options, logger *logrus.Entry) *RecurrenceService {
	return &RecurrenceService{
		events: events,
		opts:   opts,
		logger: logger,
		now:    systemClock,
	}
}

// WithClock replaces the time source.
func (s *RecurrenceService) WithClock(c Clock) *RecurrenceService {
	s.now = c
	return s
}

// RecomputeDue recomputes every recurring event whose current window has
// closed. Events are processed one by one; a failing event does not stop the
// pass. It returns the number of rows written and the joined per-event errors.
func (s *RecurrenceService) RecomputeDue(ctx context.Context) (int, error) {
	now := s.now().UTC()

	due, err := s.events.ListDueForRecompute(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list events due for recompute: %w", err)
	}
	s.logger.WithField("due", len(due)).Debug("Recompute pass started")

	var (
		errs    []error
		updated int
	)
	for _, e := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		written, err := s.recompute(ctx, e, now)
		if err != nil {
			metrics.EventsRecomputed.WithLabelValues("failed").Inc()
			s.logger.WithField("event_id", e.ID).WithError(err).Error("Failed to recompute event")
			errs = append(errs, fmt.Errorf("event %s: %w", e.ID, err))
			continue
		}
		if written {
			updated++
			metrics.EventsRecomputed.WithLabelValues("updated").Inc()
		} else {
			metrics.EventsRecomputed.WithLabelValues("unchanged").Inc()
		}
	}

	s.logger.WithFields(logrus.Fields{
		"due":     len(due),
		"updated": updated,
		"failed":  len(errs),
	}).Info("Recompute pass finished")
	return updated, errors.Join(errs...)
}

// Recompute recomputes a single event regardless of its window.
func (s *RecurrenceService) Recompute(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.recompute(ctx, e, s.now().UTC()); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *RecurrenceService) recompute(ctx context.Context, e *event.Event, now time.Time) (bool, error) {
	res := recurrence.Recompute(recurrence.StateOf(e), now, s.opts)
	if sameSchedule(e, res) {
		return false, nil
	}

	res.Apply(e)
	if err := s.events.UpdateSchedule(ctx, e); err != nil {
		return false, fmt.Errorf("failed to update schedule: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"event_id":      e.ID,
		"next_start_at": e.NextStartAt,
		"dates":         len(e.RecurrentDates),
	}).Debug("Event schedule updated")
	return true, nil
}

// sameSchedule reports whether writing res would leave the row unchanged.
func sameSchedule(e *event.Event, res recurrence.Result) bool {
	if !e.NextStartAt.Equal(res.NextStartAt) || !e.NextFinishAt.Equal(res.NextFinishAt) ||
		!e.FinishAt.Equal(res.FinishAt) || len(e.RecurrentDates) != len(res.RecurrentDates) {
		return false
	}
	for i := range e.RecurrentDates {
		if !e.RecurrentDates[i].Equal(res.RecurrentDates[i]) {
			return false
		}
	}
	return sameRecurrence(e.Recurrence, res.Recurrence)
}

func sameRecurrence(a, b event.Recurrence) bool {
	return a.Recurrent == b.Recurrent &&
		a.Frequency == b.Frequency &&
		a.Interval == b.Interval &&
		a.Weekdays.Mask() == b.Weekdays.Mask() &&
		a.Months.Mask() == b.Months.Mask() &&
		sameInt(a.Monthday, b.Monthday) &&
		sameInt(a.Setpos, b.Setpos) &&
		sameInt(a.Count, b.Count) &&
		sameTime(a.Until, b.Until)
}

func sameInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
