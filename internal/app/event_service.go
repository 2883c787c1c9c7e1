package app

import (
	"context"
	"fmt"
	"strings"

	"events_notifier/internal/domain/event"
	"events_notifier/internal/recurrence"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// EventService reads events and edits their recurrence, keeping the
// materialized schedule consistent with the parameters. Creating events
// belongs to the public API, not to this process.
type EventService struct {
	events event.Repository
	opts   recurrence.Options
	logger *logrus.Entry
	now    Clock
}

func NewEventService(events event.Repository, opts recurrence.Options, logger *logrus.Entry) *EventService {
	return &EventService{events: events, opts: opts, logger: logger, now: systemClock}
}

// WithClock replaces the time source.
func (s *EventService) WithClock(c Clock) *EventService {
	s.now = c
	return s
}

func (s *EventService) Get(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	return s.events.GetByID(ctx, id)
}

// NextOccurrences returns up to n occurrence windows of the event that have
// not elapsed yet.
func (s *EventService) NextOccurrences(ctx context.Context, id uuid.UUID, n int) ([]event.Window, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: occurrence count must be positive", ErrInvalidArgument)
	}
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Upcoming(s.now().UTC(), n), nil
}

// UpdateRecurrence replaces the recurrence parameters of an event. History is
// discarded and the schedule is rebuilt from the start date. Concurrent edits
// are not detected; the last write wins.
func (s *EventService) UpdateRecurrence(ctx context.Context, id uuid.UUID, rec event.Recurrence) (*event.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Recurrence = rec
	state := recurrence.Reset(recurrence.StateOf(e))
	recurrence.Recompute(state, s.now().UTC(), s.opts).Apply(e)

	if err := s.events.UpdateSchedule(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update event recurrence: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"event_id":      id,
		"next_start_at": e.NextStartAt,
		"dates":         len(e.RecurrentDates),
	}).Info("Event recurrence updated")
	return e, nil
}

// UpdateRule replaces the recurrence of an event with an iCalendar RRULE.
// "none" turns the event into a single occurrence.
func (s *EventService) UpdateRule(ctx context.Context, id uuid.UUID, rule string) (*event.Event, error) {
	var rec event.Recurrence
	if !strings.EqualFold(strings.TrimSpace(rule), "none") {
		parsed, err := recurrence.FromRRule(rule)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		rec = parsed
	}
	return s.UpdateRecurrence(ctx, id, rec)
}
