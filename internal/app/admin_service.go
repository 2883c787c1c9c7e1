package app

import (
	"context"

	"events_notifier/internal/domain/attendee"
	"events_notifier/internal/domain/event"
	"events_notifier/internal/domain/notification"

	"github.com/google/uuid"
)

// upcomingShown is how many windows an event summary lists.
const upcomingShown = 5

// EventSummary is what an operator sees for one event.
type EventSummary struct {
	Event    *event.Event
	Upcoming []event.Window
}

// AdminService exposes operator actions, restricted to the configured admin.
type AdminService struct {
	events          *EventService
	recurrences     *RecurrenceService
	attendees       *AttendeeService
	notifications   *NotificationService
	adminTelegramID int64
}

func NewAdminService(
	events *EventService,
	recurrences *RecurrenceService,
	attendees *AttendeeService,
	notifications *NotificationService,
	adminID int64,
) *AdminService {
	return &AdminService{
		events:          events,
		recurrences:     recurrences,
		attendees:       attendees,
		notifications:   notifications,
		adminTelegramID: adminID,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// EventSummary returns an event with its next occurrence windows.
func (s *AdminService) EventSummary(ctx context.Context, performingAdminID int64, id uuid.UUID) (*EventSummary, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	e, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EventSummary{Event: e, Upcoming: e.Upcoming(s.events.now().UTC(), upcomingShown)}, nil
}

// Recompute forces a schedule recompute of one event.
func (s *AdminService) Recompute(ctx context.Context, performingAdminID int64, id uuid.UUID) (*EventSummary, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	e, err := s.recurrences.Recompute(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EventSummary{Event: e, Upcoming: e.Upcoming(s.recurrences.now().UTC(), upcomingShown)}, nil
}

func (s *AdminService) Attendees(ctx context.Context, performingAdminID int64, id uuid.UUID) ([]*attendee.Attendee, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.attendees.List(ctx, id)
}

// LastReport returns the report of the latest reminder pass.
func (s *AdminService) LastReport(performingAdminID int64) (*notification.Report, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	r := s.notifications.LastReport()
	if r == nil {
		return nil, ErrNoReport
	}
	return r, nil
}

// NextOccurrences lists up to n upcoming windows of an event.
func (s *AdminService) NextOccurrences(ctx context.Context, performingAdminID int64, id uuid.UUID, n int) ([]event.Window, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.events.NextOccurrences(ctx, id, n)
}

// UpdateRule replaces the recurrence of an event with an RRULE, or "none".
func (s *AdminService) UpdateRule(ctx context.Context, performingAdminID int64, id uuid.UUID, rule string) (*EventSummary, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	e, err := s.events.UpdateRule(ctx, id, rule)
	if err != nil {
		return nil, err
	}
	return &EventSummary{Event: e, Upcoming: e.Upcoming(s.events.now().UTC(), upcomingShown)}, nil
}

func (s *AdminService) AddAttendee(ctx context.Context, performingAdminID int64, id uuid.UUID, user, userName string) (*attendee.Attendee, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.attendees.Attend(ctx, id, user, userName)
}

func (s *AdminService) RemoveAttendee(ctx context.Context, performingAdminID int64, id uuid.UUID, user string) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	return s.attendees.Unattend(ctx, id, user)
}
