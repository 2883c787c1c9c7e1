package app

import (
	"context"
	"fmt"
	"strings"

	"events_notifier/internal/domain/attendee"
	"events_notifier/internal/domain/event"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AttendeeService manages who is going to an event.
type AttendeeService struct {
	attendees attendee.Repository
	events    event.Repository
	cache     *AttendeeCache
	logger    *logrus.Entry
}

func NewAttendeeService(attendees attendee.Repository, events event.Repository, cache *AttendeeCache, logger *logrus.Entry) *AttendeeService {
	return &AttendeeService{attendees: attendees, events: events, cache: cache, logger: logger}
}

// List returns the attendees of an event, served from the cache when fresh.
func (s *AttendeeService) List(ctx context.Context, eventID uuid.UUID) ([]*attendee.Attendee, error) {
	if cached, ok := s.cache.Get(eventID); ok {
		return cached, nil
	}
	list, err := s.attendees.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendees: %w", err)
	}
	s.cache.Set(eventID, list)
	return list, nil
}

// Attend registers user as going to the event.
func (s *AttendeeService) Attend(ctx context.Context, eventID uuid.UUID, user, userName string) (*attendee.Attendee, error) {
	user = strings.ToLower(strings.TrimSpace(user))
	if user == "" {
		return nil, fmt.Errorf("%w: user is required", ErrInvalidArgument)
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	a := &attendee.Attendee{EventID: eventID, User: user, UserName: userName}
	if err := s.attendees.Add(ctx, a); err != nil {
		return nil, err
	}
	s.cache.Invalidate(eventID)

	s.logger.WithFields(logrus.Fields{"event_id": eventID, "user": user}).Info("Attendee added")
	return a, nil
}

// Unattend removes user from the event's attendees.
func (s *AttendeeService) Unattend(ctx context.Context, eventID uuid.UUID, user string) error {
	user = strings.ToLower(strings.TrimSpace(user))
	if err := s.attendees.Remove(ctx, eventID, user); err != nil {
		return err
	}
	s.cache.Invalidate(eventID)

	s.logger.WithFields(logrus.Fields{"event_id": eventID, "user": user}).Info("Attendee removed")
	return nil
}
