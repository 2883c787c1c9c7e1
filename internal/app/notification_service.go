// internal/app/notification_service.go
package app

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"events_notifier/internal/domain/attendee"
	"events_notifier/internal/domain/event"
	"events_notifier/internal/domain/notification"
	domainTelegram "events_notifier/internal/domain/telegram"
	"events_notifier/internal/infra/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentDeliveries bounds the in-flight deliveries of one event.
const maxConcurrentDeliveries = 16

// NotificationConfig holds the settings of the reminder pass.
type NotificationConfig struct {
	LeadTime  time.Duration
	EventsURL string
	PlayURL   string
	// AdminChatID receives a summary when a pass has failures. Zero disables
	// alerts.
	AdminChatID int64
}

// NotificationService reminds attendees of events that are about to start.
type NotificationService struct {
	events    event.Repository
	attendees attendee.Repository
	email     notification.EmailSender // nil when email is disabled
	push      notification.PushSender  // nil when push is disabled
	alerts    domainTelegram.Client    // nil when the operator bot is disabled
	cache     *AttendeeCache           // optional; see WithAttendeeCache
	cfg       NotificationConfig
	logger    *logrus.Entry
	now       Clock

	mu   sync.RWMutex
	last *notification.Report
}

func NewNotificationService(
	events event.Repository,
	attendees attendee.Repository,
	email notification.EmailSender,
	push notification.PushSender,
	alerts domainTelegram.Client,
	cfg NotificationConfig,
	logger *logrus.Entry,
) *NotificationService {
	return &NotificationService{
		events:    events,
		attendees: attendees,
		email:     email,
		push:      push,
		alerts:    alerts,
		cfg:       cfg,
		logger:    logger,
		now:       systemClock,
	}
}

// WithClock replaces the time source.
func (s *NotificationService) WithClock(c Clock) *NotificationService {
	s.now = c
	return s
}

// WithAttendeeCache makes the service drop an event's cached attendee list
// after marking attendees notified, so readers never see a stale reminder
// state.
func (s *NotificationService) WithAttendeeCache(c *AttendeeCache) *NotificationService {
	s.cache = c
	return s
}

// LastReport returns the report of the most recent completed pass.
func (s *NotificationService) LastReport() *notification.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// recipients is the per-user delivery data loaded once per pass.
type recipients struct {
	settings      map[string]*attendee.Settings
	subscriptions map[string][]*attendee.Subscription
}

// NotifyUpcoming sends reminders for every approved event starting within the
// lead time to the attendees not yet reminded of that occurrence. Errors
// loading the batch abort the pass; errors of a single event are recorded in
// the report and the pass continues.
func (s *NotificationService) NotifyUpcoming(ctx context.Context) (*notification.Report, error) {
	now := s.now().UTC()
	report := notification.NewReport(now)

	upcoming, err := s.events.ListUpcoming(ctx, now, now.Add(s.cfg.LeadTime))
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	report.Events = len(upcoming)

	if len(upcoming) > 0 {
		byEvent, rcpt, err := s.loadRecipients(ctx, upcoming)
		if err != nil {
			return nil, err
		}

		for _, e := range upcoming {
			if err := s.notifyEvent(ctx, e, byEvent[e.ID], rcpt, report); err != nil {
				s.logger.WithField("event_id", e.ID).WithError(err).Error("Failed to notify event attendees")
				report.Failed = append(report.Failed, notification.EventFailure{EventID: e.ID, Err: err})
			}
		}
	}

	report.FinishedAt = s.now().UTC()
	s.record(report)
	return report, nil
}

func (s *NotificationService) loadRecipients(ctx context.Context, upcoming []*event.Event) (map[uuid.UUID][]*attendee.Attendee, recipients, error) {
	rcpt := recipients{
		settings:      make(map[string]*attendee.Settings),
		subscriptions: make(map[string][]*attendee.Subscription),
	}

	ids := make([]uuid.UUID, 0, len(upcoming))
	for _, e := range upcoming {
		ids = append(ids, e.ID)
	}

	pending, err := s.attendees.ListPending(ctx, ids)
	if err != nil {
		return nil, rcpt, fmt.Errorf("failed to list pending attendees: %w", err)
	}

	byEvent := make(map[uuid.UUID][]*attendee.Attendee)
	seen := make(map[string]bool)
	var users []string
	for _, a := range pending {
		byEvent[a.EventID] = append(byEvent[a.EventID], a)
		if !seen[a.User] {
			seen[a.User] = true
			users = append(users, a.User)
		}
	}
	if len(users) == 0 {
		return byEvent, rcpt, nil
	}

	settings, err := s.attendees.ListSettings(ctx, users)
	if err != nil {
		return nil, rcpt, fmt.Errorf("failed to list notification settings: %w", err)
	}
	var pushUsers []string
	for _, st := range settings {
		rcpt.settings[st.User] = st
		if st.NotifyByBrowser {
			pushUsers = append(pushUsers, st.User)
		}
	}

	if s.push != nil && len(pushUsers) > 0 {
		subs, err := s.attendees.ListSubscriptions(ctx, pushUsers)
		if err != nil {
			return nil, rcpt, fmt.Errorf("failed to list push subscriptions: %w", err)
		}
		for _, sub := range subs {
			rcpt.subscriptions[sub.User] = append(rcpt.subscriptions[sub.User], sub)
		}
	}
	return byEvent, rcpt, nil
}

func (s *NotificationService) notifyEvent(ctx context.Context, e *event.Event, attendees []*attendee.Attendee, rcpt recipients, report *notification.Report) error {
	if len(attendees) == 0 {
		return nil
	}
	logCtx := s.logger.WithFields(logrus.Fields{
		"event_id":      e.ID,
		"next_start_at": e.NextStartAt,
		"attendees":     len(attendees),
	})

	emailPayload := s.emailPayload(e)
	pushPayload := s.pushPayload(e)

	outcomes := make([][]notification.Result, len(attendees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDeliveries)
	for i, a := range attendees {
		i, a := i, a
		g.Go(func() error {
			outcomes[i] = s.deliver(gctx, a.User, rcpt, emailPayload, pushPayload)
			return nil
		})
	}
	_ = g.Wait()

	var (
		notified []string
		expired  []int64
	)
	for i, a := range attendees {
		for _, res := range outcomes[i] {
			report.Add(res)
			metrics.Deliveries.WithLabelValues(string(res.Channel), string(res.Status)).Inc()
			switch res.Status {
			case notification.StatusExpired:
				expired = append(expired, res.SubscriptionID)
			case notification.StatusFailed:
				logCtx.WithFields(logrus.Fields{"user": a.User, "channel": res.Channel}).WithError(res.Err).Warn("Reminder delivery failed")
			}
		}
		if settled(outcomes[i]) {
			notified = append(notified, a.User)
		}
	}

	if err := s.attendees.MarkNotified(ctx, e.ID, notified, e.NextStartAt); err != nil {
		return fmt.Errorf("failed to mark attendees notified: %w", err)
	}
	if s.cache != nil {
		s.cache.Invalidate(e.ID)
	}
	report.Notified += len(notified)
	metrics.AttendeesNotified.Add(float64(len(notified)))

	if len(expired) > 0 {
		if err := s.attendees.DeleteSubscriptions(ctx, expired); err != nil {
			return fmt.Errorf("failed to delete expired subscriptions: %w", err)
		}
		metrics.SubscriptionsExpired.Add(float64(len(expired)))
	}

	logCtx.WithField("notified", len(notified)).Info("Event attendees notified")
	return nil
}

// deliver sends the reminder of one attendee on every eligible channel.
func (s *NotificationService) deliver(ctx context.Context, user string, rcpt recipients, emailPayload notification.EmailPayload, pushPayload notification.PushPayload) []notification.Result {
	st := rcpt.settings[user]
	var out []notification.Result

	if s.email != nil && st.EmailEligible() {
		if err := s.email.SendReminder(ctx, st.Email, emailPayload); err != nil {
			out = append(out, notification.Failed(notification.ChannelEmail, user, err))
		} else {
			out = append(out, notification.Delivered(notification.ChannelEmail, user))
		}
	}

	if s.push != nil && st != nil && st.NotifyByBrowser {
		for _, sub := range rcpt.subscriptions[user] {
			out = append(out, s.push.Send(ctx, sub, pushPayload))
		}
	}
	return out
}

// settled reports whether an attendee is done for this occurrence: something
// was delivered, nothing was attempted, or nothing failed transiently.
// Attendees whose every attempt failed are retried on the next tick.
func settled(results []notification.Result) bool {
	failed := false
	for _, r := range results {
		switch r.Status {
		case notification.StatusDelivered:
			return true
		case notification.StatusFailed:
			failed = true
		}
	}
	return !failed
}

func (s *NotificationService) eventURL(e *event.Event) string {
	return s.cfg.EventsURL + "/event/?id=" + e.ID.String()
}

// targetURL is where the attendee jumps in: the explicit URL of the event or
// its parcel in the world client.
func (s *NotificationService) targetURL(e *event.Event) string {
	if e.URL != "" {
		return e.URL
	}
	target := s.cfg.PlayURL + "/?position=" + strconv.Itoa(e.X) + "," + strconv.Itoa(e.Y)
	if e.Server != "" {
		target += "&realm=" + url.QueryEscape(e.Server)
	}
	return target
}

func (s *NotificationService) emailPayload(e *event.Event) notification.EmailPayload {
	eventURL := s.eventURL(e)
	return notification.EmailPayload{
		EventName:       e.Name,
		EventURL:        eventURL,
		EventTargetURL:  s.targetURL(e),
		EventImg:        e.Image,
		ShareOnFacebook: "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(eventURL),
		ShareOnTwitter:  "https://twitter.com/intent/tweet?text=" + url.QueryEscape(e.Name+" "+eventURL),
	}
}

func (s *NotificationService) pushPayload(e *event.Event) notification.PushPayload {
	return notification.PushPayload{
		Title: e.Name,
		Href:  s.eventURL(e),
		Tag:   e.ID.String(),
		Image: e.Image,
	}
}

// record publishes a finished report and alerts the operator on failures.
func (s *NotificationService) record(report *notification.Report) {
	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"events":   report.Events,
		"notified": report.Notified,
		"errors":   len(report.Errors),
		"failed":   len(report.Failed),
		"expired":  len(report.ExpiredSubscriptions),
	}).Info("Reminder pass finished")

	if !report.HasFailures() || s.alerts == nil || s.cfg.AdminChatID == 0 {
		return
	}
	if err := s.alerts.SendMessage(s.cfg.AdminChatID, report.Summary()); err != nil {
		s.logger.WithError(err).Warn("Failed to send failure alert to admin")
	}
}
