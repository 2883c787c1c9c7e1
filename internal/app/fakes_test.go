package app

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"events_notifier/internal/domain/attendee"
	"events_notifier/internal/domain/event"
	"events_notifier/internal/domain/notification"
)

var errBoom = errors.New("boom")

var errNotFound = errors.New("not found")

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type fakeEventRepo struct {
	mu        sync.Mutex
	events    map[uuid.UUID]*event.Event
	updateErr map[uuid.UUID]error
	updates   int
}

func newFakeEventRepo(events ...*event.Event) *fakeEventRepo {
	r := &fakeEventRepo{events: make(map[uuid.UUID]*event.Event), updateErr: make(map[uuid.UUID]error)}
	for _, e := range events {
		c := *e
		r.events[e.ID] = &c
	}
	return r
}

func (r *fakeEventRepo) GetByID(_ context.Context, id uuid.UUID) (*event.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, errNotFound
	}
	c := *e
	return &c, nil
}

func (r *fakeEventRepo) UpdateSchedule(_ context.Context, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.updateErr[e.ID]; err != nil {
		return err
	}
	if _, ok := r.events[e.ID]; !ok {
		return errNotFound
	}
	c := *e
	r.events[e.ID] = &c
	r.updates++
	return nil
}

func (r *fakeEventRepo) ListDueForRecompute(_ context.Context, now time.Time) ([]*event.Event, error) {
	return r.list(func(e *event.Event) bool {
		return e.Recurrence.Recurrent && !e.Rejected && (e.NextFinishAt.IsZero() || !e.NextFinishAt.After(now))
	}, func(a, b *event.Event) bool { return a.StartAt.Before(b.StartAt) }), nil
}

func (r *fakeEventRepo) ListUpcoming(_ context.Context, from, to time.Time) ([]*event.Event, error) {
	return r.list(func(e *event.Event) bool {
		return e.Approved && !e.Rejected && e.NextStartAt.After(from) && !e.NextStartAt.After(to)
	}, func(a, b *event.Event) bool { return a.NextStartAt.Before(b.NextStartAt) }), nil
}

func (r *fakeEventRepo) list(keep func(*event.Event) bool, less func(a, b *event.Event) bool) []*event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.Event
	for _, e := range r.events {
		if keep(e) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

type fakeAttendeeRepo struct {
	mu            sync.Mutex
	events        *fakeEventRepo
	attendees     []*attendee.Attendee
	settings      map[string]*attendee.Settings
	subscriptions []*attendee.Subscription
	markErr       map[uuid.UUID]error
	marked        map[uuid.UUID][]string
	deleted       []int64
	listCalls     int
}

func newFakeAttendeeRepo(events *fakeEventRepo) *fakeAttendeeRepo {
	return &fakeAttendeeRepo{
		events:   events,
		settings: make(map[string]*attendee.Settings),
		markErr:  make(map[uuid.UUID]error),
		marked:   make(map[uuid.UUID][]string),
	}
}

func (r *fakeAttendeeRepo) Add(_ context.Context, a *attendee.Attendee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attendees {
		if existing.EventID == a.EventID && existing.User == a.User {
			return errBoom
		}
	}
	r.attendees = append(r.attendees, a)
	return nil
}

func (r *fakeAttendeeRepo) Remove(_ context.Context, eventID uuid.UUID, user string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.attendees {
		if a.EventID == eventID && a.User == user {
			r.attendees = append(r.attendees[:i], r.attendees[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (r *fakeAttendeeRepo) ListByEvent(_ context.Context, eventID uuid.UUID) ([]*attendee.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []*attendee.Attendee
	for _, a := range r.attendees {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttendeeRepo) ListPending(ctx context.Context, eventIDs []uuid.UUID) ([]*attendee.Attendee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*attendee.Attendee
	for _, id := range eventIDs {
		e, err := r.events.GetByID(ctx, id)
		if err != nil {
			continue
		}
		for _, a := range r.attendees {
			if a.EventID == id && a.PendingFor(e.NextStartAt) {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (r *fakeAttendeeRepo) MarkNotified(_ context.Context, eventID uuid.UUID, users []string, startAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.markErr[eventID]; err != nil {
		return err
	}
	for _, u := range users {
		for _, a := range r.attendees {
			if a.EventID == eventID && a.User == u {
				at := startAt
				a.NotifiedStartAt = &at
			}
		}
	}
	r.marked[eventID] = append(r.marked[eventID], users...)
	return nil
}

func (r *fakeAttendeeRepo) ListSettings(_ context.Context, users []string) ([]*attendee.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*attendee.Settings
	for _, u := range users {
		if st, ok := r.settings[u]; ok {
			out = append(out, st)
		}
	}
	return out, nil
}

func (r *fakeAttendeeRepo) ListSubscriptions(_ context.Context, users []string) ([]*attendee.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := make(map[string]bool)
	for _, u := range users {
		want[u] = true
	}
	var out []*attendee.Subscription
	for _, sub := range r.subscriptions {
		if want[sub.User] {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (r *fakeAttendeeRepo) DeleteSubscriptions(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, ids...)
	return nil
}

type fakeEmailSender struct {
	mu      sync.Mutex
	sent    []string
	failFor map[string]bool
}

func (f *fakeEmailSender) SendReminder(_ context.Context, to string, _ notification.EmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	if f.failFor[to] {
		return errBoom
	}
	return nil
}

func (f *fakeEmailSender) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.sent...)
	sort.Strings(out)
	return out
}

type fakePushSender struct {
	mu       sync.Mutex
	sent     []int64
	statuses map[int64]notification.Status
}

func (f *fakePushSender) Send(_ context.Context, sub *attendee.Subscription, _ notification.PushPayload) notification.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sub.ID)
	switch f.statuses[sub.ID] {
	case notification.StatusExpired:
		return notification.Expired(sub.User, sub.ID)
	case notification.StatusFailed:
		return notification.Failed(notification.ChannelPush, sub.User, errBoom)
	default:
		return notification.Delivered(notification.ChannelPush, sub.User)
	}
}

type fakeTelegram struct {
	mu       sync.Mutex
	messages map[int64][]string
}

func (f *fakeTelegram) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messages == nil {
		f.messages = make(map[int64][]string)
	}
	f.messages[chatID] = append(f.messages[chatID], text)
	return nil
}
