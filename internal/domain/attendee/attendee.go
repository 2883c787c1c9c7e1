package attendee

import (
	"time"

	"github.com/google/uuid"
)

// Attendee is a user who marked an event as "going".
// Corresponds to the 'event_attendees' table.
type Attendee struct {
	EventID  uuid.UUID
	User     string // wallet address, lowercase
	UserName string
	// NotifiedStartAt is the occurrence start the attendee was last reminded
	// about. Nil when never notified.
	NotifiedStartAt *time.Time
	CreatedAt       time.Time
}

// PendingFor reports whether the attendee still needs a reminder for the
// occurrence starting at startAt.
func (a *Attendee) PendingFor(startAt time.Time) bool {
	return a.NotifiedStartAt == nil || !a.NotifiedStartAt.Equal(startAt)
}

// Settings are the notification preferences of a user ('profile_settings').
type Settings struct {
	User            string
	Email           string
	EmailVerified   bool
	NotifyByEmail   bool
	NotifyByBrowser bool
}

// EmailEligible reports whether reminders may be emailed to the user.
func (s *Settings) EmailEligible() bool {
	return s != nil && s.Email != "" && s.EmailVerified && s.NotifyByEmail
}

// Subscription is a Web Push subscription ('profile_subscriptions').
type Subscription struct {
	ID       int64
	User     string
	Endpoint string
	P256DH   string
	Auth     string
}
