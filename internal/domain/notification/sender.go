package notification

import (
	"context"

	"events_notifier/internal/domain/attendee"
)

// EmailPayload is the template data of a reminder email.
type EmailPayload struct {
	EventName       string `json:"event_name"`
	EventURL        string `json:"event_url"`
	EventTargetURL  string `json:"event_target_url"`
	EventImg        string `json:"event_img"`
	ShareOnFacebook string `json:"share_on_facebook"`
	ShareOnTwitter  string `json:"share_on_twitter"`
}

// PushPayload is the JSON body delivered to browsers.
type PushPayload struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Tag   string `json:"tag"`
	Image string `json:"image"`
}

// EmailSender delivers a reminder email to one address.
type EmailSender interface {
	SendReminder(ctx context.Context, to string, payload EmailPayload) error
}

// PushSender delivers a push message to one subscription and classifies the
// outcome. Implementations never return an error; failures are results.
type PushSender interface {
	Send(ctx context.Context, sub *attendee.Subscription, payload PushPayload) Result
}
