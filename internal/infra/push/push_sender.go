package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"events_notifier/internal/domain/attendee"
	"events_notifier/internal/domain/notification"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
)

// defaultTTL is how long, in seconds, the push service keeps an undelivered
// reminder.
const defaultTTL = 600

// Config holds the VAPID credentials of the sender.
type Config struct {
	PublicKey  string
	PrivateKey string
	Subscriber string
	TTL        int
}

// Sender delivers reminders through the Web Push protocol.
type Sender struct {
	cfg        Config
	httpClient webpush.HTTPClient
	logger     *logrus.Entry
}

func NewSender(cfg Config, logger *logrus.Entry) *Sender {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	return &Sender{cfg: cfg, logger: logger}
}

// WithHTTPClient replaces the client used to reach push services.
func (s *Sender) WithHTTPClient(c webpush.HTTPClient) *Sender {
	s.httpClient = c
	return s
}

// Send pushes payload to one subscription. Gone subscriptions come back as
// expired results so the caller can delete them.
func (s *Sender) Send(ctx context.Context, sub *attendee.Subscription, payload notification.PushPayload) notification.Result {
	body, err := json.Marshal(payload)
	if err != nil {
		return failed(sub, fmt.Errorf("encode push payload: %w", err))
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.httpClient,
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.PublicKey,
		VAPIDPrivateKey: s.cfg.PrivateKey,
		TTL:             s.cfg.TTL,
	})

	res := classify(sub, resp, err)
	if res.Status != notification.StatusDelivered {
		s.logger.WithFields(logrus.Fields{
			"user":            sub.User,
			"subscription_id": sub.ID,
			"status":          res.Status,
		}).WithError(res.Err).Warn("Push delivery did not succeed")
	}
	return res
}

// classify maps a push service response onto a delivery result. The response
// body is always drained and closed.
func classify(sub *attendee.Subscription, resp *http.Response, err error) notification.Result {
	if err != nil {
		return failed(sub, fmt.Errorf("push request failed: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return notification.Expired(sub.User, sub.ID)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		res := notification.Delivered(notification.ChannelPush, sub.User)
		res.SubscriptionID = sub.ID
		return res
	default:
		return failed(sub, fmt.Errorf("push service responded %d", resp.StatusCode))
	}
}

func failed(sub *attendee.Subscription, err error) notification.Result {
	res := notification.Failed(notification.ChannelPush, sub.User, err)
	res.SubscriptionID = sub.ID
	return res
}
