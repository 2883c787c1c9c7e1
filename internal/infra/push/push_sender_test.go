package push

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"events_notifier/internal/domain/attendee"
	"events_notifier/internal/domain/notification"
)

func response(code int) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader("body"))}
}

func TestClassify(t *testing.T) {
	sub := &attendee.Subscription{ID: 7, User: "0xabc"}

	tests := []struct {
		name   string
		resp   *http.Response
		err    error
		status notification.Status
	}{
		{name: "created", resp: response(http.StatusCreated), status: notification.StatusDelivered},
		{name: "ok", resp: response(http.StatusOK), status: notification.StatusDelivered},
		{name: "not found", resp: response(http.StatusNotFound), status: notification.StatusExpired},
		{name: "gone", resp: response(http.StatusGone), status: notification.StatusExpired},
		{name: "rate limited", resp: response(http.StatusTooManyRequests), status: notification.StatusFailed},
		{name: "server error", resp: response(http.StatusBadGateway), status: notification.StatusFailed},
		{name: "transport error", err: errors.New("connection reset"), status: notification.StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classify(sub, tt.resp, tt.err)
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, notification.ChannelPush, res.Channel)
			assert.Equal(t, "0xabc", res.User)
			assert.Equal(t, int64(7), res.SubscriptionID)
			if tt.status == notification.StatusFailed {
				assert.Error(t, res.Err)
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}
}

type failingClient struct{ calls int }

func (c *failingClient) Do(*http.Request) (*http.Response, error) {
	c.calls++
	return nil, errors.New("unreachable")
}

func TestSend_InvalidSubscriptionKeysFail(t *testing.T) {
	client := &failingClient{}
	s := NewSender(Config{PublicKey: "pub", PrivateKey: "priv"}, logrus.NewEntry(logrus.New())).WithHTTPClient(client)

	res := s.Send(context.Background(), &attendee.Subscription{ID: 1, User: "0xabc", Endpoint: "https://push.example/1", P256DH: "???", Auth: "???"}, notification.PushPayload{Title: "x"})

	assert.Equal(t, notification.StatusFailed, res.Status)
	assert.Error(t, res.Err)
	assert.Zero(t, client.calls)
}
