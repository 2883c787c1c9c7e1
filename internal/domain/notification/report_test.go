package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestReport_Add(t *testing.T) {
	r := NewReport(time.Date(2024, 1, 3, 17, 50, 0, 0, time.UTC))

	r.Add(Delivered(ChannelEmail, "0xabc"))
	r.Add(Delivered(ChannelPush, "0xabc"))
	r.Add(Expired("0xdef", 9))
	r.Add(Failed(ChannelEmail, "0xdef", errors.New("smtp timeout")))

	assert.Equal(t, 1, r.Count(ChannelEmail, StatusDelivered))
	assert.Equal(t, 1, r.Count(ChannelEmail, StatusFailed))
	assert.Equal(t, 1, r.Count(ChannelPush, StatusDelivered))
	assert.Equal(t, 1, r.Count(ChannelPush, StatusExpired))
	assert.Equal(t, 0, r.Count(ChannelPush, StatusFailed))
	assert.Equal(t, []int64{9}, r.ExpiredSubscriptions)
	assert.Len(t, r.Errors, 1)
	assert.True(t, r.HasFailures())
}

func TestReport_HasFailures(t *testing.T) {
	r := NewReport(time.Now())
	r.Add(Delivered(ChannelEmail, "0xabc"))
	r.Add(Expired("0xabc", 1))
	assert.False(t, r.HasFailures())

	r.Failed = append(r.Failed, EventFailure{EventID: uuid.New(), Err: errors.New("db down")})
	assert.True(t, r.HasFailures())
}

func TestReport_Summary(t *testing.T) {
	start := time.Date(2024, 1, 3, 17, 50, 0, 0, time.UTC)
	r := NewReport(start)
	r.FinishedAt = start.Add(1500 * time.Millisecond)
	r.Events = 2
	r.Notified = 3
	r.Add(Delivered(ChannelEmail, "0xabc"))
	r.Add(Failed(ChannelPush, "0xabc", errors.New("502")))

	s := r.Summary()
	assert.Contains(t, s, "Reminder pass 2024-01-03T17:50:00Z (1.5s)")
	assert.Contains(t, s, "Events: 2, notified: 3")
	assert.Contains(t, s, "email: 1 delivered, 0 expired, 0 failed")
	assert.Contains(t, s, "push: 0 delivered, 0 expired, 1 failed")
}
