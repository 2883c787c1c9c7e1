// internal/domain/notification/shared_types.go
package notification

// Channel identifies how a reminder is delivered.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelPush  Channel = "push"
)

// Status is the outcome of a single delivery attempt.
type Status string

const (
	StatusDelivered Status = "delivered"
	// StatusExpired means the push service reported the subscription gone
	// (HTTP 404/410); the subscription must be deleted.
	StatusExpired Status = "expired"
	StatusFailed  Status = "failed"
)
