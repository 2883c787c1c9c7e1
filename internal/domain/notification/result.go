package notification

// Result is the per-recipient, per-channel outcome of a delivery.
type Result struct {
	Channel Channel
	User    string
	// SubscriptionID is set for push results.
	SubscriptionID int64
	Status         Status
	Err            error
}

func Delivered(ch Channel, user string) Result {
	return Result{Channel: ch, User: user, Status: StatusDelivered}
}

func Failed(ch Channel, user string, err error) Result {
	return Result{Channel: ch, User: user, Status: StatusFailed, Err: err}
}

func Expired(user string, subscriptionID int64) Result {
	return Result{Channel: ChannelPush, User: user, SubscriptionID: subscriptionID, Status: StatusExpired}
}
