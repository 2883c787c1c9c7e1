package telegram

// Client sends plain-text messages to an operator chat. Keeping it as an
// interface keeps the services free of the bot library.
type Client interface {
	SendMessage(chatID int64, text string) error
}
