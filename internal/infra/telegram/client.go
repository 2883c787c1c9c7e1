// internal/infra/telegram/client.go
package telegram

import (
	"gopkg.in/telebot.v3"
)

// TelebotAdapter implements the Client interface using the gopkg.in/telebot.v3 library.
type TelebotAdapter struct {
	bot *telebot.Bot
}

func NewTelebotAdapter(b *telebot.Bot) *TelebotAdapter {
	return &TelebotAdapter{bot: b}
}

// SendMessage sends a plain-text message to the specified chat.
func (tba *TelebotAdapter) SendMessage(chatID int64, text string) error {
	_, err := tba.bot.Send(telebot.ChatID(chatID), text, &telebot.SendOptions{DisableWebPagePreview: true})
	return err
}
