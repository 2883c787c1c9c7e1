// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"fmt"
	"strings"

	"events_notifier/internal/infra/config"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	b *telebot.Bot,
	cfg *config.AppConfig, // For AdminTelegramID
	baseLogger *logrus.Entry, // For contextual logging
) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == cfg.AdminTelegramID {
			logCtx.Info("User identified as Admin")
			return c.Send(fmt.Sprintf("Hello, %s! Event reminders are running. Use /help for the list of commands.", c.Sender().FirstName))
		}

		logCtx.Info("User is unknown")
		return c.Send("This bot reports on the events reminder service and only answers its operators.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID != cfg.AdminTelegramID {
			logCtx.Info("User is unknown, sending restricted help.")
			return c.Send("No commands are available to you.")
		}

		var helpText strings.Builder
		helpText.WriteString("Operator commands:\n\n")
		helpText.WriteString("`/event <id>`\n - Show the schedule and next occurrences of an event.\n\n")
		helpText.WriteString("`/next <id> [count]`\n - List the next occurrences of an event (default 5).\n\n")
		helpText.WriteString("`/recompute <id>`\n - Recompute the schedule of an event now.\n\n")
		helpText.WriteString("`/rrule <id> <RRULE|none>`\n - Replace the recurrence of an event, e.g. `FREQ=WEEKLY;BYDAY=FR;COUNT=3`.\n\n")
		helpText.WriteString("`/attendees <id>`\n - List attendees and their reminder state.\n\n")
		helpText.WriteString("`/attend <id> <email> [name]`\n - Register an attendee for an event.\n\n")
		helpText.WriteString("`/unattend <id> <email>`\n - Remove an attendee from an event.\n\n")
		helpText.WriteString("`/report`\n - Show the result of the last reminder pass.\n\n")
		helpText.WriteString("`/help`\n - Show this message.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
