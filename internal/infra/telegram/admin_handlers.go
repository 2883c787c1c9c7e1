package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"events_notifier/internal/app"
	idb "events_notifier/internal/infra/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const msgUnauthorized = "Error: you are not allowed to run this command."

// defaultNextCount is how many windows /next lists without a count.
const defaultNextCount = 5

// RegisterAdminHandlers registers handlers for admin commands.
// It requires the bot instance, admin service, and the configured admin Telegram ID.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/event", eventCommand(baseLogger, adminTelegramID, "/event", "/event <event id>", 0, 0,
		func(c telebot.Context, id uuid.UUID, _ []string) error {
			summary, err := adminService.EventSummary(ctx, c.Sender().ID, id)
			if err != nil {
				return err
			}
			return c.Send(formatSummary(summary))
		}))

	b.Handle("/next", eventCommand(baseLogger, adminTelegramID, "/next", "/next <event id> [count]", 0, 1,
		func(c telebot.Context, id uuid.UUID, rest []string) error {
			n, err := parseCount(rest, defaultNextCount)
			if err != nil {
				return fmt.Errorf("%w: %v", app.ErrInvalidArgument, err)
			}
			windows, err := adminService.NextOccurrences(ctx, c.Sender().ID, id, n)
			if err != nil {
				return err
			}
			return c.Send(formatWindows(windows))
		}))

	b.Handle("/recompute", eventCommand(baseLogger, adminTelegramID, "/recompute", "/recompute <event id>", 0, 0,
		func(c telebot.Context, id uuid.UUID, _ []string) error {
			summary, err := adminService.Recompute(ctx, c.Sender().ID, id)
			if err != nil {
				return err
			}
			return c.Send("Schedule recomputed.\n" + formatSummary(summary))
		}))

	b.Handle("/rrule", eventCommand(baseLogger, adminTelegramID, "/rrule", "/rrule <event id> <RRULE|none>", 1, 1,
		func(c telebot.Context, id uuid.UUID, rest []string) error {
			summary, err := adminService.UpdateRule(ctx, c.Sender().ID, id, rest[0])
			if err != nil {
				return err
			}
			return c.Send("Recurrence updated.\n" + formatSummary(summary))
		}))

	b.Handle("/attendees", eventCommand(baseLogger, adminTelegramID, "/attendees", "/attendees <event id>", 0, 0,
		func(c telebot.Context, id uuid.UUID, _ []string) error {
			list, err := adminService.Attendees(ctx, c.Sender().ID, id)
			if err != nil {
				return err
			}
			return c.Send(formatAttendees(list))
		}))

	b.Handle("/attend", eventCommand(baseLogger, adminTelegramID, "/attend", "/attend <event id> <email> [name]", 1, 8,
		func(c telebot.Context, id uuid.UUID, rest []string) error {
			a, err := adminService.AddAttendee(ctx, c.Sender().ID, id, rest[0], strings.Join(rest[1:], " "))
			if err != nil {
				return err
			}
			return c.Send(a.User + " now attends the event.")
		}))

	b.Handle("/unattend", eventCommand(baseLogger, adminTelegramID, "/unattend", "/unattend <event id> <email>", 1, 1,
		func(c telebot.Context, id uuid.UUID, rest []string) error {
			if err := adminService.RemoveAttendee(ctx, c.Sender().ID, id, rest[0]); err != nil {
				return err
			}
			return c.Send(rest[0] + " no longer attends the event.")
		}))

	b.Handle("/report", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/report",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}

		report, err := adminService.LastReport(c.Sender().ID)
		if errors.Is(err, app.ErrNoReport) {
			return c.Send("No reminder pass has completed since startup.")
		}
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to get last report")
			return c.Send("Error: " + err.Error())
		}
		return c.Send(report.Summary())
	})
}

// eventCommand wraps a handler taking an event id and up to maxRest further
// arguments with the admin check, argument parsing and error replies shared by
// those commands.
func eventCommand(
	baseLogger *logrus.Entry,
	adminTelegramID int64,
	name, usage string,
	minRest, maxRest int,
	run func(c telebot.Context, id uuid.UUID, rest []string) error,
) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   name,
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send(msgUnauthorized)
		}

		id, rest, err := parseEventArgs(c.Args(), minRest, maxRest)
		if err != nil {
			handlerLogger.WithError(err).Warn("Invalid command format")
			return c.Send("Invalid command format. Use: " + usage)
		}
		handlerLogger = handlerLogger.WithField("event_id", id)

		if err := run(c, id, rest); err != nil {
			return c.Send(replyFor(err, id, handlerLogger))
		}
		return nil
	}
}

// replyFor maps a command failure to the message shown to the operator.
func replyFor(err error, id uuid.UUID, handlerLogger *logrus.Entry) string {
	switch {
	case errors.Is(err, app.ErrAdminNotAuthorized):
		handlerLogger.WithError(err).Warn("Admin not authorized (service level)")
		return msgUnauthorized
	case errors.Is(err, idb.ErrEventNotFound):
		handlerLogger.Warn("Event not found")
		return "Event " + id.String() + " not found."
	case errors.Is(err, app.ErrInvalidArgument):
		handlerLogger.WithError(err).Warn("Invalid command argument")
		return "Invalid argument: " + err.Error()
	case errors.Is(err, idb.ErrDuplicateAttendee), errors.Is(err, idb.ErrAttendeeNotFound):
		handlerLogger.WithError(err).Info("Attendee change rejected")
		return "Error: " + err.Error()
	default:
		handlerLogger.WithError(err).Error("Command failed")
		return "Error: " + err.Error()
	}
}
