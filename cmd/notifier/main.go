package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"events_notifier/internal/app"
	"events_notifier/internal/domain/notification"
	domainTelegram "events_notifier/internal/domain/telegram"
	"events_notifier/internal/infra/config"
	idb "events_notifier/internal/infra/database"
	"events_notifier/internal/infra/logger"
	"events_notifier/internal/infra/mailer"
	"events_notifier/internal/infra/metrics"
	"events_notifier/internal/infra/push"
	"events_notifier/internal/infra/scheduler"
	"events_notifier/internal/infra/telegram"
	"events_notifier/internal/recurrence"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"log_level":   cfg.LogLevel,
	}).Info("Events notifier starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	eventRepo := idb.NewPostgresEventRepository(db)
	attendeeRepo := idb.NewPostgresAttendeeRepository(db)

	var emailSender notification.EmailSender
	if cfg.EmailEnabled() {
		smtp, err := mailer.NewSMTPSender(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger.Component("mailer"))
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create SMTP sender")
		}
		emailSender = smtp
	} else {
		mainLogger.Warn("SMTP_HOST is not set, email reminders are disabled")
	}

	var pushSender notification.PushSender
	if cfg.PushEnabled() {
		pushSender = push.NewSender(push.Config{
			PublicKey:  cfg.VAPIDPublicKey,
			PrivateKey: cfg.VAPIDPrivateKey,
			Subscriber: cfg.VAPIDSubscriber,
		}, logger.Component("push"))
	} else {
		mainLogger.Warn("VAPID keys are not set, push reminders are disabled")
	}

	var (
		bot         *telebot.Bot
		alertClient domainTelegram.Client
	)
	if cfg.BotEnabled() {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := logger.Component("telebot").WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"text": c.Text(), "sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		alertClient = telegram.NewTelebotAdapter(bot)
	}

	opts := recurrence.Options{
		MaxRecurrent: cfg.MaxEventRecurrent,
		HistoryLimit: cfg.RecurrentHistoryLimit,
	}
	eventService := app.NewEventService(eventRepo, opts, logger.Component("event_service"))
	recurrenceService := app.NewRecurrenceService(eventRepo, opts, logger.Component("recurrence_service"))
	attendeeCache := app.NewAttendeeCache(app.AttendeeCacheConfig{TTL: cfg.AttendeeCacheTTL}, nil)
	attendeeService := app.NewAttendeeService(attendeeRepo, eventRepo, attendeeCache, logger.Component("attendee_service"))
	notificationService := app.NewNotificationService(eventRepo, attendeeRepo, emailSender, pushSender, alertClient,
		app.NotificationConfig{
			LeadTime:    cfg.NotificationLeadTime,
			EventsURL:   cfg.EventsURL,
			PlayURL:     cfg.PlayURL,
			AdminChatID: cfg.AdminTelegramID,
		}, logger.Component("notification_service")).
		WithAttendeeCache(attendeeCache)

	sched := scheduler.NewScheduler(recurrenceService, notificationService, scheduler.Config{
		RecomputeSpec: cfg.CronSpecRecompute,
		NotifySpec:    cfg.CronSpecNotify,
	}, logger.Component("scheduler"))
	if err := sched.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start scheduler")
	}

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		mainLogger.WithField("addr", cfg.MetricsAddr).Info("Metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Error("Metrics server failed")
		}
	}()

	if bot != nil {
		botLogger := logger.Component("telegram")
		adminService := app.NewAdminService(eventService, recurrenceService, attendeeService, notificationService, cfg.AdminTelegramID)
		telegram.RegisterBotCommands(bot, cfg, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, botLogger)
		go bot.Start()
		mainLogger.Info("Operator bot started.")
	}

	mainLogger.Info("Application setup complete.")
	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	if bot != nil {
		bot.Stop()
	}
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("Metrics server did not shut down cleanly")
	}
	mainLogger.Info("Application shut down gracefully.")
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}
