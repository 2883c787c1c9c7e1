package scheduler

import (
	"context"
	"time"

	"events_notifier/internal/domain/notification"
	"events_notifier/internal/infra/metrics"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Recomputer refreshes the materialized schedule of due events.
type Recomputer interface {
	RecomputeDue(ctx context.Context) (int, error)
}

// Notifier sends the reminders of upcoming events.
type Notifier interface {
	NotifyUpcoming(ctx context.Context) (*notification.Report, error)
}

// Config holds the cron specs and per-run timeouts of the jobs.
type Config struct {
	RecomputeSpec    string // e.g. "@every 1m"
	NotifySpec       string // e.g. "@every 1m"
	RecomputeTimeout time.Duration
	NotifyTimeout    time.Duration
}

const defaultJobTimeout = time.Minute

type Scheduler struct {
	cronEngine *cron.Cron
	recomputer Recomputer
	notifier   Notifier
	cfg        Config
	logger     *logrus.Entry
}

func NewScheduler(recomputer Recomputer, notifier Notifier, cfg Config, logger *logrus.Entry) *Scheduler {
	if cfg.RecomputeTimeout <= 0 {
		cfg.RecomputeTimeout = defaultJobTimeout
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultJobTimeout
	}
	cronLogger := cron.PrintfLogger(logger.WithField("component", "cron"))
	return &Scheduler{
		// Cron specs are evaluated in UTC.
		cronEngine: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		recomputer: recomputer,
		notifier:   notifier,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start registers both jobs and starts the cron engine.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cfg.RecomputeSpec, s.RunRecompute); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.cfg.NotifySpec, s.RunNotify); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"recompute_spec": s.cfg.RecomputeSpec,
		"notify_spec":    s.cfg.NotifySpec,
	}).Info("Scheduler started with jobs.")
	return nil
}

// RunRecompute executes one recompute pass.
func (s *Scheduler) RunRecompute() {
	logCtx := s.logger.WithField("job", "recompute")
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RecomputeTimeout)
	defer cancel()

	timer := metrics.NewTimer("recompute")
	defer timer.ObserveDuration()

	updated, err := s.recomputer.RecomputeDue(ctx)
	if err != nil {
		metrics.JobFailures.WithLabelValues("recompute").Inc()
		logCtx.WithError(err).Error("Error during recompute pass")
		return
	}
	logCtx.WithField("updated", updated).Debug("Recompute pass completed")
}

// RunNotify executes one reminder pass.
func (s *Scheduler) RunNotify() {
	logCtx := s.logger.WithField("job", "notify")
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotifyTimeout)
	defer cancel()

	timer := metrics.NewTimer("notify")
	defer timer.ObserveDuration()

	report, err := s.notifier.NotifyUpcoming(ctx)
	if err != nil {
		metrics.JobFailures.WithLabelValues("notify").Inc()
		logCtx.WithError(err).Error("Error during reminder pass")
		return
	}
	if report.HasFailures() {
		metrics.ReminderPassesWithFailures.Inc()
	}
	logCtx.WithField("notified", report.Notified).Debug("Reminder pass completed")
}

// Stop stops scheduling new runs and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler gracefully stopped.")
}
