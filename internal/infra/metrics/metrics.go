package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsRecomputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_recomputed_total",
			Help: "Recurring events processed by the recompute pass, by result",
		},
		[]string{"result"},
	)

	Deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_reminder_deliveries_total",
			Help: "Reminder deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)

	AttendeesNotified = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_attendees_notified_total",
			Help: "Attendees marked as notified for an occurrence",
		},
	)

	SubscriptionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_push_subscriptions_expired_total",
			Help: "Push subscriptions deleted after the push service reported them gone",
		},
	)

	JobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "events_job_duration_seconds",
			Help:    "Duration of scheduled job runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	JobFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_job_failures_total",
			Help: "Scheduled job runs that returned an error",
		},
		[]string{"job"},
	)

	// ReminderPassesWithFailures counts reminder passes that completed but
	// left some deliveries or events failed. Those runs are not job failures.
	ReminderPassesWithFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "events_reminder_passes_with_failures_total",
			Help: "Completed reminder passes with at least one failed delivery or event",
		},
	)
)

func init() {
	prometheus.MustRegister(
		EventsRecomputed,
		Deliveries,
		AttendeesNotified,
		SubscriptionsExpired,
		JobDuration,
		JobFailures,
		ReminderPassesWithFailures,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer observes the elapsed time of a job into JobDuration.
type Timer struct {
	timer *prometheus.Timer
}

func NewTimer(job string) *Timer {
	return &Timer{timer: prometheus.NewTimer(JobDuration.WithLabelValues(job))}
}

func (t *Timer) ObserveDuration() {
	t.timer.ObserveDuration()
}
