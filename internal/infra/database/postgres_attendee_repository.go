package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"events_notifier/internal/domain/attendee"
)

var ErrAttendeeNotFound = fmt.Errorf("attendee not found")
var ErrDuplicateAttendee = fmt.Errorf("user already attends this event")

type PostgresAttendeeRepository struct {
	db *sql.DB
}

func NewPostgresAttendeeRepository(db *sql.DB) *PostgresAttendeeRepository {
	return &PostgresAttendeeRepository{db: db}
}

func (r *PostgresAttendeeRepository) Add(ctx context.Context, a *attendee.Attendee) error {
	query := `INSERT INTO event_attendees (event_id, "user", user_name)
               VALUES ($1, $2, $3)
               ON CONFLICT (event_id, "user") DO NOTHING
               RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, a.EventID, a.User, a.UserName).Scan(&a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDuplicateAttendee
		}
		return fmt.Errorf("error adding attendee: %w", err)
	}
	return nil
}

func (r *PostgresAttendeeRepository) Remove(ctx context.Context, eventID uuid.UUID, user string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM event_attendees WHERE event_id = $1 AND "user" = $2`, eventID, user)
	if err != nil {
		return fmt.Errorf("error removing attendee: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading removed attendee count: %w", err)
	}
	if n == 0 {
		return ErrAttendeeNotFound
	}
	return nil
}

func scanAttendees(rows *sql.Rows) ([]*attendee.Attendee, error) {
	attendees := make([]*attendee.Attendee, 0)
	for rows.Next() {
		a := attendee.Attendee{}
		var userName sql.NullString
		var notified sql.NullTime
		if err := rows.Scan(&a.EventID, &a.User, &userName, &notified, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning attendee row: %w", err)
		}
		a.UserName = userName.String
		a.NotifiedStartAt = timePtr(notified)
		attendees = append(attendees, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendee rows: %w", err)
	}
	return attendees, nil
}

func (r *PostgresAttendeeRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*attendee.Attendee, error) {
	query := `SELECT event_id, "user", user_name, notified_start_at, created_at
               FROM event_attendees
               WHERE event_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error querying attendees by event: %w", err)
	}
	defer rows.Close()
	return scanAttendees(rows)
}

func (r *PostgresAttendeeRepository) ListPending(ctx context.Context, eventIDs []uuid.UUID) ([]*attendee.Attendee, error) {
	if len(eventIDs) == 0 {
		return []*attendee.Attendee{}, nil
	}
	ids := make([]string, len(eventIDs))
	for i, id := range eventIDs {
		ids[i] = id.String()
	}

	query := `SELECT a.event_id, a."user", a.user_name, a.notified_start_at, a.created_at
               FROM event_attendees a
               JOIN events e ON e.id = a.event_id
               WHERE a.event_id = ANY($1::uuid[])
                 AND a.notified_start_at IS DISTINCT FROM e.next_start_at
               ORDER BY a.event_id, a.created_at`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error querying pending attendees: %w", err)
	}
	defer rows.Close()
	return scanAttendees(rows)
}

func (r *PostgresAttendeeRepository) MarkNotified(ctx context.Context, eventID uuid.UUID, users []string, startAt time.Time) error {
	if len(users) == 0 {
		return nil
	}
	query := `UPDATE event_attendees SET notified_start_at = $1
               WHERE event_id = $2 AND "user" = ANY($3)`
	if _, err := r.db.ExecContext(ctx, query, startAt.UTC(), eventID, pq.Array(users)); err != nil {
		return fmt.Errorf("error marking attendees notified for event %s: %w", eventID, err)
	}
	return nil
}

func (r *PostgresAttendeeRepository) ListSettings(ctx context.Context, users []string) ([]*attendee.Settings, error) {
	if len(users) == 0 {
		return []*attendee.Settings{}, nil
	}
	query := `SELECT "user", email, email_verified, notify_by_email, notify_by_browser
               FROM profile_settings
               WHERE "user" = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(users))
	if err != nil {
		return nil, fmt.Errorf("error querying profile settings: %w", err)
	}
	defer rows.Close()

	settings := make([]*attendee.Settings, 0)
	for rows.Next() {
		s := attendee.Settings{}
		var email sql.NullString
		if err := rows.Scan(&s.User, &email, &s.EmailVerified, &s.NotifyByEmail, &s.NotifyByBrowser); err != nil {
			return nil, fmt.Errorf("error scanning profile settings row: %w", err)
		}
		s.Email = email.String
		settings = append(settings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profile settings rows: %w", err)
	}
	return settings, nil
}

func (r *PostgresAttendeeRepository) ListSubscriptions(ctx context.Context, users []string) ([]*attendee.Subscription, error) {
	if len(users) == 0 {
		return []*attendee.Subscription{}, nil
	}
	query := `SELECT id, "user", endpoint, p256dh, auth
               FROM profile_subscriptions
               WHERE "user" = ANY($1) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(users))
	if err != nil {
		return nil, fmt.Errorf("error querying push subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]*attendee.Subscription, 0)
	for rows.Next() {
		s := attendee.Subscription{}
		if err := rows.Scan(&s.ID, &s.User, &s.Endpoint, &s.P256DH, &s.Auth); err != nil {
			return nil, fmt.Errorf("error scanning push subscription row: %w", err)
		}
		subs = append(subs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating push subscription rows: %w", err)
	}
	return subs, nil
}

func (r *PostgresAttendeeRepository) DeleteSubscriptions(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profile_subscriptions WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return fmt.Errorf("error deleting push subscriptions: %w", err)
	}
	return nil
}
