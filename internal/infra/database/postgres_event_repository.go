// internal/infra/database/postgres_event_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"events_notifier/internal/domain/event"
)

var ErrEventNotFound = fmt.Errorf("event not found")

const eventColumns = `id, name, image, url, x, y, server, approved, rejected,
       start_at, duration, finish_at,
       recurrent, recurrent_frequency, recurrent_interval, recurrent_weekday_mask, recurrent_month_mask,
       recurrent_monthday, recurrent_setpos, recurrent_count, recurrent_until,
       COALESCE(array_to_json(recurrent_dates), '[]'::json),
       next_start_at, next_finish_at, created_at, updated_at`

type PostgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*event.Event, error) {
	var (
		e                       event.Event
		image, url, server      sql.NullString
		frequency               sql.NullString
		durationMs              int64
		weekdayMask, monthMask  int
		monthday, setpos, count sql.NullInt64
		until                   sql.NullTime
		finishAt                sql.NullTime
		nextStart, nextFinish   sql.NullTime
		dates                   timestampArray
	)
	err := row.Scan(
		&e.ID, &e.Name, &image, &url, &e.X, &e.Y, &server, &e.Approved, &e.Rejected,
		&e.StartAt, &durationMs, &finishAt,
		&e.Recurrence.Recurrent, &frequency, &e.Recurrence.Interval, &weekdayMask, &monthMask,
		&monthday, &setpos, &count, &until,
		&dates,
		&nextStart, &nextFinish, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Image, e.URL, e.Server = image.String, url.String, server.String
	e.StartAt = e.StartAt.UTC()
	e.Duration = time.Duration(durationMs) * time.Millisecond
	e.FinishAt = finishAt.Time.UTC()
	e.Recurrence.Frequency = event.Frequency(frequency.String)
	e.Recurrence.Weekdays = event.WeekdaySetFromMask(weekdayMask)
	e.Recurrence.Months = event.MonthSetFromMask(monthMask)
	e.Recurrence.Monthday = intPtr(monthday)
	e.Recurrence.Setpos = intPtr(setpos)
	e.Recurrence.Count = intPtr(count)
	e.Recurrence.Until = timePtr(until)
	e.RecurrentDates = dates
	e.NextStartAt = nextStart.Time.UTC()
	e.NextFinishAt = nextFinish.Time.UTC()
	return &e, nil
}

func scanEvents(rows *sql.Rows) ([]*event.Event, error) {
	events := make([]*event.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*event.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("error getting event by ID: %w", err)
	}
	return e, nil
}

func (r *PostgresEventRepository) UpdateSchedule(ctx context.Context, e *event.Event) error {
	query := `UPDATE events
               SET start_at = $1, duration = $2, finish_at = $3,
                   recurrent = $4, recurrent_frequency = $5, recurrent_interval = $6,
                   recurrent_weekday_mask = $7, recurrent_month_mask = $8,
                   recurrent_monthday = $9, recurrent_setpos = $10, recurrent_count = $11, recurrent_until = $12,
                   recurrent_dates = $13::timestamptz[], next_start_at = $14, next_finish_at = $15,
                   updated_at = NOW()
               WHERE id = $16
               RETURNING updated_at`
	rec := e.Recurrence
	err := r.db.QueryRowContext(ctx, query,
		e.StartAt.UTC(), e.Duration.Milliseconds(), nullTime(e.FinishAt),
		rec.Recurrent, nullString(string(rec.Frequency)), rec.Interval,
		rec.Weekdays.Mask(), rec.Months.Mask(),
		nullInt(rec.Monthday), nullInt(rec.Setpos), nullInt(rec.Count), nullTimePtr(rec.Until),
		timestampArray(e.RecurrentDates), nullTime(e.NextStartAt), nullTime(e.NextFinishAt),
		e.ID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("error updating event schedule: %w", err)
	}
	return nil
}

// ListDueForRecompute keeps matching a series after its last window closed.
// The columns cannot tell an exhausted COUNT/UNTIL from a schedule cut short by
// the per-call cap, so only evaluating the rule can; the recurrence service
// skips the write when the schedule did not change. events_recompute_idx
// (partial on recurrent) serves the next_finish_at range.
func (r *PostgresEventRepository) ListDueForRecompute(ctx context.Context, now time.Time) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + `
               FROM events
               WHERE recurrent = TRUE AND rejected = FALSE
                 AND (next_finish_at IS NULL OR next_finish_at <= $1)
               ORDER BY start_at`
	rows, err := r.db.QueryContext(ctx, query, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("error querying events due for recompute: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (r *PostgresEventRepository) ListUpcoming(ctx context.Context, from, to time.Time) ([]*event.Event, error) {
	query := `SELECT ` + eventColumns + `
               FROM events
               WHERE approved = TRUE AND rejected = FALSE
                 AND next_start_at > $1 AND next_start_at <= $2
               ORDER BY next_start_at`
	rows, err := r.db.QueryContext(ctx, query, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("error querying upcoming events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}
