package database

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// timestampArray binds a slice of instants as a TIMESTAMPTZ[] parameter
// (through its text form) and scans the JSON produced by array_to_json.
type timestampArray []time.Time

func (a timestampArray) Value() (driver.Value, error) {
	strs := make(pq.StringArray, len(a))
	for i, t := range a {
		strs[i] = t.UTC().Format(time.RFC3339Nano)
	}
	return strs.Value()
}

func (a *timestampArray) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into timestamp array", src)
	}

	var out []time.Time
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("error decoding timestamp array: %w", err)
	}
	for i := range out {
		out[i] = out[i].UTC()
	}
	*a = out
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullTimePtr(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return nullTime(*t)
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time.UTC()
	return &v
}
