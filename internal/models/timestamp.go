package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the calendar-date key format used for filtering and trends.
const DateLayout = "2006-01-02"

// Timestamp is a parsed event time. Valid is false when the source value was
// missing or could not be parsed.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// At wraps a known time.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t, Valid: true}
}

// DateKey returns the calendar date in the timestamp's location, or "" when invalid.
func (t Timestamp) DateKey() string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(DateLayout)
}

// Hour returns the hour of day, or -1 when invalid.
func (t Timestamp) Hour() int {
	if !t.Valid {
		return -1
	}
	return t.Time.Hour()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time)
}
