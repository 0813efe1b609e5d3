package model

import (
	"fmt"
	"strings"
	"time"
)

// EventTimeLayout is how event start and end times are persisted. Times are
// stored in UTC at second precision, so every value has the same width and
// text order is time order.
const EventTimeLayout = time.RFC3339

// CalendarEvent is a free-standing calendar item (an appointment, a
// birthday) shown next to journal days. It is independent of entries.
type CalendarEvent struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Start     time.Time  `json:"start"`
	End       *time.Time `json:"end,omitempty"`
	AllDay    bool       `json:"allDay"`
	Notes     string     `json:"notes"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// EventInput is a create or replace request. An empty ID creates a new
// event; a known ID replaces that event.
type EventInput struct {
	ID     string
	Title  string
	Start  time.Time
	End    *time.Time
	AllDay bool
	Notes  string
}

// ParseEventTime accepts RFC 3339 ("2024-03-01T09:30:00+01:00") or a bare
// date key, which means midnight UTC of that day.
func ParseEventTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := ParseDateKey(raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: expected RFC 3339 or YYYY-MM-DD", raw)
}

// MonthRange returns the half-open range [first day of month, first day of
// the next month) in UTC.
func MonthRange(year int, month time.Month) (from, to time.Time) {
	from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
