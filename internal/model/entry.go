// Package model defines the data structures shared by the journal store,
// the query builder and the analytics services.
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical date key format. Keys are zero-padded, so
// lexical comparison matches calendar order.
const DateLayout = "2006-01-02"

// TimestampLayout is how created/updated timestamps are persisted (UTC).
const TimestampLayout = "2006-01-02 15:04:05"

// PinLength is the exact length of a per-entry PIN.
const PinLength = 4

// MaxSecondaryMoods caps how many secondary moods an entry keeps.
const MaxSecondaryMoods = 2

// JournalEntry is one row per calendar day.
type JournalEntry struct {
	ID              string    `json:"id"`
	DateKey         string    `json:"dateKey"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	HasPin          bool      `json:"hasPin"`
	Pin             string    `json:"-"` // stored in the clear, never serialized
	PrimaryMood     string    `json:"primaryMood"`
	SecondaryMoods  []string  `json:"secondaryMoods"`
	PrimaryCategory Category  `json:"primaryCategory"`
	Tags            []string  `json:"tags"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Locked reports whether the entry hides its content behind a PIN.
func (e JournalEntry) Locked() bool {
	return e.HasPin
}

// Scrubbed returns a copy safe for list views: content and PIN are blanked
// for PIN-protected entries.
func (e JournalEntry) Scrubbed() JournalEntry {
	if e.Locked() {
		e.Content = ""
		e.Pin = ""
	}
	return e
}

// EntryInput carries everything a save needs. Normalization and validation
// happen at the store boundary.
type EntryInput struct {
	Date            time.Time
	Title           string
	Content         string
	HasPin          bool
	Pin             string
	PrimaryMood     string
	SecondaryMoods  []string
	PrimaryCategory string
	Tags            []string
}

// EntryLabels is the slice of an entry the distinct-value indexer reads.
type EntryLabels struct {
	PrimaryMood    string
	SecondaryMoods []string
	Tags           []string
}

// DateKeyOf formats the calendar day of t (in t's own location).
func DateKeyOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey parses a canonical YYYY-MM-DD key into midnight UTC.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(key))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}
