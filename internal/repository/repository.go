package repository

import (
	"context"
	"time"

	"github.com/sakif/moodjournal/internal/model"
)

// EntryRepository persists journal entries, one per calendar day.
//
// Point lookups report an absent entry as (nil, nil); only I/O and SQL
// failures are errors.
type EntryRepository interface {
	GetByDate(ctx context.Context, date time.Time) (*model.JournalEntry, error)
	Save(ctx context.Context, in model.EntryInput) (*model.JournalEntry, error)
	Delete(ctx context.Context, date time.Time) (int64, error)
	Recent(ctx context.Context, limit int) ([]model.JournalEntry, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]model.JournalEntry, error)
	Search(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error)
	DateKeys(ctx context.Context) ([]string, error)
	Labels(ctx context.Context) ([]model.EntryLabels, error)
}

// CustomTagRepository stores user-defined tag names.
type CustomTagRepository interface {
	ListCustomTags(ctx context.Context) ([]model.CustomTag, error)
	AddCustomTag(ctx context.Context, name string) (*model.CustomTag, error)
	DeleteCustomTag(ctx context.Context, id string) (int64, error)
	DeleteCustomTagByName(ctx context.Context, name string) (int64, error)
}

// CalendarEventRepository stores calendar events. Like entries, an absent
// event is (nil, nil) on lookup.
type CalendarEventRepository interface {
	GetEvent(ctx context.Context, id string) (*model.CalendarEvent, error)
	ListEvents(ctx context.Context) ([]model.CalendarEvent, error)
	// EventsBetween returns events starting in [from, to), earliest first.
	EventsBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
	SaveEvent(ctx context.Context, in model.EventInput) (*model.CalendarEvent, error)
	DeleteEvent(ctx context.Context, id string) (int64, error)
}
