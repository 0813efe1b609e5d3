package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/repository"
)

// ============================================================================
// MOCK REPOSITORIES
// ============================================================================
//
// The mocks store entries in maps and implement just enough behavior for the
// services to be exercised without SQLite. Setting err makes every call fail
// with it, which is how storage failures are simulated.

type mockEntryRepo struct {
	entries map[string]model.JournalEntry // keyed by date key
	keys    []string                      // extra raw keys for DateKeys
	nextID  int
	err     error
	spec    model.SearchSpec // last spec passed to Search
}

var _ repository.EntryRepository = (*mockEntryRepo)(nil)

func newMockEntryRepo() *mockEntryRepo {
	return &mockEntryRepo{entries: make(map[string]model.JournalEntry)}
}

func (m *mockEntryRepo) put(e model.JournalEntry) {
	if e.ID == "" {
		m.nextID++
		e.ID = fmt.Sprintf("mock-%d", m.nextID)
	}
	m.entries[e.DateKey] = e
}

func (m *mockEntryRepo) GetByDate(_ context.Context, date time.Time) (*model.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.entries[model.DateKeyOf(date)]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *mockEntryRepo) Save(_ context.Context, in model.EntryInput) (*model.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	key := model.DateKeyOf(in.Date)
	e := m.entries[key]
	e.DateKey = key
	e.Title = strings.TrimSpace(in.Title)
	e.Content = in.Content
	e.HasPin = in.HasPin
	e.Pin = in.Pin
	e.PrimaryMood = in.PrimaryMood
	e.SecondaryMoods = in.SecondaryMoods
	e.PrimaryCategory = model.NormalizeCategory(in.PrimaryCategory)
	e.Tags = in.Tags
	m.put(e)
	saved := m.entries[key]
	return &saved, nil
}

func (m *mockEntryRepo) Delete(_ context.Context, date time.Time) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	key := model.DateKeyOf(date)
	if _, ok := m.entries[key]; !ok {
		return 0, nil
	}
	delete(m.entries, key)
	return 1, nil
}

func (m *mockEntryRepo) sorted() []model.JournalEntry {
	out := make([]model.JournalEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateKey < out[j].DateKey })
	return out
}

func (m *mockEntryRepo) Recent(_ context.Context, limit int) ([]model.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	all := m.sorted()
	sort.SliceStable(all, func(i, j int) bool { return all[i].DateKey > all[j].DateKey })
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (m *mockEntryRepo) ByDateRange(_ context.Context, start, end time.Time) ([]model.JournalEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	from, to := model.DateKeyOf(start), model.DateKeyOf(end)
	var out []model.JournalEntry
	for _, e := range m.sorted() {
		if e.DateKey >= from && e.DateKey <= to {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockEntryRepo) Search(_ context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
	m.spec = spec
	if m.err != nil {
		return nil, m.err
	}
	all := m.sorted()
	return &model.SearchResult{Items: all, TotalCount: len(all), Page: 1, PageSize: spec.PageSize}, nil
}

func (m *mockEntryRepo) DateKeys(_ context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	keys := append([]string{}, m.keys...)
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *mockEntryRepo) Labels(_ context.Context) ([]model.EntryLabels, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.EntryLabels
	for _, e := range m.sorted() {
		out = append(out, model.EntryLabels{
			PrimaryMood:    e.PrimaryMood,
			SecondaryMoods: e.SecondaryMoods,
			Tags:           e.Tags,
		})
	}
	return out, nil
}

type mockCustomTagRepo struct {
	tags   []model.CustomTag
	nextID int
	err    error
}

var _ repository.CustomTagRepository = (*mockCustomTagRepo)(nil)

func (m *mockCustomTagRepo) ListCustomTags(_ context.Context) ([]model.CustomTag, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]model.CustomTag{}, m.tags...), nil
}

func (m *mockCustomTagRepo) AddCustomTag(_ context.Context, name string) (*model.CustomTag, error) {
	if m.err != nil {
		return nil, m.err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "tag name is required")
	}
	for _, t := range m.tags {
		if strings.EqualFold(t.Name, name) {
			return nil, apperror.Conflict("custom tag", name)
		}
	}
	m.nextID++
	tag := model.CustomTag{ID: fmt.Sprintf("tag-%d", m.nextID), Name: name}
	m.tags = append(m.tags, tag)
	return &tag, nil
}

func (m *mockCustomTagRepo) DeleteCustomTag(_ context.Context, id string) (int64, error) {
	return m.remove(func(t model.CustomTag) bool { return t.ID == id })
}

func (m *mockCustomTagRepo) DeleteCustomTagByName(_ context.Context, name string) (int64, error) {
	return m.remove(func(t model.CustomTag) bool { return strings.EqualFold(t.Name, strings.TrimSpace(name)) })
}

func (m *mockCustomTagRepo) remove(match func(model.CustomTag) bool) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	kept := m.tags[:0]
	for _, t := range m.tags {
		if match(t) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.tags = kept
	return n, nil
}

type mockCalendarRepo struct {
	events   map[string]model.CalendarEvent
	nextID   int
	err      error
	from, to time.Time // last range passed to EventsBetween
}

var _ repository.CalendarEventRepository = (*mockCalendarRepo)(nil)

func newMockCalendarRepo() *mockCalendarRepo {
	return &mockCalendarRepo{events: make(map[string]model.CalendarEvent)}
}

func (m *mockCalendarRepo) GetEvent(_ context.Context, id string) (*model.CalendarEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	ev, ok := m.events[id]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (m *mockCalendarRepo) ListEvents(_ context.Context) ([]model.CalendarEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]model.CalendarEvent, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (m *mockCalendarRepo) EventsBetween(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	m.from, m.to = from, to
	all, err := m.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.CalendarEvent{}
	for _, ev := range all {
		if !ev.Start.Before(from) && ev.Start.Before(to) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockCalendarRepo) SaveEvent(_ context.Context, in model.EventInput) (*model.CalendarEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	id := in.ID
	if id == "" {
		m.nextID++
		id = fmt.Sprintf("event-%d", m.nextID)
	}
	ev := model.CalendarEvent{ID: id, Title: in.Title, Start: in.Start, End: in.End, AllDay: in.AllDay, Notes: in.Notes}
	m.events[id] = ev
	return &ev, nil
}

func (m *mockCalendarRepo) DeleteEvent(_ context.Context, id string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	if _, ok := m.events[id]; !ok {
		return 0, nil
	}
	delete(m.events, id)
	return 1, nil
}

// ============================================================================
// HELPERS
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func date(key string) time.Time {
	d, err := model.ParseDateKey(key)
	if err != nil {
		panic(err)
	}
	return d
}

var errDiskFull = apperror.StorageFailed("saving entry", fmt.Errorf("disk full"))
