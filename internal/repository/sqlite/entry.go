package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/xid"

	"github.com/sakif/moodjournal/internal/apperror"
	"github.com/sakif/moodjournal/internal/model"
	"github.com/sakif/moodjournal/internal/query"
	"github.com/sakif/moodjournal/internal/repository"
	"github.com/sakif/moodjournal/internal/sanitize"
	"github.com/sakif/moodjournal/internal/tagset"
)

// Compile-time check that *DB satisfies the interface the services use.
var _ repository.EntryRepository = (*DB)(nil)

const timestampLayout = model.TimestampLayout

// upsertSuffix updates every mutable column on a date key collision. id and
// created_at are never touched after the first insert.
const upsertSuffix = `ON CONFLICT(date_key) DO UPDATE SET
	title = excluded.title,
	content = excluded.content,
	has_pin = excluded.has_pin,
	pin = excluded.pin,
	primary_mood = excluded.primary_mood,
	secondary_moods = excluded.secondary_moods,
	primary_category = excluded.primary_category,
	tags = excluded.tags,
	updated_at = excluded.updated_at`

// entryRow mirrors journal_entries. Multi-valued fields stay comma-joined and
// timestamps stay text until toModel.
type entryRow struct {
	ID              string         `db:"id"`
	DateKey         string         `db:"date_key"`
	Title           string         `db:"title"`
	Content         string         `db:"content"`
	HasPin          bool           `db:"has_pin"`
	Pin             sql.NullString `db:"pin"`
	PrimaryMood     string         `db:"primary_mood"`
	SecondaryMoods  string         `db:"secondary_moods"`
	PrimaryCategory string         `db:"primary_category"`
	Tags            string         `db:"tags"`
	CreatedAt       string         `db:"created_at"`
	UpdatedAt       string         `db:"updated_at"`
}

func (r entryRow) toModel() model.JournalEntry {
	return model.JournalEntry{
		ID:              r.ID,
		DateKey:         r.DateKey,
		Title:           r.Title,
		Content:         r.Content,
		HasPin:          r.HasPin,
		Pin:             r.Pin.String,
		PrimaryMood:     r.PrimaryMood,
		SecondaryMoods:  tagset.Split(r.SecondaryMoods),
		PrimaryCategory: model.NormalizeCategory(r.PrimaryCategory),
		Tags:            tagset.Split(r.Tags),
		CreatedAt:       parseTimestamp(r.CreatedAt),
		UpdatedAt:       parseTimestamp(r.UpdatedAt),
	}
}

// parseTimestamp reads the stored UTC text. Unparseable values become the
// zero time rather than failing the whole read.
func parseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// prepareEntry validates and normalizes a save request into a row. Nothing
// is written when it fails.
//
// RULES:
//   - date, title and primary mood are required; title and mood are trimmed
//   - a PIN, when requested, is exactly model.PinLength characters
//   - secondary moods drop blanks, case variants and the primary mood, then
//     keep the first model.MaxSecondaryMoods
//   - tags drop blanks and case variants and are sorted ignoring case
//   - no stored label may contain the column delimiter
//   - content is reduced to plain text
func prepareEntry(in model.EntryInput) (entryRow, error) {
	if in.Date.IsZero() {
		return entryRow{}, apperror.ValidationFailed("date", "date is required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return entryRow{}, apperror.ValidationFailed("title", "title is required")
	}

	primary := strings.TrimSpace(in.PrimaryMood)
	if primary == "" {
		return entryRow{}, apperror.ValidationFailed("primaryMood", "primary mood is required")
	}

	var pin sql.NullString
	if in.HasPin {
		p := strings.TrimSpace(in.Pin)
		if len([]rune(p)) != model.PinLength {
			return entryRow{}, apperror.ValidationFailed("pin",
				fmt.Sprintf("PIN must be exactly %d characters", model.PinLength))
		}
		pin = sql.NullString{String: p, Valid: true}
	}

	secondary := tagset.Without(tagset.Normalize(in.SecondaryMoods), primary)
	if len(secondary) > model.MaxSecondaryMoods {
		secondary = secondary[:model.MaxSecondaryMoods]
	}
	tags := tagset.NormalizeSorted(in.Tags)

	if bad, found := tagset.HasDelimiter(primary); found {
		return entryRow{}, apperror.ValidationFailed("primaryMood",
			fmt.Sprintf("mood %q must not contain %q", bad, tagset.Delimiter))
	}
	if bad, found := tagset.HasDelimiter(secondary...); found {
		return entryRow{}, apperror.ValidationFailed("secondaryMoods",
			fmt.Sprintf("mood %q must not contain %q", bad, tagset.Delimiter))
	}
	if bad, found := tagset.HasDelimiter(tags...); found {
		return entryRow{}, apperror.ValidationFailed("tags",
			fmt.Sprintf("tag %q must not contain %q", bad, tagset.Delimiter))
	}

	return entryRow{
		DateKey:         model.DateKeyOf(in.Date),
		Title:           title,
		Content:         sanitize.PlainText(in.Content),
		HasPin:          in.HasPin,
		Pin:             pin,
		PrimaryMood:     primary,
		SecondaryMoods:  tagset.Join(secondary),
		PrimaryCategory: string(model.NormalizeCategory(in.PrimaryCategory)),
		Tags:            tagset.Join(tags),
	}, nil
}

// GetByDate returns the entry for the calendar day of date, or nil when the
// day has no entry.
func (db *DB) GetByDate(ctx context.Context, date time.Time) (*model.JournalEntry, error) {
	key := model.DateKeyOf(date)

	stmt, args, err := sq.Select(query.EntryColumns...).
		From(query.Table).
		Where(sq.Eq{query.ColDateKey: key}).
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building entry lookup", err)
	}

	var row entryRow
	if err := db.conn.GetContext(ctx, &row, stmt, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.StorageFailed("getting entry "+key, err)
	}

	entry := row.toModel()
	return &entry, nil
}

// Save inserts or updates the entry for in.Date in a single statement and
// returns the stored row.
//
// UPSERT:
// date_key carries a unique index, so "one entry per day" is enforced by
// SQLite, not by a read-then-write in Go. INSERT ... ON CONFLICT(date_key)
// DO UPDATE keeps the id and created_at of the first save and replaces
// everything else (see upsertSuffix). Two concurrent saves for the same day
// leave exactly one row, holding whichever ran last.
//
// NORMALIZATION:
// prepareEntry runs first and either rejects the input with a validation
// error or produces the exact row to write. Nothing reaches the database on
// a validation failure, so the previous entry for the day survives intact.
func (db *DB) Save(ctx context.Context, in model.EntryInput) (*model.JournalEntry, error) {
	row, err := prepareEntry(in)
	if err != nil {
		return nil, err
	}

	ts := db.timestamp()
	stmt, args, err := sq.Insert(query.Table).
		Columns(query.EntryColumns...).
		Values(
			xid.New().String(),
			row.DateKey,
			row.Title,
			row.Content,
			row.HasPin,
			row.Pin,
			row.PrimaryMood,
			row.SecondaryMoods,
			row.PrimaryCategory,
			row.Tags,
			ts,
			ts,
		).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building entry upsert", err)
	}

	if _, err := db.conn.ExecContext(ctx, stmt, args...); err != nil {
		return nil, apperror.StorageFailed("saving entry "+row.DateKey, err)
	}

	saved, err := db.GetByDate(ctx, in.Date)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		return nil, apperror.StorageFailed("saving entry "+row.DateKey, errors.New("row missing after upsert"))
	}
	return saved, nil
}

// Delete removes the entry for the day of date and reports how many rows went
// away. Deleting an absent day is not an error.
func (db *DB) Delete(ctx context.Context, date time.Time) (int64, error) {
	key := model.DateKeyOf(date)

	stmt, args, err := sq.Delete(query.Table).Where(sq.Eq{query.ColDateKey: key}).ToSql()
	if err != nil {
		return 0, apperror.StorageFailed("building entry delete", err)
	}

	result, err := db.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, apperror.StorageFailed("deleting entry "+key, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperror.StorageFailed("checking rows affected", err)
	}
	return n, nil
}

// Recent returns the most recently updated entries.
func (db *DB) Recent(ctx context.Context, limit int) ([]model.JournalEntry, error) {
	if limit < 1 {
		limit = 1
	}

	b := sq.Select(query.EntryColumns...).
		From(query.Table).
		OrderBy(query.ColUpdatedAt+" DESC", query.ColDateKey+" DESC").
		Limit(uint64(limit))

	return db.selectEntries(ctx, b, "listing recent entries")
}

// ByDateRange returns entries whose day falls in [start, end], oldest first.
func (db *DB) ByDateRange(ctx context.Context, start, end time.Time) ([]model.JournalEntry, error) {
	b := sq.Select(query.EntryColumns...).
		From(query.Table).
		Where(sq.GtOrEq{query.ColDateKey: model.DateKeyOf(start)}).
		Where(sq.LtOrEq{query.ColDateKey: model.DateKeyOf(end)}).
		OrderBy(query.ColDateKey + " ASC")

	return db.selectEntries(ctx, b, "listing entries by date range")
}

// Search runs one page of spec plus the matching total. PIN-protected entries
// come back without content.
//
// TWO QUERIES:
// The total is a COUNT(*) over the same WHERE clause, without ORDER BY or
// LIMIT, so it does not depend on the page. A page past the end returns no
// items and the real total; a page too large to express as an OFFSET skips
// the page query entirely.
func (db *DB) Search(ctx context.Context, spec model.SearchSpec) (*model.SearchResult, error) {
	spec = query.Normalize(spec)

	stmt, args, err := query.CountQuery(spec).ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building search count", err)
	}

	var total int
	if err := db.conn.GetContext(ctx, &total, stmt, args...); err != nil {
		return nil, apperror.StorageFailed("counting search results", err)
	}

	items := []model.JournalEntry{}
	if !query.PastEnd(spec) {
		if items, err = db.selectEntries(ctx, query.PageQuery(spec), "searching entries"); err != nil {
			return nil, err
		}
	}
	for i := range items {
		items[i] = items[i].Scrubbed()
	}

	return &model.SearchResult{
		Items:      items,
		TotalCount: total,
		Page:       spec.Page,
		PageSize:   spec.PageSize,
	}, nil
}

// DateKeys returns every stored date key in ascending order.
func (db *DB) DateKeys(ctx context.Context) ([]string, error) {
	stmt, args, err := sq.Select(query.ColDateKey).
		From(query.Table).
		OrderBy(query.ColDateKey + " ASC").
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building date key query", err)
	}

	keys := []string{}
	if err := db.conn.SelectContext(ctx, &keys, stmt, args...); err != nil {
		return nil, apperror.StorageFailed("listing date keys", err)
	}
	return keys, nil
}

// Labels returns the moods and tags of every entry.
func (db *DB) Labels(ctx context.Context) ([]model.EntryLabels, error) {
	stmt, args, err := sq.Select(query.ColPrimaryMood, query.ColSecondaryMoods, query.ColTags).
		From(query.Table).
		OrderBy(query.ColDateKey + " ASC").
		ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building label query", err)
	}

	var rows []entryRow
	if err := db.conn.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, apperror.StorageFailed("listing entry labels", err)
	}

	labels := make([]model.EntryLabels, 0, len(rows))
	for _, r := range rows {
		labels = append(labels, model.EntryLabels{
			PrimaryMood:    r.PrimaryMood,
			SecondaryMoods: tagset.Split(r.SecondaryMoods),
			Tags:           tagset.Split(r.Tags),
		})
	}
	return labels, nil
}

func (db *DB) selectEntries(ctx context.Context, b sq.SelectBuilder, op string) ([]model.JournalEntry, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, apperror.StorageFailed("building query", err)
	}

	var rows []entryRow
	if err := db.conn.SelectContext(ctx, &rows, stmt, args...); err != nil {
		return nil, apperror.StorageFailed(op, err)
	}

	entries := make([]model.JournalEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toModel())
	}
	return entries, nil
}
